package transform

import (
	"fmt"
	"math/rand/v2"
)

// RandomState is an explicitly owned generator for augmentation draws.
// It is not safe for concurrent use; give every worker its own instance.
// A nil *RandomState is valid and fails every draw with ErrPreconditionFailed.
type RandomState struct {
	seed   uint64
	stream uint64
	r      *rand.Rand
}

// NewRandomState returns a generator fully determined by (seed, stream).
func NewRandomState(seed, stream uint64) *RandomState {
	return &RandomState{
		seed:   seed,
		stream: stream,
		r:      rand.New(rand.NewPCG(seed, stream)),
	}
}

// Seed returns the seed and stream the generator was created with.
func (rs *RandomState) Seed() (seed, stream uint64) {
	if rs == nil {
		return 0, 0
	}
	return rs.seed, rs.stream
}

// Fork derives an independent generator for the given stream index from
// this generator's seed. The parent's position is not consumed.
func (rs *RandomState) Fork(stream uint64) (*RandomState, error) {
	if rs == nil {
		return nil, fmt.Errorf("%w: fork of uninitialized generator", ErrPreconditionFailed)
	}
	return NewRandomState(rs.seed, rs.stream^mixStream(stream)), nil
}

// Uint32 draws a uniformly distributed 32-bit value.
func (rs *RandomState) Uint32() (uint32, error) {
	if rs == nil {
		return 0, fmt.Errorf("%w: random draw from uninitialized generator", ErrPreconditionFailed)
	}
	return rs.r.Uint32(), nil
}

// Gaussian draws from N(mean, stddev²).
func (rs *RandomState) Gaussian(mean, stddev float64) (float64, error) {
	if rs == nil {
		return 0, fmt.Errorf("%w: random draw from uninitialized generator", ErrPreconditionFailed)
	}
	return mean + stddev*rs.r.NormFloat64(), nil
}

// Uniform draws from [lo, hi).
func (rs *RandomState) Uniform(lo, hi float64) (float64, error) {
	if rs == nil {
		return 0, fmt.Errorf("%w: random draw from uninitialized generator", ErrPreconditionFailed)
	}
	return lo + (hi-lo)*rs.r.Float64(), nil
}

// mixStream spreads consecutive stream indices (splitmix64 finalizer) so
// forked generators do not share nearby PCG increments.
func mixStream(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
