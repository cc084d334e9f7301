package transform

import (
	"fmt"
	"math"
)

// Float is the working numeric type of transformed data.
type Float interface {
	~float32 | ~float64
}

// LookupPivot is the byte value the contrast stretch is centered on.
const LookupPivot = 120

// LookupTable remaps every possible byte pixel value. Entries are always
// within [0, 255].
type LookupTable[T Float] [256]T

// BuildLookup builds the luminance/contrast remapping table for one sample.
//
// Negative contrast compresses linearly; positive contrast c expands by
// 1/(1-c) - 1, which diverges at c = 1, so contrast >= 1 is rejected with
// ErrDomain.
func BuildLookup[T Float](luminance, contrast T) (LookupTable[T], error) {
	var table LookupTable[T]
	if contrast >= 1 {
		return table, fmt.Errorf("%w: contrast %v must be < 1", ErrDomain, contrast)
	}
	if math.IsNaN(float64(contrast)) || math.IsNaN(float64(luminance)) {
		return table, fmt.Errorf("%w: luminance %v, contrast %v", ErrDomain, luminance, contrast)
	}

	cv := contrast
	if contrast >= 0 {
		cv = 1/(1-contrast) - 1
	}

	for i := range table {
		v := (T(i)+luminance-LookupPivot)*(1+cv) + LookupPivot
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		table[i] = v
	}
	return table, nil
}

// IdentityLookup returns the table that maps every byte to itself.
func IdentityLookup[T Float]() LookupTable[T] {
	var table LookupTable[T]
	for i := range table {
		table[i] = T(i)
	}
	return table
}

// Apply remaps a single byte value.
func (t *LookupTable[T]) Apply(b byte) T { return t[b] }

// IsIdentity reports whether the table leaves every value unchanged.
func (t *LookupTable[T]) IsIdentity() bool {
	for i, v := range t {
		if v != T(i) {
			return false
		}
	}
	return true
}
