package transform

import (
	"fmt"
	"math"
	"strings"
)

// Phase selects randomized (TRAIN) or deterministic (TEST) behavior.
type Phase int

const (
	PhaseTrain Phase = 0 // random crop origin
	PhaseTest  Phase = 1 // centered crop origin
)

func (p Phase) String() string {
	switch p {
	case PhaseTrain:
		return "TRAIN"
	case PhaseTest:
		return "TEST"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// ParsePhase accepts "train" or "test" in any case.
func ParsePhase(s string) (Phase, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRAIN":
		return PhaseTrain, nil
	case "TEST":
		return PhaseTest, nil
	}
	return PhaseTrain, fmt.Errorf("%w: unknown phase %q", ErrInvalidArgument, s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(p.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(b []byte) error {
	v, err := ParsePhase(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// MaxContrastVary is the largest accepted ContrastVary: the largest float32
// below 1, so no contrast draw rounds onto the singularity in either working
// type.
const MaxContrastVary = 1 - 0x1p-24

// Params holds the per-call transform configuration.
type Params struct {
	CropSize      int     `json:"crop_size"`      // 0 = no cropping
	Mirror        bool    `json:"mirror"`         // requires CropSize > 0
	Scale         float64 `json:"scale"`          // multiplier applied after mean subtraction
	LuminanceVary float64 `json:"luminance_vary"` // stddev of the luminance shift (0 = off)
	ContrastVary  float64 `json:"contrast_vary"`  // half-range of the contrast draw (0 = off), at most MaxContrastVary
	Phase         Phase   `json:"phase"`
}

// DefaultParams returns an identity configuration: no crop, no jitter, scale 1.
func DefaultParams() Params {
	return Params{
		Scale: 1,
		Phase: PhaseTrain,
	}
}

// Validate rejects contradictory or out-of-domain configuration.
func (p Params) Validate() error {
	if p.CropSize < 0 {
		return fmt.Errorf("%w: negative crop size %d", ErrInvalidArgument, p.CropSize)
	}
	if p.Mirror && p.CropSize == 0 {
		return fmt.Errorf("%w: mirror requires crop size to be set", ErrInvalidArgument)
	}
	if p.Phase != PhaseTrain && p.Phase != PhaseTest {
		return fmt.Errorf("%w: unknown phase %d", ErrInvalidArgument, int(p.Phase))
	}
	if math.IsNaN(p.Scale) {
		return fmt.Errorf("%w: scale is NaN", ErrInvalidArgument)
	}
	if p.LuminanceVary < 0 || math.IsNaN(p.LuminanceVary) {
		return fmt.Errorf("%w: luminance vary %v must be >= 0", ErrInvalidArgument, p.LuminanceVary)
	}
	if p.ContrastVary < 0 || math.IsNaN(p.ContrastVary) {
		return fmt.Errorf("%w: contrast vary %v must be >= 0", ErrInvalidArgument, p.ContrastVary)
	}
	if p.ContrastVary > MaxContrastVary {
		return fmt.Errorf("%w: contrast vary %v must be <= %v", ErrDomain, p.ContrastVary, MaxContrastVary)
	}
	return nil
}

// NeedsRandom reports whether a transform with these params may draw from
// the generator: a TRAIN crop or mirror, or any photometric jitter.
func (p Params) NeedsRandom() bool {
	if p.LuminanceVary != 0 || p.ContrastVary != 0 {
		return true
	}
	return p.Phase == PhaseTrain && (p.Mirror || p.CropSize > 0)
}

// OutputShape returns the per-sample output dimensions for an input of
// channels × height × width.
func (p Params) OutputShape(channels, height, width int) (int, int, int) {
	if p.CropSize > 0 {
		return channels, p.CropSize, p.CropSize
	}
	return channels, height, width
}

// SampleLen returns the number of destination values one sample occupies.
func (p Params) SampleLen(channels, height, width int) int {
	c, h, w := p.OutputShape(channels, height, width)
	return c * h * w
}

// DrawCount returns how many values one transform call draws from the
// generator.
func (p Params) DrawCount() int {
	n := 0
	if p.LuminanceVary != 0 {
		n++
	}
	if p.ContrastVary != 0 {
		n++
	}
	if p.CropSize > 0 && p.Phase == PhaseTrain {
		n += 2
	}
	if p.Mirror {
		n++
	}
	return n
}
