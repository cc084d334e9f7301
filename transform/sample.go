package transform

import "fmt"

// RawSample is one decoded training record in planar channel-major layout.
// Exactly one of Data and FloatData carries the payload; Data wins when both
// are set.
type RawSample struct {
	Channels int
	Height   int
	Width    int

	Data      []byte    // byte-encoded pixels, len = Channels*Height*Width
	FloatData []float32 // float feature vector, same length

	Label    int
	HasLabel bool
}

// Size returns the flattened element count channels*height*width.
func (s *RawSample) Size() int {
	return s.Channels * s.Height * s.Width
}

// IsEncoded reports whether the sample carries byte pixel data.
func (s *RawSample) IsEncoded() bool {
	return len(s.Data) > 0
}

// ValidateShape checks the dimensions alone, ignoring the payload.
func (s *RawSample) ValidateShape() error {
	if s == nil {
		return fmt.Errorf("%w: %w: nil sample", ErrInvalidArgument, ErrMalformedSample)
	}
	if s.Channels < 0 || s.Height < 0 || s.Width < 0 {
		return fmt.Errorf("%w: %w: negative dimensions %dx%dx%d", ErrInvalidArgument, ErrMalformedSample, s.Channels, s.Height, s.Width)
	}
	return nil
}

// Validate checks dimensions against the payload length.
func (s *RawSample) Validate() error {
	if err := s.ValidateShape(); err != nil {
		return err
	}
	size := s.Size()
	if s.IsEncoded() {
		if len(s.Data) != size {
			return fmt.Errorf("%w: %w: byte payload has %d values, want %d", ErrInvalidArgument, ErrMalformedSample, len(s.Data), size)
		}
		return nil
	}
	if len(s.FloatData) != size {
		return fmt.Errorf("%w: %w: float payload has %d values, want %d", ErrInvalidArgument, ErrMalformedSample, len(s.FloatData), size)
	}
	return nil
}

// NewByteSample wraps a planar byte payload.
func NewByteSample(channels, height, width int, data []byte) *RawSample {
	return &RawSample{Channels: channels, Height: height, Width: width, Data: data}
}

// NewFloatSample wraps a float feature vector.
func NewFloatSample(channels, height, width int, data []float32) *RawSample {
	return &RawSample{Channels: channels, Height: height, Width: width, FloatData: data}
}

// WithLabel attaches a label and returns the sample.
func (s *RawSample) WithLabel(label int) *RawSample {
	s.Label = label
	s.HasLabel = true
	return s
}
