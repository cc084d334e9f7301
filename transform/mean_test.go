package transform

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestComputeMean(t *testing.T) {
	samples := []*RawSample{
		NewByteSample(1, 1, 4, []byte{0, 10, 20, 255}),
		NewByteSample(1, 1, 4, []byte{10, 10, 40, 255}),
		NewFloatSample(1, 1, 4, []float32{5, 1, 0, 0}),
	}
	mean, err := ComputeMean[float64](samples)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{5, 7, 20, 170}
	if diff := cmp.Diff(want, mean); diff != "" {
		t.Errorf("Mean mismatch (-want +got):\n%s", diff)
	}

	if _, err := ComputeMean[float64](nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for empty input, got %v", err)
	}
	bad := []*RawSample{NewByteSample(1, 1, 4, []byte{1, 2})}
	if _, err := ComputeMean[float64](bad); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for short payload, got %v", err)
	}
}

func TestChannelMean(t *testing.T) {
	mean, err := ChannelMean[float32](3, 1, 2, 104, 117, 123)
	if err != nil {
		t.Fatal(err)
	}
	want := []float32{104, 104, 117, 117, 123, 123}
	if diff := cmp.Diff(want, mean); diff != "" {
		t.Errorf("Mean mismatch (-want +got):\n%s", diff)
	}
	if _, err := ChannelMean[float32](3, 1, 2, 1, 2); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}
