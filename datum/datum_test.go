package datum

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/openfluke/augment/transform"
)

func testSamples() []*transform.RawSample {
	pixels := make([]byte, 3*4*5)
	for i := range pixels {
		pixels[i] = byte(i * 3)
	}
	return []*transform.RawSample{
		transform.NewByteSample(3, 4, 5, pixels).WithLabel(-2),
		transform.NewFloatSample(1, 2, 2, []float32{0.5, -1.25, 3e8, 0}),
		transform.NewByteSample(1, 1, 3, []byte{1, 2, 3}).WithLabel(6),
	}
}

// TestRecordFileRoundTrip verifies both plain and zstd record files reproduce the samples
func TestRecordFileRoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		var buf bytes.Buffer
		if err := WriteAll(&buf, testSamples(), compress); err != nil {
			t.Fatalf("compress=%v: WriteAll: %v", compress, err)
		}
		got, err := ReadAll(&buf)
		if err != nil {
			t.Fatalf("compress=%v: ReadAll: %v", compress, err)
		}
		if diff := cmp.Diff(testSamples(), got); diff != "" {
			t.Errorf("compress=%v: samples mismatch (-want +got):\n%s", compress, diff)
		}
	}
}

// TestRecordCorruption verifies damaged input is reported as ErrCorrupt
func TestRecordCorruption(t *testing.T) {
	rec, err := AppendRecord(nil, testSamples()[0])
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeRecord(rec[:len(rec)-1]); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Truncated payload: expected ErrCorrupt, got %v", err)
	}
	if _, err := DecodeRecord(nil); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Empty record: expected ErrCorrupt, got %v", err)
	}
	huge := []byte{0xff, 0xff, 0xff, 0x7f, 0xff, 0xff, 0xff, 0x7f, 0xff, 0xff, 0xff, 0x7f, 0}
	if _, err := DecodeRecord(huge); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Huge dimensions: expected ErrCorrupt, got %v", err)
	}

	if _, err := ReadAll(bytes.NewReader([]byte("NOPE\x01\x00"))); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Bad magic: expected ErrCorrupt, got %v", err)
	}

	var buf bytes.Buffer
	if err := WriteAll(&buf, testSamples(), false); err != nil {
		t.Fatal(err)
	}
	truncated := buf.Bytes()[:buf.Len()-2]
	samples, err := ReadAll(bytes.NewReader(truncated))
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("Truncated file: expected ErrCorrupt, got %v", err)
	}
	if len(samples) != 2 {
		t.Errorf("Expected the 2 intact records before the damage, got %d", len(samples))
	}
}

// TestWriterRejectsInvalidSample verifies malformed samples never reach the file
func TestWriterRejectsInvalidSample(t *testing.T) {
	w, err := NewWriter(io.Discard, false)
	if err != nil {
		t.Fatal(err)
	}
	bad := transform.NewByteSample(1, 2, 2, []byte{1})
	if err := w.Write(bad); !errors.Is(err, transform.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
	if w.Count() != 0 {
		t.Errorf("Expected 0 records, got %d", w.Count())
	}
}

func TestMeanRoundTrip(t *testing.T) {
	m := &Mean{Channels: 2, Height: 1, Width: 3, Values: []float32{104, 117, 123, 0.5, -1, 255}}
	var buf bytes.Buffer
	if err := WriteMean(&buf, m); err != nil {
		t.Fatal(err)
	}
	got, err := ReadMean(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(m, got); diff != "" {
		t.Errorf("Mean mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{104, 117, 123, 0.5, -1, 255}, got.Float64()); diff != "" {
		t.Errorf("Float64 mismatch (-want +got):\n%s", diff)
	}

	if err := WriteMean(io.Discard, &Mean{Channels: 1, Height: 2, Width: 2}); err == nil {
		t.Error("Expected error for mean with missing values")
	}
}

// TestFromImage verifies planar BGR layout and resizing
func TestFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	img.Set(1, 0, color.RGBA{R: 40, G: 50, B: 60, A: 255})
	img.Set(0, 1, color.RGBA{R: 70, G: 80, B: 90, A: 255})
	img.Set(1, 1, color.RGBA{R: 100, G: 110, B: 120, A: 255})

	s := FromImage(img, ImageOptions{})
	if s.Channels != 3 || s.Height != 2 || s.Width != 2 {
		t.Fatalf("Expected 3x2x2, got %dx%dx%d", s.Channels, s.Height, s.Width)
	}
	want := []byte{
		30, 60, 90, 120, // B
		20, 50, 80, 110, // G
		10, 40, 70, 100, // R
	}
	if diff := cmp.Diff(want, s.Data); diff != "" {
		t.Errorf("Planar BGR mismatch (-want +got):\n%s", diff)
	}

	gray := FromImage(img, ImageOptions{Gray: true})
	if gray.Channels != 1 || len(gray.Data) != 4 {
		t.Fatalf("Expected 1 channel of 4 values, got %d channels, %d values", gray.Channels, len(gray.Data))
	}
	if gray.Data[0] != 18 {
		t.Errorf("Expected gray 18, got %d", gray.Data[0])
	}

	resized := FromImage(img, ImageOptions{Width: 8, Height: 6})
	if err := resized.Validate(); err != nil {
		t.Fatal(err)
	}
	if resized.Height != 6 || resized.Width != 8 {
		t.Errorf("Expected 6x8 after resize, got %dx%d", resized.Height, resized.Width)
	}
}
