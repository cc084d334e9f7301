package pods

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/openfluke/augment/detector"
	"github.com/openfluke/augment/transform"
)

func testContext() *ExecContext {
	return NewContext(&detector.Report{Recommended: detector.Recommendations{Workers: 2, MinSamplesPerWorker: 1}})
}

func TestReducePod(t *testing.T) {
	x := testContext()
	in := []float32{1, 2, 3, 4}
	tests := map[ReduceKind]float64{
		ReduceSum:  10,
		ReduceMin:  1,
		ReduceMax:  4,
		ReduceMean: 2.5,
		ReduceStd:  math.Sqrt(1.25),
	}
	for kind, want := range tests {
		out, err := Run(x, "primitives/reduce", ReduceIn{In: in, Kind: kind})
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if got := out.(ReduceOut).Value; math.Abs(got-want) > 1e-12 {
			t.Errorf("%s: expected %v, got %v", kind, want, got)
		}
	}
	if _, err := Run(x, "primitives/reduce", "nope"); !errors.Is(err, ErrBadInput) {
		t.Errorf("Expected ErrBadInput, got %v", err)
	}
	if _, err := Run(x, "missing", nil); err == nil {
		t.Error("Expected error for unknown pod")
	}
}

func TestAugmentPod(t *testing.T) {
	params := transform.Params{CropSize: 2, Scale: 1, Phase: transform.PhaseTest}
	pod, err := NewAugmentPod(params, 0)
	if err != nil {
		t.Fatal(err)
	}
	Register(pod)
	defer func() {
		registryMu.Lock()
		delete(registry, pod.Name())
		registryMu.Unlock()
	}()

	data := make([]byte, 16)
	for i := range data {
		data[i] = 200
	}
	samples := []*transform.RawSample{
		transform.NewByteSample(1, 4, 4, data).WithLabel(3),
		transform.NewByteSample(1, 4, 4, data).WithLabel(1),
	}
	mean := make([]float32, 16)

	out, err := Run(testContext(), "data/augment", AugmentIn{Samples: samples, Mean: mean})
	if err != nil {
		t.Fatal(err)
	}
	res := out.(AugmentOut)
	if diff := cmp.Diff([]int{2, 1, 2, 2}, res.Data.Shape); diff != "" {
		t.Errorf("Shape mismatch (-want +got):\n%s", diff)
	}
	for i := 0; i < 2; i++ {
		if diff := cmp.Diff([]float32{200, 200, 200, 200}, res.Data.Sample(i)); diff != "" {
			t.Errorf("Sample %d mismatch (-want +got):\n%s", i, diff)
		}
	}
	if diff := cmp.Diff([]float32{3, 1}, res.Labels); diff != "" {
		t.Errorf("Labels mismatch (-want +got):\n%s", diff)
	}
	if res.Result.Processed != 2 {
		t.Errorf("Expected 2 processed, got %d", res.Result.Processed)
	}

	x := testContext()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	x.Ctx = ctx
	if _, err := pod.Run(x, AugmentIn{Samples: samples, Mean: mean}); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestMeanPod(t *testing.T) {
	samples := []*transform.RawSample{
		transform.NewByteSample(1, 1, 2, []byte{10, 20}),
		transform.NewByteSample(1, 1, 2, []byte{30, 40}),
	}
	out, err := Run(testContext(), "data/mean", MeanIn{Samples: samples})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float32{20, 30}, out.(MeanOut).Values); diff != "" {
		t.Errorf("Mean mismatch (-want +got):\n%s", diff)
	}
}

func TestTensor(t *testing.T) {
	tensor := NewTensor[float64](2, 3, 4)
	if len(tensor.Data) != 24 {
		t.Errorf("Expected 24 values, got %d", len(tensor.Data))
	}
	if diff := cmp.Diff([]int{12, 4, 1}, tensor.Strides); diff != "" {
		t.Errorf("Strides mismatch (-want +got):\n%s", diff)
	}
	tensor.Data[12] = 7
	if tensor.Sample(1)[0] != 7 {
		t.Error("Sample(1) should start at the second item")
	}

	defer func() {
		if recover() == nil {
			t.Error("WrapTensor should panic on size mismatch")
		}
	}()
	WrapTensor([]float32{1, 2, 3}, 2, 2)
}

func TestExecContextWorkers(t *testing.T) {
	x := testContext()
	if got := x.WorkersFor(10); got != 2 {
		t.Errorf("Expected report workers 2, got %d", got)
	}
	if got := x.WithWorkers(5).WorkersFor(10); got != 5 {
		t.Errorf("Expected explicit workers 5, got %d", got)
	}
}

// TestAugmentPodMalformedSample verifies bad dimensions are reported, not panicked on
func TestAugmentPodMalformedSample(t *testing.T) {
	pod, err := NewAugmentPod(transform.Params{CropSize: 2, Scale: 1, Phase: transform.PhaseTest}, 0)
	if err != nil {
		t.Fatal(err)
	}
	in := AugmentIn{Samples: []*transform.RawSample{{Channels: -1, Height: 4, Width: 4}}}
	if _, err := pod.Run(testContext(), in); !errors.Is(err, transform.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

// TestAugmentPodSkipsShortPayload verifies a first sample with a bad payload is skipped, not fatal
func TestAugmentPodSkipsShortPayload(t *testing.T) {
	pod, err := NewAugmentPod(transform.Params{CropSize: 2, Scale: 1, Phase: transform.PhaseTest}, 0)
	if err != nil {
		t.Fatal(err)
	}
	in := AugmentIn{
		Samples: []*transform.RawSample{
			transform.NewByteSample(1, 4, 4, make([]byte, 3)),
			transform.NewByteSample(1, 4, 4, make([]byte, 16)),
		},
		Mean:        make([]float32, 16),
		SkipInvalid: true,
	}
	got, err := pod.Run(testContext(), in)
	if err != nil {
		t.Fatal(err)
	}
	if res := got.(AugmentOut).Result; !cmp.Equal(res.Skipped, []int{0}) {
		t.Errorf("Expected sample 0 skipped, got %+v", res)
	}
}
