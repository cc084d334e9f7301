package pods

import (
	"fmt"

	"github.com/openfluke/augment/transform"
)

type AugmentIn struct {
	Samples     []*transform.RawSample
	Mean        []float32 // full-resolution mean, len = C*H*W of the samples
	FirstStream uint64    // generator stream of Samples[0]
	SkipInvalid bool
}
type AugmentOut struct {
	Data   Tensor[float32] // [N, C, H, W] after cropping
	Labels []float32
	Result transform.BatchResult
}

// AugmentPod transforms a batch of samples with a fixed configuration.
type AugmentPod struct {
	tr *transform.Transformer[float32]
}

func NewAugmentPod(params transform.Params, seed uint64) (*AugmentPod, error) {
	tr, err := transform.NewTransformer[float32](params, seed)
	if err != nil {
		return nil, err
	}
	return &AugmentPod{tr: tr}, nil
}

func (*AugmentPod) Name() string { return "data/augment" }

// Transformer exposes the underlying transformer.
func (p *AugmentPod) Transformer() *transform.Transformer[float32] { return p.tr }

func (p *AugmentPod) Run(x *ExecContext, in any) (any, error) {
	args, ok := in.(AugmentIn)
	if !ok {
		return nil, fmt.Errorf("%w: AugmentIn expected, got %T", ErrBadInput, in)
	}
	if len(args.Samples) == 0 || args.Samples[0] == nil {
		return AugmentOut{}, nil
	}

	first := args.Samples[0]
	if err := first.ValidateShape(); err != nil {
		return nil, fmt.Errorf("sample 0: %w", err)
	}
	c, h, w := p.tr.Params().OutputShape(first.Channels, first.Height, first.Width)
	out := AugmentOut{
		Data:   NewTensor[float32](len(args.Samples), c, h, w),
		Labels: make([]float32, len(args.Samples)),
	}
	res, err := transform.TransformBatch(x.baseContext(), p.tr, args.Samples, args.Mean, out.Data.Data, out.Labels,
		transform.BatchOptions{
			Workers:     x.WorkersFor(len(args.Samples)),
			FirstStream: args.FirstStream,
			SkipInvalid: args.SkipInvalid,
		})
	if err != nil {
		return nil, err
	}
	out.Result = res
	return out, nil
}

type MeanIn struct {
	Samples []*transform.RawSample
}
type MeanOut struct {
	Values []float32
}

// MeanPod averages samples into a full-resolution mean reference.
type MeanPod struct{}

func (MeanPod) Name() string { return "data/mean" }

func (MeanPod) Run(x *ExecContext, in any) (any, error) {
	args, ok := in.(MeanIn)
	if !ok {
		return nil, fmt.Errorf("%w: MeanIn expected, got %T", ErrBadInput, in)
	}
	values, err := transform.ComputeMean[float32](args.Samples)
	if err != nil {
		return nil, err
	}
	return MeanOut{Values: values}, nil
}
