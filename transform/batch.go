package transform

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// BatchOptions controls TransformBatch.
type BatchOptions struct {
	// Workers bounds the number of concurrent transforms (<= 0: GOMAXPROCS).
	Workers int
	// FirstStream is the generator stream of sample 0; sample i uses
	// FirstStream+i. Advance it between batches so every sample of an epoch
	// gets distinct draws.
	FirstStream uint64
	// SkipInvalid zeroes the slot of a sample failing with a skippable
	// error (see IsSkippable) and keeps going instead of aborting the batch.
	SkipInvalid bool
}

// BatchResult summarizes a TransformBatch call.
type BatchResult struct {
	Processed int
	Skipped   []int // indices of samples skipped under SkipInvalid, ascending
}

// TransformBatch transforms samples[i] into slot i of dst, running up to
// opts.Workers transforms at once. Every sample draws from its own
// generator forked from t, so the output does not depend on scheduling.
// When labels is non-nil, labels[i] receives the label of samples[i].
//
// All samples must share one output shape. Cancellation of ctx is observed
// between samples.
func TransformBatch[T Float](ctx context.Context, t *Transformer[T], samples []*RawSample, mean []T, dst []T, labels []T, opts BatchOptions) (BatchResult, error) {
	var result BatchResult
	if len(samples) == 0 {
		return result, nil
	}
	if labels != nil && len(labels) < len(samples) {
		return result, fmt.Errorf("%w: label buffer holds %d values, batch has %d",
			ErrInvalidArgument, len(labels), len(samples))
	}
	sampleLen, err := batchSampleLen(t.params, samples)
	if err != nil {
		return result, err
	}
	if err := checkBatchShape(t.params, samples[0], mean); err != nil {
		return result, err
	}
	if len(dst) < len(samples)*sampleLen {
		return result, fmt.Errorf("%w: destination holds %d values, batch needs %d",
			ErrInvalidArgument, len(dst), len(samples)*sampleLen)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	Logger().Debug("transform: batch",
		"samples", len(samples),
		"sample_len", sampleLen,
		"workers", workers,
		"first_stream", opts.FirstStream)

	var (
		mu      sync.Mutex
		skipped []int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, sample := range samples {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := t.ForkRandom(opts.FirstStream + uint64(i))
			err := TransformSample(i, sample, mean, t.params, rng, dst)
			if err == nil {
				if labels != nil {
					labels[i] = T(sample.Label)
				}
				return nil
			}
			if !opts.SkipInvalid || !IsSkippable(err) {
				return fmt.Errorf("sample %d: %w", i, err)
			}
			Logger().Warn("transform: skipping sample", "index", i, "err", err)
			clear(dst[i*sampleLen : (i+1)*sampleLen])
			mu.Lock()
			skipped = append(skipped, i)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	slices.Sort(skipped)
	result.Skipped = skipped
	result.Processed = len(samples) - len(skipped)
	return result, nil
}

// batchSampleLen returns the shared per-sample output length, rejecting
// batches whose samples disagree.
func batchSampleLen(params Params, samples []*RawSample) (int, error) {
	var first *RawSample
	for i, s := range samples {
		if s == nil {
			return 0, fmt.Errorf("%w: sample %d is nil", ErrInvalidArgument, i)
		}
		if first == nil {
			if err := s.ValidateShape(); err != nil {
				return 0, fmt.Errorf("sample %d: %w", i, err)
			}
			first = s
			continue
		}
		if s.Channels != first.Channels || s.Height != first.Height || s.Width != first.Width {
			return 0, fmt.Errorf("%w: sample %d is %dx%dx%d, batch is %dx%dx%d",
				ErrInvalidArgument, i, s.Channels, s.Height, s.Width,
				first.Channels, first.Height, first.Width)
		}
	}
	return params.SampleLen(first.Channels, first.Height, first.Width), nil
}

// checkBatchShape rejects mean and crop settings that cannot fit the shared
// sample shape; these fail every sample alike and are never skipped.
func checkBatchShape[T Float](params Params, first *RawSample, mean []T) error {
	if size := first.Size(); len(mean) < size {
		return fmt.Errorf("%w: mean has %d values, samples need %d", ErrInvalidArgument, len(mean), size)
	}
	if params.CropSize > first.Height || params.CropSize > first.Width {
		return fmt.Errorf("%w: crop size %d exceeds sample %dx%d",
			ErrInvalidArgument, params.CropSize, first.Height, first.Width)
	}
	return nil
}

// IsSkippable reports whether err is a per-sample data problem a batch loop
// may skip, as opposed to a configuration error that affects every sample.
func IsSkippable(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) || errors.Is(err, ErrMalformedSample)
}
