package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/openfluke/augment/datum"
	"github.com/openfluke/augment/detector"
	"github.com/openfluke/augment/pods"
	"github.com/openfluke/augment/transform"
)

func runCmd() *cobra.Command {
	var (
		in, meanFile string
		phase        string
		params       = transform.DefaultParams()
		seed         uint64
		batchSize    int
		epochs       int
		workers      int
		skipInvalid  bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Transform a record file batch by batch and report output statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := transform.ParsePhase(phase)
			if err != nil {
				return err
			}
			params.Phase = p
			if batchSize <= 0 {
				return fmt.Errorf("batch size must be positive, got %d", batchSize)
			}

			samples, err := readRecords(in)
			if err != nil {
				return err
			}
			mean, err := loadMean(meanFile, samples[0])
			if err != nil {
				return err
			}

			pod, err := pods.NewAugmentPod(params, seed)
			if err != nil {
				return err
			}
			pods.Register(pod)

			rep, err := detector.Detect()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			x := pods.NewContext(rep).WithWorkers(workers)
			x.Ctx = ctx

			logger.Info("running",
				"records", len(samples),
				"batch", batchSize,
				"epochs", epochs,
				"phase", params.Phase.String(),
				"workers", x.WorkersFor(batchSize))

			var stream uint64
			for epoch := 0; epoch < epochs; epoch++ {
				for start := 0; start < len(samples); start += batchSize {
					end := min(start+batchSize, len(samples))
					out, err := pods.Run(x, pod.Name(), pods.AugmentIn{
						Samples:     samples[start:end],
						Mean:        mean,
						FirstStream: stream,
						SkipInvalid: skipInvalid,
					})
					if err != nil {
						return fmt.Errorf("epoch %d batch at %d: %w", epoch, start, err)
					}
					stream += uint64(end - start)

					res := out.(pods.AugmentOut)
					stats, err := batchStats(x, res.Data.Data)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "epoch=%d batch=%d shape=%v processed=%d skipped=%d min=%.4f max=%.4f mean=%.4f std=%.4f\n",
						epoch, start/batchSize, res.Data.Shape, res.Result.Processed, len(res.Result.Skipped),
						stats[pods.ReduceMin], stats[pods.ReduceMax], stats[pods.ReduceMean], stats[pods.ReduceStd])
				}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&in, "in", "i", "", "input record file")
	f.StringVar(&meanFile, "mean", "", "mean file (default: zero mean)")
	f.StringVar(&phase, "phase", "train", "train or test")
	f.IntVar(&params.CropSize, "crop", 0, "crop size (0 = no crop)")
	f.BoolVar(&params.Mirror, "mirror", false, "random horizontal mirror (needs --crop)")
	f.Float64Var(&params.Scale, "scale", 1, "scale applied after mean subtraction")
	f.Float64Var(&params.LuminanceVary, "luminance-vary", 0, "stddev of the random luminance shift")
	f.Float64Var(&params.ContrastVary, "contrast-vary", 0, "half-range of the random contrast, < 1")
	f.Uint64Var(&seed, "seed", 1, "generator seed")
	f.IntVar(&batchSize, "batch", 32, "samples per batch")
	f.IntVar(&epochs, "epochs", 1, "passes over the record file")
	f.IntVar(&workers, "workers", 0, "concurrent transforms (0 = detector recommendation)")
	f.BoolVar(&skipInvalid, "skip-invalid", false, "zero and skip samples that fail to transform")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func loadMean(name string, first *transform.RawSample) ([]float32, error) {
	if name == "" {
		return make([]float32, first.Size()), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := datum.ReadMean(f)
	if err != nil {
		return nil, err
	}
	if m.Channels != first.Channels || m.Height != first.Height || m.Width != first.Width {
		return nil, fmt.Errorf("mean is %dx%dx%d, records are %dx%dx%d",
			m.Channels, m.Height, m.Width, first.Channels, first.Height, first.Width)
	}
	return m.Values, nil
}

func batchStats(x *pods.ExecContext, data []float32) (map[pods.ReduceKind]float64, error) {
	stats := map[pods.ReduceKind]float64{}
	for _, kind := range []pods.ReduceKind{pods.ReduceMin, pods.ReduceMax, pods.ReduceMean, pods.ReduceStd} {
		out, err := pods.Run(x, "primitives/reduce", pods.ReduceIn{In: data, Kind: kind})
		if err != nil {
			return nil, err
		}
		stats[kind] = out.(pods.ReduceOut).Value
	}
	return stats, nil
}
