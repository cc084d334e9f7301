package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openfluke/augment/datum"
	"github.com/openfluke/augment/pods"
	"github.com/openfluke/augment/transform"
)

type listEntry struct {
	path  string
	label int
}

// readList parses "<path> <label>" lines; blank lines and # comments are
// ignored. Relative paths resolve against root.
func readList(name, root string) ([]listEntry, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []listEntry
	sc := bufio.NewScanner(f)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s:%d: want \"<path> <label>\"", name, line)
		}
		label, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad label %q", name, line, fields[1])
		}
		path := fields[0]
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		entries = append(entries, listEntry{path: path, label: label})
	}
	return entries, sc.Err()
}

func convertCmd() *cobra.Command {
	var (
		list, root, out string
		opts            datum.ImageOptions
		compress        bool
		skipBad         bool
	)
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a labeled image list into a record file",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := readList(list, root)
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()

			w, err := datum.NewWriter(f, compress)
			if err != nil {
				return err
			}
			for _, e := range entries {
				s, err := datum.LoadImage(e.path, opts)
				if err != nil {
					if skipBad {
						logger.Warn("skipping image", "path", e.path, "err", err)
						continue
					}
					return err
				}
				if err := w.Write(s.WithLabel(e.label)); err != nil {
					return err
				}
			}
			if err := w.Close(); err != nil {
				return err
			}
			logger.Info("converted", "records", w.Count(), "out", out, "compressed", compress)
			return f.Close()
		},
	}
	cmd.Flags().StringVar(&list, "list", "", "image list file (\"<path> <label>\" per line)")
	cmd.Flags().StringVar(&root, "root", ".", "directory relative image paths resolve against")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output record file")
	cmd.Flags().IntVar(&opts.Width, "width", 0, "resize width (0 = keep)")
	cmd.Flags().IntVar(&opts.Height, "height", 0, "resize height (0 = keep)")
	cmd.Flags().BoolVar(&opts.Gray, "gray", false, "store a single gray channel")
	cmd.Flags().BoolVar(&compress, "compress", true, "zstd-compress the record stream")
	cmd.Flags().BoolVar(&skipBad, "skip-bad", false, "skip images that fail to decode")
	_ = cmd.MarkFlagRequired("list")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func meanCmd() *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "mean",
		Short: "Compute the full-resolution mean of a record file",
		RunE: func(cmd *cobra.Command, args []string) error {
			samples, err := readRecords(in)
			if err != nil {
				return err
			}
			res, err := pods.Run(pods.NewContext(nil), "data/mean", pods.MeanIn{Samples: samples})
			if err != nil {
				return err
			}
			first := samples[0]
			m := &datum.Mean{
				Channels: first.Channels,
				Height:   first.Height,
				Width:    first.Width,
				Values:   res.(pods.MeanOut).Values,
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := datum.WriteMean(f, m); err != nil {
				return err
			}
			logger.Info("mean written", "samples", len(samples), "shape", fmt.Sprintf("%dx%dx%d", m.Channels, m.Height, m.Width), "out", out)
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "", "input record file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output mean file")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func readRecords(name string) ([]*transform.RawSample, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	samples, err := datum.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%s: no records", name)
	}
	return samples, nil
}
