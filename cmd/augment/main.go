// Command augment converts images into record files and runs the per-sample
// training transform over them.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/openfluke/augment/detector"
	"github.com/openfluke/augment/pods"
	"github.com/openfluke/augment/transform"
)

var (
	verbose bool
	logger  = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error("augment failed", "err", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "augment",
		Short:         "Training data conversion and augmentation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			transform.SetLogger(logger)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(convertCmd(), meanCmd(), runCmd(), detectCmd(), podsCmd())
	return root
}

func detectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Print the host capability report as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := detector.DetectJSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func podsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pods",
		Short: "List registered pods",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range pods.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}
