package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/birdayz/kgrad/pkg/log"
)

type rootFlags struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "kgrad",
		Short: "Scalar reverse-mode automatic differentiation",
		Long: `kgrad builds scalar expression graphs, backpropagates through them and
evaluates small multi-layer perceptrons.

Examples:
  kgrad regress
  kgrad run --config net.yaml --state-dir /tmp/kgrad`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")

	cmd.AddCommand(newRegressCmd(flags), newRunCmd(flags))
	return cmd
}

func (f *rootFlags) logger() (*slog.Logger, error) {
	level, err := log.ParseLevel(f.logLevel)
	if err != nil {
		return nil, err
	}
	return log.Slog(log.New(level)), nil
}
