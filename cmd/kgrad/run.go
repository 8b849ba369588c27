package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"

	"github.com/birdayz/kgrad/internal/checkpoint"
	"github.com/birdayz/kgrad/kdag"
	"github.com/birdayz/kgrad/knn"
	"github.com/birdayz/kgrad/kstate"
	"github.com/birdayz/kgrad/kstate/pebble"
)

const checkpointStore = "checkpoints"

type runFlags struct {
	config   string
	stateDir string
	workers  int
}

func newRunCmd(root *rootFlags) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate a network on a batch and backpropagate the loss once",
		Long: `Builds the network described by --config, evaluates the sum of squared
errors over its samples and runs one backward pass. Parameters are not
updated.

With --state-dir the network is loaded from, and saved to, a pebble
checkpoint named by the config's checkpoint field.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := root.logger()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(flags.config)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = flags.workers
				if err := cfg.Validate(); err != nil {
					return fmt.Errorf("invalid config: %w", err)
				}
			}
			_, err = run(cmd.Context(), cfg, flags.stateDir, log)
			return err
		},
	}
	cmd.Flags().StringVarP(&flags.config, "config", "c", "", "network config (YAML)")
	cmd.Flags().StringVar(&flags.stateDir, "state-dir", "", "directory for pebble checkpoints")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "samples evaluated concurrently (0 = GOMAXPROCS)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

type runResult struct {
	loss    float64
	resumed bool
	params  []knn.NamedParameter
	stats   kdag.Stats
}

func run(ctx context.Context, cfg Config, stateDir string, log *slog.Logger) (runResult, error) {
	opts := append(cfg.options(), knn.WithLog(log))

	var (
		backend kstate.Backend
		m       *knn.MLP
		res     runResult
		err     error
	)
	if stateDir != "" {
		backend, err = pebble.Open(stateDir, checkpointStore)
		if err != nil {
			return runResult{}, err
		}
		defer backend.Close()

		m, err = checkpoint.Load(ctx, backend, cfg.Checkpoint,
			checkpoint.WithSource(knn.NewRandSource(cfg.Seed)),
			checkpoint.WithNetworkOptions(opts...))
		switch {
		case err == nil:
			if want := append([]int{cfg.Nin}, cfg.Layers...); !slices.Equal(want, m.Sizes()) {
				return runResult{}, fmt.Errorf("checkpoint %s has sizes %v, config wants %v", cfg.Checkpoint, m.Sizes(), want)
			}
			res.resumed = true
			log.Info("Loaded checkpoint", "name", cfg.Checkpoint, "sizes", m.Sizes())
		case errors.Is(err, checkpoint.ErrNotFound):
			m = nil
		default:
			return runResult{}, err
		}
	}
	if m == nil {
		m, err = knn.NewMLP(cfg.Nin, cfg.Layers, opts...)
		if err != nil {
			return runResult{}, err
		}
	}

	xs, ys := cfg.batch()
	loss, err := m.BatchLoss(ctx, xs, ys)
	if err != nil {
		return runResult{}, err
	}
	m.ZeroGrad()
	loss.Backward()

	g, err := kdag.FromRoot(loss)
	if err != nil {
		return runResult{}, fmt.Errorf("snapshot graph: %w", err)
	}
	res.loss = loss.Data()
	res.stats = g.Stats()
	res.params = m.NamedParameters()

	log.Info("Backward pass finished", "loss", res.loss, "samples", len(xs), "parameters", len(res.params),
		"nodes", res.stats.Nodes, "depth", res.stats.Depth)
	for _, p := range res.params {
		log.Debug("Gradient", "parameter", p.Name, "data", p.Value.Data(), "grad", p.Value.Grad())
	}

	if backend != nil {
		if err := checkpoint.Save(ctx, backend, cfg.Checkpoint, m); err != nil {
			return runResult{}, fmt.Errorf("save checkpoint: %w", err)
		}
		log.Info("Saved checkpoint", "name", cfg.Checkpoint, "dir", stateDir)
	}
	return res, nil
}
