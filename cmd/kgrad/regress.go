package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/birdayz/kgrad/kdag"
	"github.com/birdayz/kgrad/kvalue"
)

func newRegressCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "regress",
		Short: "Backpropagate through f = (a*b)*(a+b) at a=-2, b=3",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := flags.logger()
			if err != nil {
				return err
			}
			_, err = regress(log)
			return err
		},
	}
}

type regressResult struct {
	a, b, f *kvalue.Value
	stats   kdag.Stats
}

func regress(log *slog.Logger) (regressResult, error) {
	a := kvalue.New(-2, kvalue.WithLabel("a"))
	b := kvalue.New(3, kvalue.WithLabel("b"))
	f := a.Mul(b).Mul(a.Add(b))

	f.Backward()

	g, err := kdag.FromRoot(f)
	if err != nil {
		return regressResult{}, fmt.Errorf("snapshot graph: %w", err)
	}
	stats := g.Stats()

	log.Info("Backward pass finished", "f", f.Data(), "a.grad", a.Grad(), "b.grad", b.Grad())
	log.Info("Graph", "nodes", stats.Nodes, "edges", stats.Edges, "leaves", stats.Leaves, "depth", stats.Depth)
	return regressResult{a: a, b: b, f: f, stats: stats}, nil
}
