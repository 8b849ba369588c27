package main

import (
	"fmt"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/birdayz/kgrad/knn"
)

// Sample is one input vector with its expected outputs.
type Sample struct {
	X []float64 `yaml:"x"`
	Y []float64 `yaml:"y"`
}

// Config describes the network evaluated by the run command.
type Config struct {
	Seed             uint64   `yaml:"seed"`
	Nin              int      `yaml:"nin"`
	Layers           []int    `yaml:"layers"`
	Activation       string   `yaml:"activation"`
	OutputActivation string   `yaml:"output_activation"`
	Workers          int      `yaml:"workers"`
	Checkpoint       string   `yaml:"checkpoint"`
	Samples          []Sample `yaml:"samples"`
}

func loadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Checkpoint == "" {
		cfg.Checkpoint = "mlp"
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var err error
	if c.Nin <= 0 {
		err = multierr.Append(err, fmt.Errorf("nin must be positive, got %d", c.Nin))
	}
	if len(c.Layers) == 0 {
		err = multierr.Append(err, fmt.Errorf("layers must not be empty"))
	}
	for i, n := range c.Layers {
		if n <= 0 {
			err = multierr.Append(err, fmt.Errorf("layer %d must have a positive width, got %d", i, n))
		}
	}
	if _, perr := knn.ParseActivation(c.Activation); perr != nil {
		err = multierr.Append(err, fmt.Errorf("activation: %w", perr))
	}
	if _, perr := knn.ParseActivation(c.OutputActivation); perr != nil {
		err = multierr.Append(err, fmt.Errorf("output_activation: %w", perr))
	}
	if c.Workers < 0 {
		err = multierr.Append(err, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if len(c.Samples) == 0 {
		err = multierr.Append(err, fmt.Errorf("at least one sample is required"))
	}
	nout := 0
	if len(c.Layers) > 0 {
		nout = c.Layers[len(c.Layers)-1]
	}
	for i, s := range c.Samples {
		if len(s.X) != c.Nin {
			err = multierr.Append(err, fmt.Errorf("sample %d: %d inputs, want %d", i, len(s.X), c.Nin))
		}
		if len(s.Y) != nout {
			err = multierr.Append(err, fmt.Errorf("sample %d: %d targets, want %d", i, len(s.Y), nout))
		}
	}
	return err
}

// options translates c into network options. Workers of 0 keeps the default.
func (c Config) options() []knn.Option {
	hidden, _ := knn.ParseActivation(c.Activation)
	output, _ := knn.ParseActivation(c.OutputActivation)
	opts := []knn.Option{
		knn.WithSource(knn.NewRandSource(c.Seed)),
		knn.WithActivation(hidden),
		knn.WithOutputActivation(output),
	}
	if c.Workers > 0 {
		opts = append(opts, knn.WithWorkers(c.Workers))
	}
	return opts
}

func (c Config) batch() (xs, ys [][]float64) {
	for _, s := range c.Samples {
		xs = append(xs, s.X)
		ys = append(ys, s.Y)
	}
	return xs, ys
}
