package knn

import (
	"log/slog"
	"math/rand/v2"
	"runtime"
)

type config struct {
	init             Initializer
	hidden           Activation
	output           Activation
	layerActivations []Activation
	workers          int
	log              *slog.Logger
}

func defaultConfig() config {
	return config{
		init:    UniformInitializer(SourceFunc(rand.Float64)),
		hidden:  Tanh,
		output:  Tanh,
		workers: runtime.GOMAXPROCS(0),
		log:     NullLogger(),
	}
}

// Option is a function that configures an MLP
type Option func(*config)

// WithSource draws initial parameters uniformly from [-1, 1) using src.
var WithSource = func(src Source) Option {
	return func(c *config) {
		c.init = UniformInitializer(src)
	}
}

// WithInitializer sets the initial parameter values directly.
var WithInitializer = func(init Initializer) Option {
	return func(c *config) {
		c.init = init
	}
}

// WithActivation sets the activation of hidden layers
var WithActivation = func(a Activation) Option {
	return func(c *config) {
		c.hidden = a
	}
}

// WithOutputActivation sets the activation of the last layer
var WithOutputActivation = func(a Activation) Option {
	return func(c *config) {
		c.output = a
	}
}

// WithLayerActivations sets one activation per layer, overriding
// WithActivation and WithOutputActivation.
var WithLayerActivations = func(acts ...Activation) Option {
	return func(c *config) {
		c.layerActivations = acts
	}
}

// WithWorkers bounds the number of samples ForwardBatch evaluates at once
var WithWorkers = func(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithLog sets the logger
var WithLog = func(log *slog.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// NullWriter is a writer that discards all data
type NullWriter struct{}

func (NullWriter) Write(p []byte) (int, error) { return len(p), nil }

// NullLogger creates a logger that discards all output
func NullLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(NullWriter{}, nil))
}
