package graph

import (
	"time"

	"github.com/nodegraphio/nodegraph-go/graph/emit"
)

// Metrics receives executor timing and bookkeeping samples, wired to
// graph/metrics' Prometheus collectors. Executor calls these synchronously
// on its own goroutine, so an implementation must not block.
type Metrics interface {
	ObserveNodeExecution(nodeType string, ms float64)
	ObserveExecuteListSize(n int)
	IncTaggedNodes(n int)
}

// nullMetrics discards every sample; the Executor's zero value.
type nullMetrics struct{}

func (nullMetrics) ObserveNodeExecution(string, float64) {}
func (nullMetrics) ObserveExecuteListSize(int) {}
func (nullMetrics) IncTaggedNodes(int) {}

// config holds the Executor's optional dependencies, assembled by Option
// functions.
type config struct {
	emitter emit.Emitter
	metrics Metrics
	clock func() time.Time
	maxExecuteListSize int
}

func defaultConfig() config {
	return config{
		emitter: emit.NewNullEmitter(),
		metrics: nullMetrics{},
		clock: time.Now,
		maxExecuteListSize: 0, // 0 == unbounded
	}
}

// Option configures an Executor at construction time.
type Option func(*config) error

// WithEmitter sets the observability sink events are sent to. Defaults to a
// no-op emitter.
func WithEmitter(e emit.Emitter) Option {
	return func(c *config) error {
		c.emitter = e
		return nil
	}
}

// WithMetrics sets the Prometheus (or other) sink for timing and
// bookkeeping samples. Defaults to discarding all samples.
func WithMetrics(m Metrics) Option {
	return func(c *config) error {
		c.metrics = m
		return nil
	}
}

// WithClock overrides the wall-clock source used to time node execution,
// for deterministic tests. Defaults to time.Now.
func WithClock(clock func() time.Time) Option {
	return func(c *config) error {
		if clock == nil {
			return &BadConfigError{Message: "clock must not be nil"}
		}
		c.clock = clock
		return nil
	}
}

// WithMaxExecuteListSize caps the length of the execute-list a single
// Execute call accepts: a longer list makes Execute return an
// ExecutionError before any node runs. Zero (the default) means unbounded.
// This is a runaway-graph guard.
func WithMaxExecuteListSize(n int) Option {
	return func(c *config) error {
		if n < 0 {
			return &BadConfigError{Message: "max execute list size must be >= 0"}
		}
		c.maxExecuteListSize = n
		return nil
	}
}
