package graph

import (
	"io"
	"testing"
	"time"

	"github.com/nodegraphio/nodegraph-go/graph/emit"
)

func TestFunctionalOptions(t *testing.T) {
	tree := NewNodeTree(NewNodeSystem())
	clock := func() time.Time { return time.Unix(0, 0) }

	executor, err := NewExecutor(tree,
		WithEmitter(emit.NewLogEmitter(io.Discard, false)),
		WithClock(clock),
		WithMaxExecuteListSize(5),
	)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}
	if executor.cfg.maxExecuteListSize != 5 {
		t.Errorf("maxExecuteListSize = %d, want 5", executor.cfg.maxExecuteListSize)
	}
	if executor.cfg.clock() != clock() {
		t.Errorf("clock was not wired through WithClock")
	}
}

func TestWithMaxExecuteListSizeRejectsNegative(t *testing.T) {
	if _, err := NewExecutor(NewNodeTree(NewNodeSystem()), WithMaxExecuteListSize(-1)); err == nil {
		t.Errorf("WithMaxExecuteListSize(-1) should be rejected")
	}
}

func TestDefaultConfigDiscardsSamples(t *testing.T) {
	cfg := defaultConfig()
	cfg.metrics.ObserveNodeExecution("x", 1)
	cfg.metrics.ObserveExecuteListSize(1)
	cfg.metrics.IncTaggedNodes(1)
	// nullMetrics must not panic; nothing further to assert.
}
