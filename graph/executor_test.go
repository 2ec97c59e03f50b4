package graph

import (
	"context"
	"testing"
	"time"

	"github.com/nodegraphio/nodegraph-go/graph/emit"
)

// execCountingType records how many times Execute ran and always succeeds.
type execCountingType struct {
	cfg   *NodeConfig
	calls *int
}

func (e *execCountingType) Config() *NodeConfig { return e.cfg }
func (e *execCountingType) Execute(r *SocketReader, w *SocketWriter) ExecutionStatus {
	*e.calls++
	if len(e.cfg.Outputs()) > 0 {
		out, err := w.Acquire(0)
		if err != nil {
			return Errf(err.Error())
		}
		*out = FlowData{Kind: e.cfg.Outputs()[0].Kind, Image: Image{Width: 1, Height: 1, Channels: 1, Pix: []byte{1}}}
	}
	return Ok()
}

// execFailingType always reports StatusError.
type execFailingType struct{ cfg *NodeConfig }

func (e *execFailingType) Config() *NodeConfig { return e.cfg }
func (e *execFailingType) Execute(r *SocketReader, w *SocketWriter) ExecutionStatus {
	return Errf("boom")
}

// execBadOutputType writes an output incompatible with its declared kind.
type execBadOutputType struct{ cfg *NodeConfig }

func (e *execBadOutputType) Config() *NodeConfig { return e.cfg }
func (e *execBadOutputType) Execute(r *SocketReader, w *SocketWriter) ExecutionStatus {
	out, _ := w.Acquire(0)
	*out = FlowData{Kind: KindArray}
	return Ok()
}

func TestExecutorExecuteRunsTaggedNodesInOrder(t *testing.T) {
	system := NewNodeSystem()
	srcCfg := newTestSrcConfig()
	sinkCfg := newTestSinkConfig()
	srcCalls, sinkCalls := 0, 0
	srcID := system.RegisterNodeType("Test/Src", func() NodeType { return &execCountingType{cfg: srcCfg, calls: &srcCalls} })
	sinkID := system.RegisterNodeType("Test/Sink", func() NodeType { return &execCountingType{cfg: sinkCfg, calls: &sinkCalls} })

	tree := NewNodeTree(system)
	src, _ := tree.CreateNode(srcID, "src")
	sink, _ := tree.CreateNode(sinkID, "sink")
	tree.LinkNodes(
		SocketAddress{Node: src, Socket: 0, IsOutput: true},
		SocketAddress{Node: sink, Socket: 0, IsOutput: false},
	)

	executor, err := NewExecutor(tree, WithEmitter(emit.NewNullEmitter()))
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}
	if err := executor.Execute(context.Background(), "run-1", true); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if srcCalls != 1 || sinkCalls != 1 {
		t.Errorf("srcCalls=%d sinkCalls=%d, want 1, 1", srcCalls, sinkCalls)
	}
	if tree.Node(sink).Flags().Has(Tagged) {
		t.Errorf("a plain StatusOK node should be untagged after a successful run")
	}
}

func TestExecutorExecuteAbortsOnError(t *testing.T) {
	system := NewNodeSystem()
	cfg := newTestSrcConfig()
	typeID := system.RegisterNodeType("Test/Failing", func() NodeType { return &execFailingType{cfg: cfg} })
	tree := NewNodeTree(system)
	id, _ := tree.CreateNode(typeID, "n")

	executor, _ := NewExecutor(tree)
	err := executor.Execute(context.Background(), "run-1", true)
	if err == nil {
		t.Fatalf("expected an ExecutionError")
	}
	execErr, ok := err.(*ExecutionError)
	if !ok {
		t.Fatalf("error was not an *ExecutionError: %v", err)
	}
	if execErr.NodeName != "n" {
		t.Errorf("ExecutionError.NodeName = %q, want n", execErr.NodeName)
	}
	if !tree.Node(id).Flags().Has(Tagged) {
		t.Errorf("a failed node should remain tagged so it runs again next time")
	}
}

func TestExecutorExecuteRejectsBadOutputKind(t *testing.T) {
	system := NewNodeSystem()
	cfg := newTestSrcConfig()
	typeID := system.RegisterNodeType("Test/BadOutput", func() NodeType { return &execBadOutputType{cfg: cfg} })
	tree := NewNodeTree(system)
	tree.CreateNode(typeID, "n")

	executor, _ := NewExecutor(tree)
	if err := executor.Execute(context.Background(), "run-1", true); err == nil {
		t.Fatalf("expected an error for a wrong-kind output write")
	}
}

// execReadForwardingType calls Read(0) and forwards whatever error it gets
// via Errf(err.Error()) — the pattern every builtin node uses.
type execReadForwardingType struct{ cfg *NodeConfig }

func (e *execReadForwardingType) Config() *NodeConfig { return e.cfg }
func (e *execReadForwardingType) Execute(r *SocketReader, w *SocketWriter) ExecutionStatus {
	if _, err := r.Read(0); err != nil {
		return Errf(err.Error())
	}
	return Ok()
}

func TestExecutorTranslatesBadConnectionToWrongSocketConnection(t *testing.T) {
	system := NewNodeSystem()
	srcCfg, _ := NewNodeConfigBuilder("src").Output("out", KindArray).Build()
	sinkCfg, _ := NewNodeConfigBuilder("sink").Input("in", KindImageMono).Build()
	srcID := system.RegisterNodeType("Test/ArraySrc", func() NodeType {
		return &execCountingType{cfg: srcCfg, calls: new(int)}
	})
	sinkID := system.RegisterNodeType("Test/MonoSink", func() NodeType { return &execReadForwardingType{cfg: sinkCfg} })

	tree := NewNodeTree(system)
	src, _ := tree.CreateNode(srcID, "src")
	sink, _ := tree.CreateNode(sinkID, "sink")
	tree.LinkNodes(
		SocketAddress{Node: src, Socket: 0, IsOutput: true},
		SocketAddress{Node: sink, Socket: 0, IsOutput: false},
	)

	executor, _ := NewExecutor(tree)
	err := executor.Execute(context.Background(), "run-1", true)
	if err == nil {
		t.Fatalf("expected an ExecutionError from a declared-kind mismatch")
	}
	execErr, ok := err.(*ExecutionError)
	if !ok {
		t.Fatalf("error was not an *ExecutionError: %v", err)
	}
	if execErr.Message != "Wrong socket connection" {
		t.Errorf("Message = %q, want %q", execErr.Message, "Wrong socket connection")
	}
	if _, ok := execErr.Cause.(*BadConnectionError); !ok {
		t.Errorf("Cause = %T, want *BadConnectionError", execErr.Cause)
	}
}

func TestExecutorWithMaxExecuteListSize(t *testing.T) {
	system, srcID, _ := newTestSystem()
	tree := NewNodeTree(system)
	tree.CreateNode(srcID, "a")
	tree.CreateNode(srcID, "b")

	executor, err := NewExecutor(tree, WithMaxExecuteListSize(1))
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}
	if err := executor.Execute(context.Background(), "run-1", true); err == nil {
		t.Errorf("exceeding the max execute-list size should fail")
	}
}

func TestExecutorRejectsNilClock(t *testing.T) {
	if _, err := NewExecutor(NewNodeTree(NewNodeSystem()), WithClock(nil)); err == nil {
		t.Errorf("WithClock(nil) should be rejected at construction")
	}
}

func TestExecutorStreamingStepCursor(t *testing.T) {
	system := NewNodeSystem()
	srcCfg := newTestSrcConfig()
	calls := 0
	typeID := system.RegisterNodeType("Test/Src", func() NodeType { return &execCountingType{cfg: srcCfg, calls: &calls} })
	tree := NewNodeTree(system)
	id, _ := tree.CreateNode(typeID, "n")

	executor, _ := NewExecutor(tree, WithClock(func() time.Time { return time.Unix(0, 0) }))
	if err := executor.BeginStep(true); err != nil {
		t.Fatalf("BeginStep: %v", err)
	}
	if !executor.HasWork() {
		t.Fatalf("HasWork should be true right after BeginStep with pending nodes")
	}
	if executor.CurrentNode() != id {
		t.Errorf("CurrentNode = %d, want %d", executor.CurrentNode(), id)
	}
	if err := executor.DoWork(context.Background(), "run-1"); err != nil {
		t.Fatalf("DoWork: %v", err)
	}
	if executor.HasWork() {
		t.Errorf("HasWork should be false once every node has run")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	executor.NotifyFinish()
	if executor.HasWork() {
		t.Errorf("NotifyFinish should clear the step cursor")
	}
}
