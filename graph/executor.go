package graph

import (
	"context"
	"fmt"

	"github.com/nodegraphio/nodegraph-go/graph/emit"
)

// Executor runs a NodeTree's prepared execute-list, either as one batch
// or one node at a time via a step cursor. It
// owns the tracer/reader/writer triple rebound before every node's Execute
// call and translates NodeType-reported status into tree mutation, timing,
// and observability events.
type Executor struct {
	tree *NodeTree
	cfg config

	// step cursor state, valid only between a Begin and the matching
	// Finish of a streaming session.
	list []NodeID
	pos int
}

// NewExecutor binds an Executor to tree, applying opts in order.
func NewExecutor(tree *NodeTree, opts...Option) (*Executor, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &Executor{tree: tree, cfg: cfg}, nil
}

// Execute runs every node in the freshly-prepared execute-list to
// completion, in order. withInit restarts every state node
// first (via Restarter, defaulting to success) before any node executes,
// used to begin a new streaming session; pass false to continue an
// existing one.
//
// A node reporting StatusError aborts the run: the remaining nodes in the
// list are left untouched (not executed, not untagged) and Execute returns
// an *ExecutionError naming the failing node. Every other node is untagged
// on success except one whose config declares AutoTag, or whose status was
// StatusTag, which stays tagged so it runs again next time (this also
// means a tree is never fully "clean" after a run that touches an
// AutoTag/self-tagging source — this is intentional, not a bug).
func (e *Executor) Execute(ctx context.Context, runID string, withInit bool) error {
	list := e.tree.PrepareList()

	// Whether this call returns normally or with an error, the execute-list
	// is stale once it returns, so the next Execute (or PrepareList) always
	// recomputes rather than silently reusing stale ordering — this also
	// makes an untagged run idempotent, since nothing remains tagged.
	defer e.tree.MarkDirty()

	if e.cfg.maxExecuteListSize > 0 && len(list) > e.cfg.maxExecuteListSize {
		return &ExecutionError{Message: fmt.Sprintf("execute list size %d exceeds limit %d", len(list), e.cfg.maxExecuteListSize)}
	}
	e.cfg.metrics.ObserveExecuteListSize(len(list))
	e.cfg.metrics.IncTaggedNodes(len(list))

	if withInit {
		for _, id := range list {
			n := e.tree.nodeUnchecked(id)
			if n == nil || !n.flags.Has(StateNode) {
				continue
			}
			if !restart(n.nt) {
				return &ExecutionError{NodeName: n.name, TypeName: e.tree.NodeTypeName(id), Message: "restart failed"}
			}
		}
	}

	for step, id := range list {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.runOne(ctx, runID, step+1, id); err != nil {
			return err
		}
	}
	return nil
}

// runOne executes a single node, times it, emits an event, and applies the
// resulting status to the tree. A node that reports StatusError after any
// of its Reads in this execution raised a BadConnectionError is translated to an ExecutionError
// whose Message is the standard "Wrong socket connection", regardless of
// whatever message the node itself reported — this is the read-side
// counterpart to checkOutputKinds' automatic write-side check.
func (e *Executor) runOne(ctx context.Context, runID string, step int, id NodeID) error {
	n := e.tree.nodeUnchecked(id)
	if n == nil {
		return &BadNodeError{Node: id}
	}
	typeName := e.tree.NodeTypeName(id)

	tr := &tracer{node: id}
	reader := &SocketReader{tree: e.tree, tr: tr, node: id, numInputs: SocketID(len(n.cfg.Inputs()))}
	writer := &SocketWriter{tree: e.tree, tr: tr, node: id}

	start := e.cfg.clock()
	status := n.nt.Execute(reader, writer)
	elapsed := e.cfg.clock().Sub(start)

	ms := float64(elapsed.Microseconds()) / 1000.0
	if n.flags.Has(NodeOverridesTimeComp) {
		ms = status.TimeMS
	}
	n.lastExecMS = ms
	n.lastMsg = status.Message
	e.cfg.metrics.ObserveNodeExecution(typeName, ms)

	if err := checkOutputKinds(n); err != nil {
		n.flags |= Tagged
		return &ExecutionError{NodeName: n.name, TypeName: typeName, Message: "wrong output kind written", Cause: err}
	}

	meta := map[string]interface{}{
		"duration_ms": ms,
		"node_type": typeName,
		"socket": tr.socket,
		"is_output": tr.isOutput,
	}
	if status.Status == StatusError {
		meta["error"] = statusMsg(status)
	}
	e.cfg.emitter.Emit(emit.Event{
		RunID: runID,
		Step: step,
		NodeID: n.name,
		Msg: statusMsg(status),
		Meta: meta,
	})

	switch status.Status {
	case StatusOK:
		if !n.flags.Has(NodeAutoTag) {
			n.flags &^= Tagged
		}
		return nil
	case StatusTag:
		n.flags |= Tagged
		return nil
	case StatusError:
		n.flags |= Tagged
		if reader.lastConnErr != nil {
			return &ExecutionError{NodeName: n.name, TypeName: typeName, Message: "Wrong socket connection", Cause: reader.lastConnErr}
		}
		return &ExecutionError{NodeName: n.name, TypeName: typeName, Message: status.Message}
	default:
		return &ExecutionError{NodeName: n.name, TypeName: typeName, Message: "unknown execution status"}
	}
}

// checkOutputKinds validates that every output slot a node just populated
// still declares a kind convertible to its socket's declared kind. A
// node type that writes an incompatible FlowData kind is an authoring bug,
// not a wiring problem, so it is reported as BadConfigError rather than
// BadConnectionError.
func checkOutputKinds(n *Node) error {
	for i, desc := range n.cfg.Outputs() {
		got := n.outputs[i]
		if got.Kind == KindInvalid {
			continue
		}
		if !got.ConvertibleTo(desc.Kind) {
			return &BadConfigError{Message: fmt.Sprintf("output %q: declared %s, wrote %s", desc.Name, desc.Kind, got.Kind)}
		}
	}
	return nil
}

func statusMsg(s ExecutionStatus) string {
	if s.Message != "" {
		return s.Message
	}
	switch s.Status {
	case StatusTag:
		return "tagged for next pass"
	case StatusError:
		return "execution error"
	default:
		return "ok"
	}
}

// --- streaming step executor -------------------------------

// BeginStep prepares (or reuses, if clean) the execute-list and resets the
// step cursor to its start, optionally restarting state nodes as Execute
// would with withInit.
func (e *Executor) BeginStep(withInit bool) error {
	e.list = e.tree.PrepareList()
	e.pos = 0
	if !withInit {
		return nil
	}
	for _, id := range e.list {
		n := e.tree.nodeUnchecked(id)
		if n == nil || !n.flags.Has(StateNode) {
			continue
		}
		if !restart(n.nt) {
			return &ExecutionError{NodeName: n.name, TypeName: e.tree.NodeTypeName(id), Message: "restart failed"}
		}
	}
	return nil
}

// HasWork reports whether the step cursor still has nodes left to run in
// the current session.
func (e *Executor) HasWork() bool { return e.pos < len(e.list) }

// CurrentNode returns the node the next DoWork call will run, or
// InvalidNodeID if HasWork is false.
func (e *Executor) CurrentNode() NodeID {
	if !e.HasWork() {
		return InvalidNodeID
	}
	return e.list[e.pos]
}

// DoWork executes exactly the current node and advances the cursor. It is
// a no-op returning nil if HasWork is false.
func (e *Executor) DoWork(ctx context.Context, runID string) error {
	if !e.HasWork() {
		return nil
	}
	id := e.list[e.pos]
	step := e.pos + 1
	e.pos++
	return e.runOne(ctx, runID, step, id)
}

// NotifyFinish ends the current streaming session: it calls Finish on
// every live node (via Finisher, defaulting to no-op) and re-tags every
// AutoTag node for the next session.
func (e *Executor) NotifyFinish() {
	e.tree.NotifyFinish()
	e.tree.MarkDirty()
	e.list = nil
	e.pos = 0
}
