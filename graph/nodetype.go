package graph

// NodeType is the user-implemented behavior of a node. The
// engine never looks inside a NodeType's internals; it only calls these
// methods, in the order Init (once, at creation), then Execute (possibly
// many times, with Restart between streaming sessions), then Finish (at the
// end of each streaming session, via NotifyFinish).
type NodeType interface {
	// Execute runs one step of this node's logic: it reads upstream
	// FlowData through reader and publishes results through writer.
	Execute(reader *SocketReader, writer *SocketWriter) ExecutionStatus

	// Config returns this node type's immutable socket/property/flag
	// description; a type may share one config across instances or build
	// one per instance.
	Config() *NodeConfig
}

// Restarter is implemented by node types that need to reset internal state
// before a new streaming session. Types that don't implement it are
// treated as always succeeding.
type Restarter interface {
	Restart() bool
}

// Finisher is implemented by node types that hold resources needing
// explicit release when streaming stops. Types that don't
// implement it get a no-op Finish.
type Finisher interface {
	Finish()
}

// Initializer is implemented by node types whose NodeConfig declares a
// non-empty ModuleName: Init is called once at creation time with the
// acquired module handle, and a false return rolls the node creation back.
type Initializer interface {
	Init(module ModuleHandle) bool
}

// restart calls nt.Restart() if nt implements Restarter, else succeeds.
func restart(nt NodeType) bool {
	if r, ok := nt.(Restarter); ok {
		return r.Restart()
	}
	return true
}

// finish calls nt.Finish() if nt implements Finisher, else does nothing.
func finish(nt NodeType) {
	if f, ok := nt.(Finisher); ok {
		f.Finish()
	}
}

// initWithModule calls nt.Init(module) if nt implements Initializer, else
// reports false: the default is no module used.
func initWithModule(nt NodeType, module ModuleHandle) bool {
	if i, ok := nt.(Initializer); ok {
		return i.Init(module)
	}
	return false
}

// Status is the three-way outcome a NodeType.Execute reports.
type Status uint8

const (
	// StatusOK is the normal outcome: nothing further for the engine to do.
	StatusOK Status = iota
	// StatusTag asks the engine to re-tag this node for the next pass,
	// used by self-driving sources that always have more to produce.
	StatusTag
	// StatusError asks the engine to tag this node and abort the run with
	// an ExecutionError carrying Message.
	StatusError
)

// ExecutionStatus is the result of one NodeType.Execute call.
type ExecutionStatus struct {
	Status Status
	// TimeMS is only consulted when the node's NodeConfig declares
	// OverridesTimeComputation; it then replaces the wall-clock
	// measurement as the node's recorded execution time.
	TimeMS float64
	Message string
}

// Ok constructs a StatusOK result.
func Ok() ExecutionStatus { return ExecutionStatus{Status: StatusOK} }

// Tag constructs a StatusTag result.
func Tag() ExecutionStatus { return ExecutionStatus{Status: StatusTag} }

// Errf constructs a StatusError result with the given message.
func Errf(message string) ExecutionStatus {
	return ExecutionStatus{Status: StatusError, Message: message}
}

// tracer records the (socket, is_output) of the last read or write
// performed through a SocketReader/SocketWriter, so the executor can
// attribute a BadConnection (or any other) failure to the socket in play
// when it occurred (GLOSSARY "Tracer"). One tracer is shared by
// the reader and writer bound to a single node's execution.
type tracer struct {
	node NodeID
	socket SocketID
	isOutput bool
}

func (t *tracer) record(socket SocketID, isOutput bool) {
	t.socket = socket
	t.isOutput = isOutput
}

// SocketReader lets a NodeType pull upstream FlowData by input socket id
//. It is rebound to a fresh (node, numInputs) pair before every
// Execute call.
type SocketReader struct {
	tree *NodeTree
	tr *tracer
	node NodeID
	numInputs SocketID

	// lastConnErr holds the most recent BadConnectionError Read produced,
	// if any, so the executor can translate a node's reported StatusError
	// into the standard "Wrong socket connection" ExecutionError even when
	// the node only forwarded err.Error() itself.
	lastConnErr *BadConnectionError
}

// Read returns the current value on input socket id. Out-of-range ids raise
// BadSocketError. Disconnected inputs return the process-wide empty
// FlowData rather than erroring, so a node can distinguish "nothing to
// read" from a type mismatch. A connected input whose upstream FlowData
// kind is not convertible to the socket's declared kind raises
// BadConnectionError.
func (r *SocketReader) Read(id SocketID) (FlowData, error) {
	if !id.Valid() || id >= r.numInputs {
		return FlowData{}, &BadSocketError{Node: r.node, Socket: id, IsOutput: false}
	}
	r.tr.record(id, false)
	data := r.tree.inputSocketUnchecked(r.node, id)
	if data.Kind == KindInvalid {
		return data, nil
	}
	if n := r.tree.nodeUnchecked(r.node); n != nil {
		declared := n.cfg.Inputs()[id].Kind
		if !data.ConvertibleTo(declared) {
			err := &BadConnectionError{Node: r.node, Socket: id, IsOutput: false, Declared: declared, Got: data.Kind}
			r.lastConnErr = err
			return FlowData{}, err
		}
	}
	return data, nil
}

// SocketWriter lets a NodeType publish a FlowData into one of its own
// output slots. It is rebound to a fresh node's output slots
// before every Execute call.
type SocketWriter struct {
	tree *NodeTree
	tr *tracer
	node NodeID
}

// Acquire returns a pointer to output slot id for in-place mutation. The
// slot's kind is fixed by the socket's declared kind; writing a FlowData of
// a different, non-convertible kind is caught by the executor right after
// Execute returns and reported as a BadConfigError inside an
// ExecutionError.
func (w *SocketWriter) Acquire(id SocketID) (*FlowData, error) {
	n := w.tree.nodeUnchecked(w.node)
	if n == nil || !id.Valid() || int(id) >= len(n.outputs) {
		return nil, &BadSocketError{Node: w.node, Socket: id, IsOutput: true}
	}
	w.tr.record(id, true)
	return &n.outputs[id], nil
}
