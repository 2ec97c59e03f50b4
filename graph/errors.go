package graph

import "fmt"

// This file implements the engine's error taxonomy. Each kind is a
// distinct exported type so callers can use errors.As to recover the
// context (node id, socket id, message) that produced it, rather than
// matching on sentinel strings.

// BadSocketError reports a socket id outside a NodeConfig's declared range.
type BadSocketError struct {
	Node NodeID
	Socket SocketID
	IsOutput bool
}

func (e *BadSocketError) Error() string {
	side := "input"
	if e.IsOutput {
		side = "output"
	}
	return fmt.Sprintf("bad socket: node %d has no %s socket %d", e.Node, side, e.Socket)
}

// BadNodeError reports a node id that names no live node.
type BadNodeError struct {
	Node NodeID
}

func (e *BadNodeError) Error() string {
	return fmt.Sprintf("bad node: %d is not a live node", e.Node)
}

// BadConfigError reports a NodeConfig construction failure (duplicate
// socket/property name) or a write whose FlowKind does not match the
// declared output socket kind, found by the executor after the node's
// Execute returns.
type BadConfigError struct {
	Message string
}

func (e *BadConfigError) Error() string { return "bad config: " + e.Message }

// BadConnectionError reports a read or write using a FlowKind incompatible
// with the declared socket kind. Node/Socket/IsOutput record
// the tracer's last-recorded position so the executor can annotate the
// translated ExecutionError.
type BadConnectionError struct {
	Node NodeID
	Socket SocketID
	IsOutput bool
	Declared FlowKind
	Got FlowKind
}

func (e *BadConnectionError) Error() string {
	return fmt.Sprintf("bad connection: node %d socket %d: declared %s, got %s",
		e.Node, e.Socket, e.Declared, e.Got)
}

// LinkResult is the outcome of LinkNodes.
type LinkResult int

const (
	LinkOK LinkResult = iota
	LinkInvalidAddress
	LinkTwoOutputsOnInput
	LinkCycleDetected
)

// String names the LinkResult for logging/diagnostics.
func (r LinkResult) String() string {
	switch r {
	case LinkOK:
		return "ok"
	case LinkInvalidAddress:
		return "invalid address"
	case LinkTwoOutputsOnInput:
		return "two outputs on input"
	case LinkCycleDetected:
		return "cycle detected"
	default:
		return "unknown"
	}
}

// ExecutionError is raised out of Executor.Execute when a node reports
// Error, a state node's restart fails, or an internal error (BadSocket,
// BadNode, BadConfig, BadConnection, or any other escape) occurs during
// execution. It carries enough context to attribute the failure to a
// specific node and type.
type ExecutionError struct {
	NodeName string
	TypeName string
	Message string
	Cause error
}

func (e *ExecutionError) Error() string {
	if e.NodeName != "" {
		return fmt.Sprintf("execution error in node %q (%s): %s", e.NodeName, e.TypeName, e.Message)
	}
	return "execution error: " + e.Message
}

// Unwrap exposes the underlying cause, if any, for errors.Is/As chaining.
func (e *ExecutionError) Unwrap() error { return e.Cause }

// SerializerError reports a fatal (de)serialization failure: a parse
// failure, a missing top-level field, a rejected node creation, or an
// unmapped/rejected link during deserialize. Warnings
// (rejected property values) are non-fatal and are not reported this way;
// see Serializer.Warnings.
type SerializerError struct {
	Message string
	Cause error
}

func (e *SerializerError) Error() string { return "serializer error: " + e.Message }

// Unwrap exposes the underlying cause, if any.
func (e *SerializerError) Unwrap() error { return e.Cause }
