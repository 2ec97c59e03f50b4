package emit

// Event represents an observability event emitted during graph execution.
//
// Events provide detailed insight into execution behavior:
// - Node execution start/complete
// - Socket read/write activity
// - Errors and warnings
// - Timing
//
// Events are emitted to an Emitter which can:
// - Log to stdout/stderr
// - Send to OpenTelemetry
// - Store in time-series databases
// - Trigger alerts
type Event struct {
	// RunID identifies the execution run that emitted this event.
	RunID string

	// Step is the sequential position in the execute-list (1-indexed).
	// Zero for run-level events (start, complete, error).
	Step int

	// NodeID identifies which node emitted this event, by name.
	// Empty string for run-level events.
	NodeID string

	// Msg is a human-readable description of the event.
	Msg string

	// Meta contains additional structured data specific to this event.
	// Common keys:
	// - "duration_ms": Node execution duration in milliseconds
	// - "node_type": The node's registered type name
	// - "socket": The last socket id read or written, per the tracer
	// - "is_output": Whether that socket was an output
	Meta map[string]interface{}
}
