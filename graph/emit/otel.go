package emit

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelEmitter implements Emitter by creating OpenTelemetry spans.
//
// Each event becomes a span with:
// - Span name: event.Msg (e.g., "node_execute", "run_start", "run_complete")
// - Attributes: runID, step, nodeID, and all event.Meta fields
// - Timestamps: Derived from span creation
// - Status: Set to error if event.Meta["error"] exists
//
// Usage:
//
//	// Create tracer from OpenTelemetry provider
//	tracer := otel.Tracer("nodegraph-go")
//	emitter := emit.NewOTelEmitter(tracer)
//
//	// Emit events that become spans
//	emitter.Emit(Event{
//	 RunID: "run-001",
//	 Step: 1,
//	 NodeID: "blur1",
//	 Msg: "node_execute",
//	})
//
// Integration with OpenTelemetry:
//
//	// Setup OpenTelemetry provider (application code)
//	import (
//	 "go.opentelemetry.io/otel"
//	 sdktrace "go.opentelemetry.io/otel/sdk/trace"
//	)
//
//	// Create trace provider with exporter (Jaeger, Zipkin, etc.)
//	tp := sdktrace.NewTracerProvider(
//	 sdktrace.WithBatcher(exporter),
//	)
//	otel.SetTracerProvider(tp)
//
//	// Create emitter
//	tracer := otel.Tracer("nodegraph-go")
//	emitter := emit.NewOTelEmitter(tracer)
type OTelEmitter struct {
	tracer trace.Tracer
	spans []trace.Span // allocated by NewOTelEmitter; spans are ended at once and never stored here
}

// NewOTelEmitter creates a new OTelEmitter.
//
// Parameters:
// - tracer: OpenTelemetry tracer from otel.Tracer("service-name")
//
// Returns an OTelEmitter that creates spans for each event.
//
// Example:
//
//	tracer := otel.Tracer("nodegraph-go")
//	emitter := emit.NewOTelEmitter(tracer)
func NewOTelEmitter(tracer trace.Tracer) *OTelEmitter {
	return &OTelEmitter{
		tracer: tracer,
		spans: make([]trace.Span, 0),
	}
}

// Emit creates an OpenTelemetry span for the event.
//
// The span includes:
// - Name: event.Msg (e.g., "node_execute", "run_start", "run_complete")
// - Attributes: All event fields and metadata
// - Status: Error if event contains error metadata
// - Timestamps: Start time (now), end time (immediate for instant events)
//
// For performance, the span is immediately ended (not left open).
// This is appropriate for events representing points in time rather than
// durations spanning multiple goroutines.
func (o *OTelEmitter) Emit(event Event) {
	ctx := context.Background()
	_, span := o.tracer.Start(ctx, event.Msg)
	defer span.End()

	o.addStandardAttributes(span, event)
	o.addMetadataAttributes(span, event.Meta)

	if err, ok := event.Meta["error"].(string); ok {
		span.SetStatus(codes.Error, err)
		span.RecordError(fmt.Errorf("%s", err))
	}
}

// EmitBatch creates multiple spans efficiently.
//
// Batching provides performance benefits by:
// - Amortizing tracer overhead across multiple spans
// - Enabling span processor batch optimizations
// - Reducing context switching overhead
// - Maintaining temporal locality for related events
//
// All spans are created and ended immediately. They are recorded in the
// OpenTelemetry batch span processor for efficient export.
//
// Parameters:
// - ctx: Context for cancellation and trace propagation
// - events: Events to emit as spans
//
// Always returns nil.
func (o *OTelEmitter) EmitBatch(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	for _, event := range events {
		_, span := o.tracer.Start(ctx, event.Msg)

		o.addStandardAttributes(span, event)
		o.addMetadataAttributes(span, event.Meta)

		if err, ok := event.Meta["error"].(string); ok {
			span.SetStatus(codes.Error, err)
			span.RecordError(fmt.Errorf("%s", err))
		}

		span.End()
	}

	return nil
}

// Flush forces export of all pending spans.
//
// This method:
// - Calls ForceFlush on the tracer provider if available
// - Blocks until all spans are exported or timeout occurs
// - Should be called before application shutdown
// - Respects context cancellation and deadlines
//
// OpenTelemetry typically buffers spans in a batch span processor for efficiency.
// Flush ensures these buffered spans are sent to the backend (Jaeger, Zipkin, etc.)
// before the application exits.
//
// Usage:
//
//	defer func() {
//	 ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	 defer cancel()
//	 if err := emitter.Flush(ctx); err != nil {
//	 log.Printf("failed to flush spans: %v", err)
//	 }
//	}()
//
// Parameters:
// - ctx: Context with timeout/cancellation
//
// Returns error if flush fails or times out.
func (o *OTelEmitter) Flush(ctx context.Context) error {
	tp := otel.GetTracerProvider()

	type flusher interface {
		ForceFlush(context.Context) error
	}

	if f, ok := tp.(flusher); ok {
		return f.ForceFlush(ctx)
	}

	return nil
}

// addStandardAttributes adds core event fields as span attributes.
func (o *OTelEmitter) addStandardAttributes(span trace.Span, event Event) {
	span.SetAttributes(
		attribute.String("nodegraph.run_id", event.RunID),
		attribute.Int("nodegraph.step", event.Step),
		attribute.String("nodegraph.node_id", event.NodeID),
	)
}

// addMetadataAttributes converts event metadata to span attributes.
//
// Handles common types:
// - string, int, int64, float64, bool: Direct conversion
// - time.Duration: Convert to milliseconds
// - Other types: Convert to string representation
//
// Well-known execution attributes are mapped onto the nodegraph.* namespace:
// - duration_ms: node execution time in milliseconds
// - node_type: the node's registered type name
// - socket: the last socket id touched by the tracer
// - is_output: whether that socket was an output
func (o *OTelEmitter) addMetadataAttributes(span trace.Span, meta map[string]interface{}) {
	if meta == nil {
		return
	}

	for key, value := range meta {
		attrKey := key
		switch key {
		case "duration_ms":
			attrKey = "nodegraph.duration_ms"
		case "node_type":
			attrKey = "nodegraph.node_type"
		case "socket":
			attrKey = "nodegraph.socket"
		case "is_output":
			attrKey = "nodegraph.is_output"
		}

		switch v := value.(type) {
		case string:
			span.SetAttributes(attribute.String(attrKey, v))
		case int:
			span.SetAttributes(attribute.Int(attrKey, v))
		case int64:
			span.SetAttributes(attribute.Int64(attrKey, v))
		case float64:
			span.SetAttributes(attribute.Float64(attrKey, v))
		case bool:
			span.SetAttributes(attribute.Bool(attrKey, v))
		case time.Duration:
			span.SetAttributes(attribute.Int64(attrKey, int64(v/time.Millisecond)))
		default:
			span.SetAttributes(attribute.String(attrKey, fmt.Sprintf("%v", v)))
		}
	}
}
