package builtin

import "github.com/nodegraphio/nodegraph-go/graph"

var sinkConfig = mustBuildConfig(
	graph.NewNodeConfigBuilder("Terminal node that only retains its last input").
		Input("input", graph.KindImageMono))

// Sink retains whatever FlowData it last read, for tests and diagnostics
// to inspect; it has no output sockets.
type Sink struct {
	cfg *graph.NodeConfig
	Output graph.FlowData
}

// NewSink constructs a fresh Sink instance.
func NewSink() graph.NodeType { return &Sink{cfg: sinkConfig} }

// Config returns Sink's immutable socket/property description.
func (s *Sink) Config() *graph.NodeConfig { return s.cfg }

// Execute copies the current input into Output.
func (s *Sink) Execute(reader *graph.SocketReader, writer *graph.SocketWriter) graph.ExecutionStatus {
	in, err := reader.Read(0)
	if err != nil {
		return graph.Errf(err.Error())
	}
	s.Output = in
	return graph.Ok()
}
