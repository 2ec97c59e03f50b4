// Package builtin provides a handful of minimal node types — an image
// source, a box-blur filter, a sink, a stateful stream source, a
// background-model stand-in, and a threshold node with a validated property
// — sufficient to exercise the engine end to end. None of these perform
// real computer vision; they are intentionally trivial stand-ins, since
// concrete node implementations live outside the engine's own scope.
package builtin

import "github.com/nodegraphio/nodegraph-go/graph"

// srcConfig is shared by every Src instance.
var srcConfig = mustBuildConfig(
	graph.NewNodeConfigBuilder("Fixed-size test image source").
		Output("output", graph.KindImageMono))

// Src publishes a fixed 10x10 single-channel gray image on every run.
type Src struct {
	cfg *graph.NodeConfig
}

// NewSrc constructs a fresh Src instance; it is also used as the
// registered factory.
func NewSrc() graph.NodeType {
	return &Src{cfg: srcConfig}
}

// Config returns Src's immutable socket/property description.
func (s *Src) Config() *graph.NodeConfig { return s.cfg }

// Execute fills the output slot with a constant 10x10 gray image.
func (s *Src) Execute(reader *graph.SocketReader, writer *graph.SocketWriter) graph.ExecutionStatus {
	out, err := writer.Acquire(0)
	if err != nil {
		return graph.Errf(err.Error())
	}
	pix := make([]byte, 10*10)
	for i := range pix {
		pix[i] = 128
	}
	*out = graph.FlowData{Kind: graph.KindImageMono, Image: graph.Image{Width: 10, Height: 10, Channels: 1, Pix: pix}}
	return graph.Ok()
}
