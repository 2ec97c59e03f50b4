package builtin

import "github.com/nodegraphio/nodegraph-go/graph"

// Canny thresholds its input into a binary edge-ish mask. Its "Threshold"
// property must be non-negative; rejected writes leave the previous value
// in place and do not tag the node.
type Canny struct {
	cfg *graph.NodeConfig
	threshold float64
}

// NewCanny constructs a fresh Canny instance with Threshold 50.0.
func NewCanny() graph.NodeType {
	c := &Canny{threshold: 50.0}
	c.cfg = mustBuildConfig(
		graph.NewNodeConfigBuilder("Single-threshold edge mask standing in for a Canny detector").
			Input("input", graph.KindImageMono).
			Output("output", graph.KindImageMono).
			Property(graph.PropertyConfig{
				Name: "Threshold", Kind: graph.PropDouble, UIHint: "spinbox:0,255",
				Default: graph.DoubleValue(50.0),
				Validator: func(v graph.PropertyValue) bool { return v.Double >= 0 },
				Observer: func(v graph.PropertyValue) { c.threshold = v.Double },
			}))
	return c
}

// Config returns Canny's immutable socket/property description.
func (c *Canny) Config() *graph.NodeConfig { return c.cfg }

// Execute writes 255 for every pixel at or above Threshold, else 0.
func (c *Canny) Execute(reader *graph.SocketReader, writer *graph.SocketWriter) graph.ExecutionStatus {
	in, err := reader.Read(0)
	if err != nil {
		return graph.Errf(err.Error())
	}
	if in.Kind == graph.KindInvalid {
		return graph.Ok()
	}
	src := in.Image
	mask := make([]byte, len(src.Pix))
	for i, p := range src.Pix {
		if float64(p) >= c.threshold {
			mask[i] = 255
		}
	}
	out, err := writer.Acquire(0)
	if err != nil {
		return graph.Errf(err.Error())
	}
	*out = graph.FlowData{Kind: graph.KindImageMono, Image: graph.Image{
		Width: src.Width, Height: src.Height, Channels: src.Channels, Pix: mask,
	}}
	return graph.Ok()
}
