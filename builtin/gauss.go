package builtin

import "github.com/nodegraphio/nodegraph-go/graph"

// Gauss blurs its input with a box filter of the configured radius
// (a stand-in for a true Gaussian blur, per this package's doc comment).
// Its Radius property observer writes directly into the instance, so —
// unlike Src or Sink — its NodeConfig is built fresh per instance rather
// than shared from a package-level var.
type Gauss struct {
	cfg *graph.NodeConfig
	radius int32
}

// NewGauss constructs a fresh Gauss instance with radius 1.
func NewGauss() graph.NodeType {
	g := &Gauss{radius: 1}
	g.cfg = mustBuildConfig(
		graph.NewNodeConfigBuilder("Separable box blur standing in for a Gaussian").
			Input("input", graph.KindImageMono).
			Output("output", graph.KindImageMono).
			Property(graph.PropertyConfig{
				Name: "Radius", Kind: graph.PropInteger, UIHint: "spinbox:1,32",
				Default: graph.IntValue(1),
				Validator: func(v graph.PropertyValue) bool { return v.Integer >= 1 && v.Integer <= 32 },
				Observer: func(v graph.PropertyValue) { g.radius = v.Integer },
			}))
	return g
}

// Config returns Gauss's immutable socket/property description.
func (g *Gauss) Config() *graph.NodeConfig { return g.cfg }

// Init has no module dependency, so it is never called; Gauss does not
// implement graph.Initializer.

// Execute reads its input image and writes a box-blurred copy.
func (g *Gauss) Execute(reader *graph.SocketReader, writer *graph.SocketWriter) graph.ExecutionStatus {
	in, err := reader.Read(0)
	if err != nil {
		return graph.Errf(err.Error())
	}
	if in.Kind == graph.KindInvalid {
		return graph.Ok()
	}

	src := in.Image
	radius := int(g.radius)
	dst := make([]byte, len(src.Pix))
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			sum, n := 0, 0
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					ny, nx := y+dy, x+dx
					if ny < 0 || ny >= src.Height || nx < 0 || nx >= src.Width {
						continue
					}
					sum += int(src.Pix[ny*src.Width+nx])
					n++
				}
			}
			dst[y*src.Width+x] = byte(sum / n)
		}
	}

	out, err := writer.Acquire(0)
	if err != nil {
		return graph.Errf(err.Error())
	}
	*out = graph.FlowData{Kind: graph.KindImageMono, Image: graph.Image{
		Width: src.Width, Height: src.Height, Channels: src.Channels, Pix: dst,
	}}
	return graph.Ok()
}
