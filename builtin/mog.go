package builtin

import "github.com/nodegraphio/nodegraph-go/graph"

var mogConfig = mustBuildConfig(
	graph.NewNodeConfigBuilder("Running-average background/foreground mask, standing in for a full MOG2 model").
		Input("input", graph.KindImageMono).
		Output("output", graph.KindImageMono).
		Flag(graph.HasState))

// MOG accumulates a running per-pixel average and emits a binary mask of
// pixels that deviate from it by more than a fixed threshold — a minimal
// stand-in for a real mixture-of-Gaussians background subtractor.
type MOG struct {
	cfg *graph.NodeConfig
	background []float64
}

// NewMOG constructs a fresh MOG instance with no background model yet.
func NewMOG() graph.NodeType { return &MOG{cfg: mogConfig} }

// Config returns MOG's immutable socket/property description.
func (m *MOG) Config() *graph.NodeConfig { return m.cfg }

// Restart discards the accumulated background model, so the next frame
// seeds it fresh.
func (m *MOG) Restart() bool {
	m.background = nil
	return true
}

const mogLearningRate = 0.1
const mogThreshold = 25.0

// Execute updates the running background average and writes a mask of
// pixels whose distance from it exceeds mogThreshold.
func (m *MOG) Execute(reader *graph.SocketReader, writer *graph.SocketWriter) graph.ExecutionStatus {
	in, err := reader.Read(0)
	if err != nil {
		return graph.Errf(err.Error())
	}
	if in.Kind == graph.KindInvalid {
		return graph.Ok()
	}
	src := in.Image
	if m.background == nil || len(m.background) != len(src.Pix) {
		m.background = make([]float64, len(src.Pix))
		for i, p := range src.Pix {
			m.background[i] = float64(p)
		}
	}

	mask := make([]byte, len(src.Pix))
	for i, p := range src.Pix {
		diff := float64(p) - m.background[i]
		if diff < 0 {
			diff = -diff
		}
		if diff > mogThreshold {
			mask[i] = 255
		}
		m.background[i] += mogLearningRate * (float64(p) - m.background[i])
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
