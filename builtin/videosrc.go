package builtin

import "github.com/nodegraphio/nodegraph-go/graph"

var videoSrcConfig = mustBuildConfig(
	graph.NewNodeConfigBuilder("Synthetic frame source standing in for a video file reader").
		Output("output", graph.KindImageMono).
		Flag(graph.HasState).
		Flag(graph.AutoTag))

// VideoSrc is a stateful, self-tagging stream source: every Execute
// produces a fresh synthetic "frame" (a constant image whose pixel value
// advances with a frame counter), and — because its config declares
// AutoTag — notify_finish re-tags it so the next streaming session starts
// cleanly without the caller having to tag it by hand.
type VideoSrc struct {
	cfg *graph.NodeConfig
	frame int
}

// NewVideoSrc constructs a fresh VideoSrc instance, frame counter at 0.
func NewVideoSrc() graph.NodeType { return &VideoSrc{cfg: videoSrcConfig} }

// Config returns VideoSrc's immutable socket/property description.
func (v *VideoSrc) Config() *graph.NodeConfig { return v.cfg }

// Restart resets the frame counter to the start of the stream.
func (v *VideoSrc) Restart() bool {
	v.frame = 0
	return true
}

// Execute publishes a 10x10 image whose pixel value is derived from the
// current frame index, then advances the counter.
func (v *VideoSrc) Execute(reader *graph.SocketReader, writer *graph.SocketWriter) graph.ExecutionStatus {
	out, err := writer.Acquire(0)
	if err != nil {
		return graph.Errf(err.Error())
	}
	pix := make([]byte, 10*10)
	val := byte(v.frame % 256)
	for i := range pix {
		pix[i] = val
	}
	*out = graph.FlowData{Kind: graph.KindImageMono, Image: graph.Image{Width: 10, Height: 10, Channels: 1, Pix: pix}}
	v.frame++
	return graph.Tag()
}
