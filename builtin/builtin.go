package builtin

import "github.com/nodegraphio/nodegraph-go/graph"

// mustBuildConfig finishes a NodeConfigBuilder for a package-level config
// var. A failure here is a programming error in this package, not a
// runtime condition, so it panics rather than threading an error back
// through every node type's package-level var initializer.
func mustBuildConfig(b *graph.NodeConfigBuilder) *graph.NodeConfig {
	cfg, err := b.Build()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Register adds every builtin node type to system under its conventional
// "<Category>/<Name>" name, and returns the number of registrations. It has
// the same signature as graph.PluginEntryPoint expects, so this package can
// also be wired up as a statically-linked stand-in for a .so plugin.
func Register(system *graph.NodeSystem) (int, error) {
	system.RegisterNodeType("Source/Src", func() graph.NodeType { return NewSrc() })
	system.RegisterNodeType("Filter/Gauss", func() graph.NodeType { return NewGauss() })
	system.RegisterNodeType("Sink/Sink", func() graph.NodeType { return NewSink() })
	system.RegisterNodeType("Source/VideoSrc", func() graph.NodeType { return NewVideoSrc() })
	system.RegisterNodeType("Filter/MOG", func() graph.NodeType { return NewMOG() })
	system.RegisterNodeType("Filter/Canny", func() graph.NodeType { return NewCanny() })
	return 6, nil
}
