package graph

import "testing"

func newResolverFixture(t *testing.T) (*NodeTree, NodeID, NodeID) {
	t.Helper()
	system := NewNodeSystem()
	srcCfg, _ := NewNodeConfigBuilder("src").Output("out", KindImageMono).Build()
	sinkCfg, _ := NewNodeConfigBuilder("sink").
		Input("in", KindImageMono).
		Property(PropertyConfig{Name: "Gain", Kind: PropDouble, Default: DoubleValue(1.0)}).
		Build()
	srcID := sys0(system, "Src/Test", srcCfg)
	sinkID := sys0(system, "Sink/Test", sinkCfg)
	tree := NewNodeTree(system)
	src, _ := tree.CreateNode(srcID, "src")
	sink, _ := tree.CreateNode(sinkID, "sink")
	return tree, src, sink
}

func sys0(system *NodeSystem, name string, cfg *NodeConfig) NodeTypeID {
	return system.RegisterNodeType(name, func() NodeType { return &testSrc{cfg: cfg} })
}

func TestResolveSocket(t *testing.T) {
	tree, src, sink := newResolverFixture(t)
	resolver := NewResolver(tree)

	addr, err := resolver.ResolveSocket("o://src/out")
	if err != nil {
		t.Fatalf("ResolveSocket(output): %v", err)
	}
	if addr != (SocketAddress{Node: src, Socket: 0, IsOutput: true}) {
		t.Errorf("ResolveSocket(output) = %+v", addr)
	}

	addr, err = resolver.ResolveSocket("i://sink/in")
	if err != nil {
		t.Fatalf("ResolveSocket(input): %v", err)
	}
	if addr != (SocketAddress{Node: sink, Socket: 0, IsOutput: false}) {
		t.Errorf("ResolveSocket(input) = %+v", addr)
	}
}

func TestResolveSocketErrors(t *testing.T) {
	tree, _, _ := newResolverFixture(t)
	resolver := NewResolver(tree)

	cases := []string{
		"bogus://src/out",
		"o://nosuchnode/out",
		"o://src/nosuchsocket",
		"o://src",
	}
	for _, uri := range cases {
		if _, err := resolver.ResolveSocket(uri); err == nil {
			t.Errorf("ResolveSocket(%q) should fail", uri)
		}
	}
}

func TestResolveProperty(t *testing.T) {
	tree, _, sink := newResolverFixture(t)
	resolver := NewResolver(tree)

	node, prop, err := resolver.ResolveProperty("p://sink/Gain")
	if err != nil {
		t.Fatalf("ResolveProperty: %v", err)
	}
	if node != sink || prop != 0 {
		t.Errorf("ResolveProperty = %d, %d; want %d, 0", node, prop, sink)
	}

	if _, _, err := resolver.ResolveProperty("p://sink/NoSuch"); err == nil {
		t.Errorf("ResolveProperty(missing) should fail")
	}
	if _, _, err := resolver.ResolveProperty("x://sink/Gain"); err == nil {
		t.Errorf("ResolveProperty(wrong scheme) should fail")
	}
}
