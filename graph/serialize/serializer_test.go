package serialize

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/nodegraphio/nodegraph-go/builtin"
	"github.com/nodegraphio/nodegraph-go/graph"
)

func newFixtureTree(t *testing.T) (*graph.NodeSystem, *graph.NodeTree, graph.NodeID, graph.NodeID) {
	t.Helper()
	system := graph.NewNodeSystem()
	builtin.Register(system)
	tree := graph.NewNodeTree(system)

	srcID := system.TypeIDByName("Source/Src")
	sinkID := system.TypeIDByName("Sink/Sink")
	src, err := tree.CreateNode(srcID, "src")
	if err != nil {
		t.Fatalf("CreateNode(src): %v", err)
	}
	sink, err := tree.CreateNode(sinkID, "sink")
	if err != nil {
		t.Fatalf("CreateNode(sink): %v", err)
	}
	if r := tree.LinkNodes(
		graph.SocketAddress{Node: src, Socket: 0, IsOutput: true},
		graph.SocketAddress{Node: sink, Socket: 0, IsOutput: false},
	); r != graph.LinkOK {
		t.Fatalf("LinkNodes: %v", r)
	}
	return system, tree, src, sink
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	system, tree, _, _ := newFixtureTree(t)
	ser := NewSerializer(t.TempDir())

	body, err := ser.Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	got, err := ser.Unmarshal(body, system)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.NodeCount() != tree.NodeCount() {
		t.Errorf("NodeCount = %d, want %d", got.NodeCount(), tree.NodeCount())
	}
	if len(got.Links()) != len(tree.Links()) {
		t.Errorf("Links = %d, want %d", len(got.Links()), len(tree.Links()))
	}
	if _, ok := got.ResolveNode("src"); !ok {
		t.Errorf("round-tripped tree should still have a node named src")
	}
}

func TestSerializePreservesPropertyValues(t *testing.T) {
	system := graph.NewNodeSystem()
	builtin.Register(system)
	tree := graph.NewNodeTree(system)

	cannyID := system.TypeIDByName("Filter/Canny")
	id, err := tree.CreateNode(cannyID, "edges")
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	cfg := tree.Node(id).Config()
	pc, found := cfg.PropertyByName("Threshold")
	if !found {
		t.Fatalf("Canny should declare a Threshold property")
	}
	if !tree.NodeSetProperty(id, pc.ID, graph.DoubleValue(99)) {
		t.Fatalf("NodeSetProperty should accept 99")
	}

	ser := NewSerializer(t.TempDir())
	body, err := ser.Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := ser.Unmarshal(body, system)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	gotID, _ := got.ResolveNode("edges")
	v, ok := got.NodePropertyValue(gotID, pc.ID)
	if !ok || v.Double != 99 {
		t.Errorf("round-tripped Threshold = %v, %v; want 99, true", v, ok)
	}
}

func TestMarshalUsesDocumentedWireFieldNames(t *testing.T) {
	_, tree, _, _ := newFixtureTree(t)
	ser := NewSerializer(t.TempDir())

	body, err := ser.Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var raw struct {
		Nodes []struct {
			ID int `json:"id"`
			Class string `json:"class"`
			Name string `json:"name"`
		} `json:"nodes"`
		Links []struct {
			FromNode int `json:"fromNode"`
			FromSocket int `json:"fromSocket"`
			ToNode int `json:"toNode"`
			ToSocket int `json:"toSocket"`
		} `json:"links"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		t.Fatalf("Unmarshal into wire-shape struct: %v", err)
	}
	if len(raw.Nodes) != 2 {
		t.Fatalf("Nodes = %d, want 2", len(raw.Nodes))
	}
	if raw.Nodes[0].Class == "" {
		t.Errorf("node document should carry a non-empty \"class\" field")
	}
	if len(raw.Links) != 1 {
		t.Fatalf("Links = %d, want 1", len(raw.Links))
	}
	if !strings.Contains(string(body), `"class"`) {
		t.Errorf("marshaled document should use the \"class\" field name, not \"type\"")
	}
	if strings.Contains(string(body), `"type":"Source/Src"`) || strings.Contains(string(body), `"type": "Source/Src"`) {
		t.Errorf("marshaled document should not tag the node type name as \"type\"")
	}
}

func TestMarshalPropertyCarriesNumericID(t *testing.T) {
	system := graph.NewNodeSystem()
	builtin.Register(system)
	tree := graph.NewNodeTree(system)
	cannyID := system.TypeIDByName("Filter/Canny")
	id, _ := tree.CreateNode(cannyID, "edges")

	ser := NewSerializer(t.TempDir())
	doc, err := ser.Serialize(tree)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	var node *nodeDoc
	for i := range doc.Nodes {
		if doc.Nodes[i].Name == "edges" {
			node = &doc.Nodes[i]
		}
	}
	if node == nil {
		t.Fatalf("serialized document missing node %q", "edges")
	}
	if len(node.Properties) == 0 {
		t.Fatalf("Canny node should serialize at least one property")
	}
	cfg := tree.Node(id).Config()
	pc, _ := cfg.PropertyByName("Threshold")
	if node.Properties[0].ID != int(pc.ID) {
		t.Errorf("property ID = %d, want %d (Threshold's numeric PropertyID)", node.Properties[0].ID, pc.ID)
	}
}

func TestDeserializeRejectsUnregisteredType(t *testing.T) {
	system := graph.NewNodeSystem()
	doc := &Document{Nodes: []nodeDoc{{ID: 0, Class: "NoSuch/Type", Name: "n"}}}
	ser := NewSerializer(t.TempDir())
	if _, err := ser.Deserialize(doc, system); err == nil {
		t.Errorf("Deserialize should reject an unregistered node type")
	}
}

func TestDeserializeRejectsBadLink(t *testing.T) {
	system := graph.NewNodeSystem()
	builtin.Register(system)
	doc := &Document{
		Nodes: []nodeDoc{
			{ID: 0, Class: "Source/Src", Name: "src"},
			{ID: 1, Class: "Sink/Sink", Name: "sink"},
		},
		Links: []linkDoc{{FromNode: 0, FromSocket: 99, ToNode: 1, ToSocket: 0}},
	}
	ser := NewSerializer(t.TempDir())
	if _, err := ser.Deserialize(doc, system); err == nil {
		t.Errorf("Deserialize should reject a link to an out-of-range socket id")
	}
}

func TestDeserializeWarnsOnRejectedProperty(t *testing.T) {
	system := graph.NewNodeSystem()
	builtin.Register(system)
	doc := &Document{
		Nodes: []nodeDoc{
			{ID: 0, Class: "Filter/Canny", Name: "edges", Properties: []propertyDoc{
				{ID: 0, Name: "Threshold", Type: "double", Value: []byte("-5")},
			}},
		},
	}
	ser := NewSerializer(t.TempDir())
	tree, err := ser.Deserialize(doc, system)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if len(ser.Warnings) == 0 {
		t.Errorf("a rejected property value should produce a warning, not a fatal error")
	}
	id, _ := tree.ResolveNode("edges")
	cfg := tree.Node(id).Config()
	pc, _ := cfg.PropertyByName("Threshold")
	v, _ := tree.NodePropertyValue(id, pc.ID)
	if v.Double != pc.Default.Double {
		t.Errorf("rejected property should be left at its default, got %v", v.Double)
	}
}
