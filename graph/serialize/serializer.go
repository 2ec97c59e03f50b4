// Package serialize implements the NodeTree document format : a
// JSON document of nodes and links that round-trips a tree through
// Serialize/Deserialize, remapping node ids across the boundary and
// relocating filepath properties against a document root directory.
package serialize

import (
	"encoding/json"
	"path/filepath"
	"strconv"

	"github.com/nodegraphio/nodegraph-go/graph"
)

// Document is the on-disk shape of a serialized NodeTree.
type Document struct {
	Nodes []nodeDoc `json:"nodes"`
	Links []linkDoc `json:"links"`
}

type nodeDoc struct {
	ID int `json:"id"`
	Class string `json:"class"`
	Name string `json:"name"`
	Enabled bool `json:"enabled"`
	Properties []propertyDoc `json:"properties"`
	Inputs []socketDoc `json:"inputs"` // informational only; the engine never links by name
	Outputs []socketDoc `json:"outputs"` // informational only; the engine never links by name
}

// socketDoc names one declared socket of a node's type, for a reader's
// benefit only — Deserialize resolves links purely by numeric id.
type socketDoc struct {
	ID int `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type propertyDoc struct {
	ID int `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Value json.RawMessage `json:"value"`
}

type linkDoc struct {
	FromNode int `json:"fromNode"`
	FromSocket int `json:"fromSocket"`
	ToNode int `json:"toNode"`
	ToSocket int `json:"toSocket"`
}

// Serializer reads and writes a NodeTree document, relativizing and
// re-absolutizing filepath property values against Root.
type Serializer struct {
	Root string

	// Warnings accumulates non-fatal issues from the most recent
	// Deserialize call: a property value that failed its validator is
	// dropped (left at the type's default) and noted here rather than
	// aborting the whole load.
	Warnings []string
}

// NewSerializer creates a Serializer that relativizes filepaths against
// root.
func NewSerializer(root string) *Serializer {
	return &Serializer{Root: root}
}

// Serialize encodes every live node and link of tree into a Document. Node
// ids are remapped to a dense, ascending 0-based sequence local to the
// document; the mapping is not persisted, since Deserialize only needs
// link endpoints resolved at load time.
func (s *Serializer) Serialize(tree *graph.NodeTree) (*Document, error) {
	ids := tree.NodeIDs()
	fileID := make(map[graph.NodeID]int, len(ids))
	doc := &Document{}

	for i, id := range ids {
		fileID[id] = i
		n := tree.Node(id)
		cfg := n.Config()

		nd := nodeDoc{
			ID: i,
			Class: tree.NodeTypeName(id),
			Name: n.Name(),
			Enabled: !n.Flags().Has(graph.Disabled),
		}
		for _, sock := range cfg.Inputs() {
			nd.Inputs = append(nd.Inputs, socketDoc{ID: int(sock.ID), Name: sock.Name, Type: sock.Kind.String()})
		}
		for _, sock := range cfg.Outputs() {
			nd.Outputs = append(nd.Outputs, socketDoc{ID: int(sock.ID), Name: sock.Name, Type: sock.Kind.String()})
		}
		for pid, pc := range cfg.Properties() {
			val, ok := tree.NodePropertyValue(id, graph.PropertyID(pid))
			if !ok {
				continue
			}
			raw, err := marshalPropertyValue(val, s.Root)
			if err != nil {
				return nil, &graph.SerializerError{Message: "encoding property " + pc.Name + " of node " + n.Name(), Cause: err}
			}
			nd.Properties = append(nd.Properties, propertyDoc{ID: pid, Name: pc.Name, Type: pc.Kind.String(), Value: raw})
		}
		doc.Nodes = append(doc.Nodes, nd)
	}

	for _, l := range tree.Links() {
		fromNode := tree.Node(l.FromNode)
		toNode := tree.Node(l.ToNode)
		if fromNode == nil || toNode == nil {
			continue
		}
		doc.Links = append(doc.Links, linkDoc{
			FromNode: fileID[l.FromNode],
			FromSocket: int(l.FromSocket),
			ToNode: fileID[l.ToNode],
			ToSocket: int(l.ToSocket),
		})
	}
	return doc, nil
}

// Marshal is Serialize followed by json.MarshalIndent.
func (s *Serializer) Marshal(tree *graph.NodeTree) ([]byte, error) {
	doc, err := s.Serialize(tree)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", " ")
}

// Deserialize rebuilds a NodeTree from doc against system, a fresh type
// registry. It is fatal (returning a *graph.SerializerError and a nil
// tree) on any structural problem: an unregistered
// node type, a duplicate/invalid name, a link naming an unknown node or
// socket, or a link the tree itself rejects (two outputs on one input, a
// cycle). A rejected property value is not fatal; it is recorded in
// s.Warnings and the property is left at its type default.
func (s *Serializer) Deserialize(doc *Document, system *graph.NodeSystem) (*graph.NodeTree, error) {
	s.Warnings = nil
	tree := graph.NewNodeTree(system)

	createdID := make(map[int]graph.NodeID, len(doc.Nodes))
	for _, nd := range doc.Nodes {
		typeID := system.TypeIDByName(nd.Class)
		if !typeID.Valid() {
			return nil, &graph.SerializerError{Message: "unregistered node type: " + nd.Class}
		}
		id, err := tree.CreateNode(typeID, nd.Name)
		if err != nil {
			return nil, &graph.SerializerError{Message: "creating node " + nd.Name, Cause: err}
		}
		tree.SetNodeEnabled(id, nd.Enabled)
		createdID[nd.ID] = id

		cfg := tree.Node(id).Config()
		for _, pd := range nd.Properties {
			pc, found := cfg.PropertyByID(graph.PropertyID(pd.ID))
			if !found {
				s.Warnings = append(s.Warnings, "node "+nd.Name+": unknown property id "+strconv.Itoa(pd.ID))
				continue
			}
			val, err := unmarshalPropertyValue(pc.Kind, pd.Value, s.Root)
			if err != nil {
				s.Warnings = append(s.Warnings, "node "+nd.Name+": property "+pc.Name+": "+err.Error())
				continue
			}
			if !tree.NodeSetProperty(id, pc.ID, val) {
				s.Warnings = append(s.Warnings, "node "+nd.Name+": property "+pc.Name+" rejected by validator")
			}
		}
	}

	for _, ld := range doc.Links {
		fromID, ok := createdID[ld.FromNode]
		if !ok {
			return nil, &graph.SerializerError{Message: "link references unknown node id"}
		}
		toID, ok := createdID[ld.ToNode]
		if !ok {
			return nil, &graph.SerializerError{Message: "link references unknown node id"}
		}
		fromOutputs := tree.Node(fromID).Config().Outputs()
		if ld.FromSocket < 0 || ld.FromSocket >= len(fromOutputs) {
			return nil, &graph.SerializerError{Message: "link references unknown output socket id " + strconv.Itoa(ld.FromSocket)}
		}
		toInputs := tree.Node(toID).Config().Inputs()
		if ld.ToSocket < 0 || ld.ToSocket >= len(toInputs) {
			return nil, &graph.SerializerError{Message: "link references unknown input socket id " + strconv.Itoa(ld.ToSocket)}
		}
		from := graph.SocketAddress{Node: fromID, Socket: graph.SocketID(ld.FromSocket), IsOutput: true}
		to := graph.SocketAddress{Node: toID, Socket: graph.SocketID(ld.ToSocket), IsOutput: false}
		if res := tree.LinkNodes(from, to); res != graph.LinkOK {
			return nil, &graph.SerializerError{Message: "rejected link " + fromOutputs[ld.FromSocket].Name + " -> " + toInputs[ld.ToSocket].Name + ": " + res.String()}
		}
	}

	return tree, nil
}

// Unmarshal parses raw JSON bytes and calls Deserialize.
func (s *Serializer) Unmarshal(raw []byte, system *graph.NodeSystem) (*graph.NodeTree, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &graph.SerializerError{Message: "parsing document", Cause: err}
	}
	return s.Deserialize(&doc, system)
}

func marshalPropertyValue(v graph.PropertyValue, root string) (json.RawMessage, error) {
	var payload interface{}
	switch v.Kind {
	case graph.PropBoolean:
		payload = v.Boolean
	case graph.PropInteger:
		payload = v.Integer
	case graph.PropDouble:
		payload = v.Double
	case graph.PropEnum:
		payload = v.Enum
	case graph.PropMatrix3x3:
		payload = v.Matrix3
	case graph.PropFilepath:
		rel, err := filepath.Rel(root, v.Filepath)
		if err != nil {
			rel = v.Filepath
		}
		payload = rel
	default:
		payload = v.String
	}
	return json.Marshal(payload)
}

func unmarshalPropertyValue(kind graph.PropertyKind, raw json.RawMessage, root string) (graph.PropertyValue, error) {
	switch kind {
	case graph.PropBoolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return graph.PropertyValue{}, err
		}
		return graph.BoolValue(b), nil
	case graph.PropInteger:
		var i int32
		if err := json.Unmarshal(raw, &i); err != nil {
			return graph.PropertyValue{}, err
		}
		return graph.IntValue(i), nil
	case graph.PropDouble:
		var d float64
		if err := json.Unmarshal(raw, &d); err != nil {
			return graph.PropertyValue{}, err
		}
		return graph.DoubleValue(d), nil
	case graph.PropEnum:
		var e int32
		if err := json.Unmarshal(raw, &e); err != nil {
			return graph.PropertyValue{}, err
		}
		return graph.EnumValue(e), nil
	case graph.PropMatrix3x3:
		var m [9]float64
		if err := json.Unmarshal(raw, &m); err != nil {
			return graph.PropertyValue{}, err
		}
		return graph.Matrix3x3Value(m), nil
	case graph.PropFilepath:
		var rel string
		if err := json.Unmarshal(raw, &rel); err != nil {
			return graph.PropertyValue{}, err
		}
		return graph.FilepathValue(filepath.Join(root, rel)), nil
	default:
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return graph.PropertyValue{}, err
		}
		return graph.StringValue(str), nil
	}
}
