package graph

import "strings"

// Resolver translates the three URI schemes a NodeTree document or CLI
// command can reference a socket or property by (GLOSSARY):
//
//	i://<node>/<socket> an input socket
//	o://<node>/<socket> an output socket
//	p://<node>/<property> a property
//
// Node names never contain '/', so each form splits on exactly one '/'
// after the scheme.
type Resolver struct {
	tree *NodeTree
}

// NewResolver binds a Resolver to tree.
func NewResolver(tree *NodeTree) *Resolver { return &Resolver{tree: tree} }

// ResolveSocket parses an "i://" or "o://" URI into a SocketAddress.
func (r *Resolver) ResolveSocket(uri string) (SocketAddress, error) {
	isOutput, rest, ok := splitScheme(uri)
	if !ok {
		return SocketAddress{}, &BadConfigError{Message: "malformed socket URI: " + uri}
	}
	nodeName, socketName, ok := splitOnce(rest)
	if !ok {
		return SocketAddress{}, &BadConfigError{Message: "malformed socket URI: " + uri}
	}
	nodeID, ok := r.tree.ResolveNode(nodeName)
	if !ok {
		return SocketAddress{}, &BadConfigError{Message: "no such node: " + nodeName}
	}
	n := r.tree.nodeUnchecked(nodeID)
	if n == nil {
		return SocketAddress{}, &BadNodeError{Node: nodeID}
	}
	var desc SocketDesc
	var found bool
	if isOutput {
		desc, found = n.cfg.OutputByName(socketName)
	} else {
		desc, found = n.cfg.InputByName(socketName)
	}
	if !found {
		return SocketAddress{}, &BadSocketError{Node: nodeID, IsOutput: isOutput}
	}
	return SocketAddress{Node: nodeID, Socket: desc.ID, IsOutput: isOutput}, nil
}

// ResolveProperty parses a "p://" URI into a node id and property id.
func (r *Resolver) ResolveProperty(uri string) (NodeID, PropertyID, error) {
	rest, ok := strings.CutPrefix(uri, "p://")
	if !ok {
		return InvalidNodeID, InvalidPropertyID, &BadConfigError{Message: "malformed property URI: " + uri}
	}
	nodeName, propName, ok := splitOnce(rest)
	if !ok {
		return InvalidNodeID, InvalidPropertyID, &BadConfigError{Message: "malformed property URI: " + uri}
	}
	nodeID, ok := r.tree.ResolveNode(nodeName)
	if !ok {
		return InvalidNodeID, InvalidPropertyID, &BadConfigError{Message: "no such node: " + nodeName}
	}
	n := r.tree.nodeUnchecked(nodeID)
	if n == nil {
		return InvalidNodeID, InvalidPropertyID, &BadNodeError{Node: nodeID}
	}
	pc, found := n.cfg.PropertyByName(propName)
	if !found {
		return InvalidNodeID, InvalidPropertyID, &BadConfigError{Message: "no such property: " + propName}
	}
	return nodeID, pc.ID, nil
}

func splitScheme(uri string) (isOutput bool, rest string, ok bool) {
	switch {
	case strings.HasPrefix(uri, "i://"):
		return false, uri[len("i://"):], true
	case strings.HasPrefix(uri, "o://"):
		return true, uri[len("o://"):], true
	default:
		return false, "", false
	}
}

func splitOnce(s string) (before, after string, ok bool) {
	i := strings.IndexByte(s, '/')
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}
