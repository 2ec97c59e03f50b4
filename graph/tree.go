package graph

import (
	"sort"
	"strconv"
	"strings"
)

// NodeTree is the slot-allocated graph of node instances: a dense node
// slice indexed by NodeID with a free-list of recycled ids, a sorted link
// vector, a name->id index, and a cached execute-list with a single dirty
// bit.
type NodeTree struct {
	system *NodeSystem

	nodes []Node
	freeList []NodeID
	links []NodeLink
	names map[string]NodeID

	executeList []NodeID
	dirty bool
}

// NewNodeTree creates an empty tree bound to the given type system.
func NewNodeTree(system *NodeSystem) *NodeTree {
	return &NodeTree{
		system: system,
		names: make(map[string]NodeID),
		dirty: true,
	}
}

// System returns the type system this tree resolves node types against.
func (t *NodeTree) System() *NodeSystem { return t.system }

// --- node slot access -------------------------------------------------

func (t *NodeTree) nodeUnchecked(id NodeID) *Node {
	if !id.Valid() || int(id) >= len(t.nodes) {
		return nil
	}
	n := &t.nodes[id]
	if !n.live() {
		return nil
	}
	return n
}

// Node returns a read-only view of the live node at id, or nil.
func (t *NodeTree) Node(id NodeID) *Node { return t.nodeUnchecked(id) }

// --- creation / removal -------------------------------------------------

// CreateNode instantiates a node of the given registered type with the
// given unique name. It rejects a name that is already
// used, contains '/', or names an unregistered type; on success it tags
// the new node and returns its id.
func (t *NodeTree) CreateNode(typeID NodeTypeID, name string) (NodeID, error) {
	if !typeID.Valid() {
		return InvalidNodeID, &BadConfigError{Message: "unknown node type"}
	}
	if _, exists := t.names[name]; exists {
		return InvalidNodeID, &BadConfigError{Message: "node name already in use: " + name}
	}
	if strings.Contains(name, "/") {
		return InvalidNodeID, &BadConfigError{Message: "node name must not contain '/': " + name}
	}
	nt := t.system.New(typeID)
	if nt == nil {
		return InvalidNodeID, &BadConfigError{Message: "unknown node type"}
	}
	cfg := nt.Config()

	var module ModuleHandle
	if cfg.ModuleName != "" {
		m, err := t.system.Modules.Acquire(cfg.ModuleName)
		if err != nil {
			return InvalidNodeID, err
		}
		module = m
	}
	if cfg.ModuleName != "" {
		if ok := initWithModule(nt, module); !ok {
			t.system.Modules.Release(cfg.ModuleName)
			return InvalidNodeID, &BadConfigError{Message: "node init failed for module " + cfg.ModuleName}
		}
	}

	flags := Tagged
	if cfg.Flags.Has(HasState) {
		flags |= StateNode
	}
	if cfg.Flags.Has(AutoTag) {
		flags |= NodeAutoTag
	}
	if cfg.Flags.Has(OverridesTimeComputation) {
		flags |= NodeOverridesTimeComp
	}

	props := make([]PropertyValue, len(cfg.Properties()))
	for i, p := range cfg.Properties() {
		props[i] = p.Default
	}

	node := Node{
		typeID: typeID,
		name: name,
		nt: nt,
		cfg: cfg,
		outputs: make([]FlowData, len(cfg.Outputs())),
		flags: flags,
	}
	node.props = props

	id := t.allocSlot(node)
	t.names[name] = id
	t.recomputeConnectivity(id)
	t.dirty = true
	return id, nil
}

// CreateNodeByName resolves typeName through the tree's NodeSystem and
// calls CreateNode.
func (t *NodeTree) CreateNodeByName(typeName, name string) (NodeID, error) {
	return t.CreateNode(t.system.TypeIDByName(typeName), name)
}

func (t *NodeTree) allocSlot(node Node) NodeID {
	if n := len(t.freeList); n > 0 {
		id := t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		t.nodes[id] = node
		return id
	}
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, node)
	return id
}

// RemoveNode untags, erases the name mapping, removes every incident link
// (re-tagging each removed edge's downstream end), and recycles id.
// It returns false if id does not name a live node.
func (t *NodeTree) RemoveNode(id NodeID) bool {
	n := t.nodeUnchecked(id)
	if n == nil {
		return false
	}

	if cfg := n.cfg; cfg.ModuleName != "" {
		t.system.Modules.Release(cfg.ModuleName)
	}

	kept := t.links[:0:0]
	for _, l := range t.links {
		if l.FromNode == id || l.ToNode == id {
			if l.FromNode == id && l.ToNode != id {
				t.TagNode(l.ToNode)
			}
			continue
		}
		kept = append(kept, l)
	}
	t.links = kept

	delete(t.names, n.name)
	t.nodes[id] = newSentinelNode()
	t.freeList = append(t.freeList, id)
	t.dirty = true
	return true
}

// RemoveNodeByName resolves name and calls RemoveNode.
func (t *NodeTree) RemoveNodeByName(name string) bool {
	id, ok := t.names[name]
	if !ok {
		return false
	}
	return t.RemoveNode(id)
}

// DuplicateNode creates a new node of the same type with a generated unique
// name and copies the source's property values. It does not copy inbound
// or outbound links — preserved exactly, an explicit design decision, not
// an omission.
func (t *NodeTree) DuplicateNode(id NodeID) (NodeID, error) {
	src := t.nodeUnchecked(id)
	if src == nil {
		return InvalidNodeID, &BadNodeError{Node: id}
	}
	name := t.GenerateNodeName(src.typeID)
	newID, err := t.CreateNode(src.typeID, name)
	if err != nil {
		return InvalidNodeID, err
	}
	dst := t.nodeUnchecked(newID)
	copy(dst.props, src.props)
	return newID, nil
}

// GenerateNodeName returns the first "<default> [<n>]" name (n implicitly
// starting at 1 when the bare default is already taken) not currently used
// in the tree. <default> is the part of the registered type name after its
// last '/', so the result is always a valid node name. It searches upward
// from 1 rather than tracking a per-type counter, so a name freed by
// RemoveNode is reused before the search moves past it.
func (t *NodeTree) GenerateNodeName(typeID NodeTypeID) string {
	base := t.system.TypeName(typeID)
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if _, used := t.names[base]; !used {
		return base
	}
	for n := 1; ; n++ {
		candidate := base + " [" + strconv.Itoa(n) + "]"
		if _, used := t.names[candidate]; !used {
			return candidate
		}
	}
}

// --- naming / resolution -------------------------------------------------

// SetNodeName renames a live node, rejecting duplicate or '/'-containing
// names.
func (t *NodeTree) SetNodeName(id NodeID, name string) bool {
	n := t.nodeUnchecked(id)
	if n == nil || strings.Contains(name, "/") {
		return false
	}
	if existing, used := t.names[name]; used && existing != id {
		return false
	}
	delete(t.names, n.name)
	n.name = name
	t.names[name] = id
	return true
}

// NodeName returns the name of a live node.
func (t *NodeTree) NodeName(id NodeID) (string, bool) {
	n := t.nodeUnchecked(id)
	if n == nil {
		return "", false
	}
	return n.name, true
}

// ResolveNode looks up a node id by name.
func (t *NodeTree) ResolveNode(name string) (NodeID, bool) {
	id, ok := t.names[name]
	return id, ok
}

// NodeTypeID returns the registered type id of a live node.
func (t *NodeTree) NodeTypeID(id NodeID) NodeTypeID {
	n := t.nodeUnchecked(id)
	if n == nil {
		return InvalidNodeTypeID
	}
	return n.typeID
}

// NodeTypeName returns the registered type name of a live node.
func (t *NodeTree) NodeTypeName(id NodeID) string {
	return t.system.TypeName(t.NodeTypeID(id))
}

// --- links ---------------------------------------------------------------

// LinkNodes validates, inserts, and cycle-checks a link between two socket
// addresses. The output-side address may be passed as either
// argument; LinkNodes swaps them so the stored link's From side is always
// the output. It rejects invalid addresses, a target input that already has
// an incoming link, and any insertion that would create a cycle (rolling
// the speculative insertion back in that case).
func (t *NodeTree) LinkNodes(a, b SocketAddress) LinkResult {
	from, to, ok := orderEndpoints(a, b)
	if !ok {
		return LinkInvalidAddress
	}
	if t.nodeUnchecked(from.Node) == nil || t.nodeUnchecked(to.Node) == nil {
		return LinkInvalidAddress
	}
	if int(from.Socket) >= len(t.nodeUnchecked(from.Node).cfg.Outputs()) {
		return LinkInvalidAddress
	}
	if int(to.Socket) >= len(t.nodeUnchecked(to.Node).cfg.Inputs()) {
		return LinkInvalidAddress
	}

	link := NodeLink{FromNode: from.Node, FromSocket: from.Socket, ToNode: to.Node, ToSocket: to.Socket}

	for _, l := range t.links {
		if l.ToNode == link.ToNode && l.ToSocket == link.ToSocket {
			return LinkTwoOutputsOnInput
		}
	}

	t.insertLinkSorted(link)

	if t.reachable(to.Node, from.Node) {
		t.removeLinkSorted(link)
		return LinkCycleDetected
	}

	t.TagNode(to.Node)
	t.recomputeConnectivity(to.Node)
	t.dirty = true
	return LinkOK
}

// orderEndpoints swaps a and b, if necessary, so the output-side address
// is returned first. It fails if neither or both sides are outputs, or
// either address is otherwise invalid.
func orderEndpoints(a, b SocketAddress) (from, to SocketAddress, ok bool) {
	if !a.Valid() || !b.Valid() {
		return SocketAddress{}, SocketAddress{}, false
	}
	switch {
	case a.IsOutput && !b.IsOutput:
		return a, b, true
	case b.IsOutput && !a.IsOutput:
		return b, a, true
	default:
		return SocketAddress{}, SocketAddress{}, false
	}
}

func (t *NodeTree) insertLinkSorted(l NodeLink) {
	i := sort.Search(len(t.links), func(i int) bool { return !t.links[i].less(l) })
	t.links = append(t.links, NodeLink{})
	copy(t.links[i+1:], t.links[i:])
	t.links[i] = l
}

func (t *NodeTree) removeLinkSorted(l NodeLink) {
	for i, cur := range t.links {
		if cur.equalEndpoints(l) {
			t.links = append(t.links[:i], t.links[i+1:]...)
			return
		}
	}
}

// UnlinkNodes removes the link between the two socket addresses, if any,
// re-tagging the target node. It returns false if no such link exists.
func (t *NodeTree) UnlinkNodes(a, b SocketAddress) bool {
	from, to, ok := orderEndpoints(a, b)
	if !ok {
		return false
	}
	target := NodeLink{FromNode: from.Node, FromSocket: from.Socket, ToNode: to.Node, ToSocket: to.Socket}
	for _, l := range t.links {
		if l.equalEndpoints(target) {
			t.removeLinkSorted(l)
			t.TagNode(to.Node)
			t.recomputeConnectivity(to.Node)
			t.dirty = true
			return true
		}
	}
	return false
}

// outLinks returns the half-open index range [begin, end) of links whose
// FromNode == from, exploiting the strict sort.
func (t *NodeTree) outLinks(from NodeID) (begin, end int) {
	begin = sort.Search(len(t.links), func(i int) bool { return t.links[i].FromNode >= from })
	end = begin
	for end < len(t.links) && t.links[end].FromNode == from {
		end++
	}
	return begin, end
}

// firstOutputLink returns the index, at or after start, of the first link
// from (from, socket), or len(links) if none.
func (t *NodeTree) firstOutputLink(from NodeID, socket SocketID, start int) int {
	begin, end := t.outLinks(from)
	if start > begin {
		begin = start
	}
	for i := begin; i < end; i++ {
		if t.links[i].FromSocket == socket {
			return i
		}
	}
	return len(t.links)
}

// reachable reports whether target is reachable from start by following
// forward (FromNode -> ToNode) links — an iterative DFS used to reject a
// speculative link insertion that would close a cycle. The same DFS shape
// used for topological sort underlies cycle detection at link time,
// starting from the new link's destination.
func (t *NodeTree) reachable(start, target NodeID) bool {
	if start == target {
		return true
	}
	visited := make(map[NodeID]bool)
	stack := []NodeID{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		begin, end := t.outLinks(cur)
		for i := begin; i < end; i++ {
			next := t.links[i].ToNode
			if next == target {
				return true
			}
			if !visited[next] {
				stack = append(stack, next)
			}
		}
	}
	return false
}

// ConnectedFrom returns the output socket address feeding the given input,
// if any, via a linear scan of the sorted link list.
func (t *NodeTree) ConnectedFrom(input SocketAddress) (SocketAddress, bool) {
	for _, l := range t.links {
		if l.ToNode == input.Node && l.ToSocket == input.Socket {
			return SocketAddress{Node: l.FromNode, Socket: l.FromSocket, IsOutput: true}, true
		}
	}
	return SocketAddress{}, false
}

// --- socket queries --------------------------------------------------

// IsInputSocketConnected reports whether some link targets (node, socket).
func (t *NodeTree) IsInputSocketConnected(node NodeID, socket SocketID) bool {
	_, ok := t.ConnectedFrom(SocketAddress{Node: node, Socket: socket})
	return ok
}

// IsOutputSocketConnected reports whether some link originates at (node,
// socket).
func (t *NodeTree) IsOutputSocketConnected(node NodeID, socket SocketID) bool {
	idx := t.firstOutputLink(node, socket, 0)
	return idx < len(t.links)
}

// AllRequiredInputsConnected reports whether every declared input socket of
// node has an incoming link.
func (t *NodeTree) AllRequiredInputsConnected(node NodeID) bool {
	n := t.nodeUnchecked(node)
	if n == nil {
		return false
	}
	for _, s := range n.cfg.Inputs() {
		if !t.IsInputSocketConnected(node, s.ID) {
			return false
		}
	}
	return true
}

func (t *NodeTree) recomputeConnectivity(node NodeID) {
	n := t.nodeUnchecked(node)
	if n == nil {
		return
	}
	if t.AllRequiredInputsConnected(node) {
		n.flags &^= NotFullyConnected
	} else {
		n.flags |= NotFullyConnected
	}
}

// OutputSocket returns the FlowData currently published on (node, socket).
// Out-of-range or dead nodes yield the process-wide empty FlowData rather
// than an error: queries that cannot raise return a default.
func (t *NodeTree) OutputSocket(node NodeID, socket SocketID) FlowData {
	n := t.nodeUnchecked(node)
	if n == nil {
		return emptyFlowData
	}
	return n.outputSlot(socket)
}

// InputSocket returns the FlowData visible on (node, socket): the upstream
// output it is linked from, or the process-wide empty value if the tree's
// required-input-connectivity bit says this node isn't fully wired.
func (t *NodeTree) InputSocket(node NodeID, socket SocketID) FlowData {
	if !t.AllRequiredInputsConnected(node) {
		return emptyFlowData
	}
	return t.inputSocketUnchecked(node, socket)
}

// inputSocketUnchecked resolves an input read without the
// all-required-inputs gate, used internally by SocketReader.Read (which
// must let a node see "nothing to read" on one input even when a sibling
// input is unconnected elsewhere — connectivity is evaluated per socket,
// not per node).
func (t *NodeTree) inputSocketUnchecked(node NodeID, socket SocketID) FlowData {
	addr, ok := t.ConnectedFrom(SocketAddress{Node: node, Socket: socket})
	if !ok {
		return emptyFlowData
	}
	return t.OutputSocket(addr.Node, addr.Socket)
}

// --- tags / enable / disable -------------------------------------------

// TagNode sets the Tagged bit on a live node.
func (t *NodeTree) TagNode(id NodeID) {
	if n := t.nodeUnchecked(id); n != nil {
		n.flags |= Tagged
	}
}

// UntagNode clears the Tagged bit on a live node.
func (t *NodeTree) UntagNode(id NodeID) {
	if n := t.nodeUnchecked(id); n != nil {
		n.flags &^= Tagged
	}
}

// SetNodeEnabled sets or clears the Disabled bit (inverted: enabled==true
// clears Disabled) and marks the execute-list dirty, since connectivity of
// executable nodes may change.
func (t *NodeTree) SetNodeEnabled(id NodeID, enabled bool) {
	n := t.nodeUnchecked(id)
	if n == nil {
		return
	}
	if enabled {
		n.flags &^= Disabled
	} else {
		n.flags |= Disabled
	}
	t.dirty = true
}

// IsNodeExecutable reports whether id names a live, enabled node with all
// required inputs connected.
func (t *NodeTree) IsNodeExecutable(id NodeID) bool {
	n := t.nodeUnchecked(id)
	if n == nil {
		return false
	}
	return !n.flags.Has(Disabled) && t.AllRequiredInputsConnected(id)
}

// IsTreeStateless reports whether no live node declares StateNode.
func (t *NodeTree) IsTreeStateless() bool {
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.live() && n.flags.Has(StateNode) {
			return false
		}
	}
	return true
}

// TaggedButNotExecuted reports whether id is tagged but absent from the
// current (cached) execute-list — the case where a node is tagged but its
// inputs are not yet connected.
func (t *NodeTree) TaggedButNotExecuted(id NodeID) bool {
	n := t.nodeUnchecked(id)
	if n == nil || !n.flags.Has(Tagged) {
		return false
	}
	for _, x := range t.executeList {
		if x == id {
			return false
		}
	}
	return true
}

// --- properties ------------------------------------------------------

// NodeSetProperty validates value against the property's validator (if
// any); on acceptance it stores the value, invokes the observer (if any),
// tags the node, and returns true. On rejection it leaves the node
// untagged and returns false.
func (t *NodeTree) NodeSetProperty(id NodeID, prop PropertyID, value PropertyValue) bool {
	n := t.nodeUnchecked(id)
	if n == nil || !prop.Valid() || int(prop) >= len(n.cfg.Properties()) {
		return false
	}
	pc := n.cfg.Properties()[prop]
	if pc.Validator != nil && !pc.Validator(value) {
		return false
	}
	n.props[prop] = value
	if pc.Observer != nil {
		pc.Observer(value)
	}
	t.TagNode(id)
	return true
}

// NodePropertyValue returns the current value of a property on a live
// node.
func (t *NodeTree) NodePropertyValue(id NodeID, prop PropertyID) (PropertyValue, bool) {
	n := t.nodeUnchecked(id)
	if n == nil || !prop.Valid() || int(prop) >= len(n.props) {
		return PropertyValue{}, false
	}
	return n.props[prop], true
}

// --- lifecycle ------------------------------------------------------

// NotifyFinish calls Finish on every live node's behavior, then re-tags
// every node whose config declares AutoTag.
func (t *NodeTree) NotifyFinish() {
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.live() {
			finish(n.nt)
		}
	}
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.live() && n.flags.Has(NodeAutoTag) {
			n.flags |= Tagged
		}
	}
}

// Clear drops all nodes, links, and cached state.
func (t *NodeTree) Clear() {
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.live() && n.cfg.ModuleName != "" {
			t.system.Modules.Release(n.cfg.ModuleName)
		}
	}
	t.nodes = nil
	t.freeList = nil
	t.links = nil
	t.names = make(map[string]NodeID)
	t.executeList = nil
	t.dirty = true
}

// NodeCount returns the number of live nodes.
func (t *NodeTree) NodeCount() int {
	n := 0
	for i := range t.nodes {
		if t.nodes[i].live() {
			n++
		}
	}
	return n
}

// Links returns a copy of the current sorted link list.
func (t *NodeTree) Links() []NodeLink {
	out := make([]NodeLink, len(t.links))
	copy(out, t.links)
	return out
}

// NodeIDs returns every live node id, ascending.
func (t *NodeTree) NodeIDs() []NodeID {
	var ids []NodeID
	for i := range t.nodes {
		if t.nodes[i].live() {
			ids = append(ids, NodeID(i))
		}
	}
	return ids
}
