package graph

// NodeFlag is a bit in a live Node instance's mutable flag set.
// StateNode, NodeAutoTag, and NodeOverridesTimeComp are populated from the
// owning NodeConfig's flags at construction and never change thereafter;
// the rest are mutated over the node's lifetime.
type NodeFlag uint16

const (
	// Tagged marks a node that must (re-)execute on the next run.
	Tagged NodeFlag = 1 << iota
	// StateNode mirrors the type's HasState config flag.
	StateNode
	// NodeAutoTag mirrors the type's AutoTag config flag.
	NodeAutoTag
	// NotFullyConnected marks a node missing one or more required inputs.
	// Recomputed by the tree on link/unlink.
	NotFullyConnected
	// NodeOverridesTimeComp mirrors the type's OverridesTimeComputation
	// config flag.
	NodeOverridesTimeComp
	// Disabled marks a user-disabled node: never executable regardless of
	// connectivity.
	Disabled
)

// Has reports whether flag bit is set.
func (f NodeFlag) Has(bit NodeFlag) bool { return f&bit != 0 }

// Node is one instance in a NodeTree : it owns a NodeType
// behavior object, its current output FlowData slots (one per output
// socket, declared by its NodeConfig), its name, mutable flags, and the
// last execution's timing and message.
type Node struct {
	typeID NodeTypeID
	name string
	nt NodeType
	cfg *NodeConfig
	outputs []FlowData
	props []PropertyValue
	flags NodeFlag

	lastExecMS float64
	lastMsg string
}

// live reports whether this slot holds a real node rather than the
// sentinel value left in recycled/never-allocated slots.
func (n *Node) live() bool { return n.nt != nil }

// TypeID returns the node's registered type id.
func (n *Node) TypeID() NodeTypeID { return n.typeID }

// Name returns the node's unique-within-tree name.
func (n *Node) Name() string { return n.name }

// Config returns the node type's immutable configuration.
func (n *Node) Config() *NodeConfig { return n.cfg }

// Flags returns the node's current mutable flag set.
func (n *Node) Flags() NodeFlag { return n.flags }

// LastExecMS returns the duration, in milliseconds, of this node's most
// recent execution.
func (n *Node) LastExecMS() float64 { return n.lastExecMS }

// LastMessage returns the message attached to this node's most recent
// execution status.
func (n *Node) LastMessage() string { return n.lastMsg }

// outputSlot returns the current FlowData published on output socket id,
// or the process-wide empty FlowData when id is out of range.
func (n *Node) outputSlot(id SocketID) FlowData {
	if int(id) >= len(n.outputs) {
		return emptyFlowData
	}
	return n.outputs[id]
}

func newSentinelNode() Node {
	return Node{typeID: InvalidNodeTypeID}
}
