package graph

// NodeLink is an immutable (once inserted) directed edge from an output
// socket to an input socket.
type NodeLink struct {
	FromNode NodeID
	FromSocket SocketID
	ToNode NodeID
	ToSocket SocketID
}

// less implements the strict total order links are kept sorted under:
// lexicographic on (FromNode, FromSocket, ToNode, ToSocket).
func (l NodeLink) less(o NodeLink) bool {
	if l.FromNode != o.FromNode {
		return l.FromNode < o.FromNode
	}
	if l.FromSocket != o.FromSocket {
		return l.FromSocket < o.FromSocket
	}
	if l.ToNode != o.ToNode {
		return l.ToNode < o.ToNode
	}
	return l.ToSocket < o.ToSocket
}

func (l NodeLink) equalEndpoints(o NodeLink) bool {
	return l.FromNode == o.FromNode && l.FromSocket == o.FromSocket &&
		l.ToNode == o.ToNode && l.ToSocket == o.ToSocket
}
