package phylo

// Edge represents a branch between two nodes. Hybrid edges point into a
// hybrid node and carry an inheritance probability; tree edges are directed
// by the current root placement and record whether the root could be moved
// onto them.
//
// The two endpoints live in fixed slots and the direction is stored as a
// flag naming the child slot. Rearrangements must preserve slot positions
// (see [Edge.ReplaceNode]) so that undo restores the original byte layout.
type Edge struct {
	Number      int     // Unique identifier within the network
	Length      float64 // Branch length (negative means missing)
	Gamma       float64 // Inheritance probability (1 for tree edges)
	Major       bool    // True for tree edges and major hybrid parent edges
	Hybrid      bool    // True iff the child endpoint is a hybrid node
	ContainRoot bool    // True if the root may be relocated onto this edge

	nodes  [2]*Node
	child1 bool // nodes[0] is the child endpoint
}

// Child returns the child endpoint of the edge.
func (e *Edge) Child() *Node {
	if e.child1 {
		return e.nodes[0]
	}
	return e.nodes[1]
}

// Parent returns the parent endpoint of the edge.
func (e *Edge) Parent() *Node {
	if e.child1 {
		return e.nodes[1]
	}
	return e.nodes[0]
}

// Nodes returns the edge's two endpoints in slot order.
// Slot order is unrelated to direction; use Child and Parent for that.
func (e *Edge) Nodes() [2]*Node { return e.nodes }

// Other returns the endpoint opposite n. It panics if n is not an endpoint,
// which indicates corrupted adjacency bookkeeping.
func (e *Edge) Other(n *Node) *Node {
	switch n {
	case e.nodes[0]:
		return e.nodes[1]
	case e.nodes[1]:
		return e.nodes[0]
	}
	panic("phylo: node is not an endpoint of edge")
}

// HasNode reports whether n is an endpoint of e.
func (e *Edge) HasNode(n *Node) bool {
	return e.nodes[0] == n || e.nodes[1] == n
}

// SetChild orients the edge so that n is the child endpoint.
// Returns ErrUnknownNode if n is not an endpoint.
func (e *Edge) SetChild(n *Node) error {
	switch n {
	case e.nodes[0]:
		e.child1 = true
	case e.nodes[1]:
		e.child1 = false
	default:
		return ErrUnknownNode
	}
	return nil
}

// ReplaceNode swaps old for new in the endpoint slots, keeping the slot
// position and the direction flag. Returns ErrUnknownNode if old is not an
// endpoint of e.
func (e *Edge) ReplaceNode(old, new *Node) error {
	switch old {
	case e.nodes[0]:
		e.nodes[0] = new
	case e.nodes[1]:
		e.nodes[1] = new
	default:
		return ErrUnknownNode
	}
	return nil
}
