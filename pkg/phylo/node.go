package phylo

// NodeKind classifies a node by its role in the network.
type NodeKind int

const (
	// NodeKindTree represents an internal tree node: one parent, two children.
	NodeKindTree NodeKind = iota
	// NodeKindLeaf represents a taxon: one parent, no children, a non-empty Name.
	NodeKindLeaf
	// NodeKindHybrid represents a reticulation: two parents, one child.
	NodeKindHybrid
	// NodeKindRoot represents the current root: no parents.
	NodeKindRoot
)

// Node represents a vertex in a phylogenetic network. Leaves carry taxon
// names; internal nodes are identified by Number alone. Numbers must be
// unique across the network (leaves conventionally positive, internal nodes
// negative, but any unique assignment works).
//
// The zero value is not usable as part of a network - add nodes through
// [Network.AddNode] so incident-edge bookkeeping stays consistent.
type Node struct {
	Number int    // Unique identifier within the network
	Name   string // Taxon label (non-empty for leaves)
	Leaf   bool   // True for taxa
	Hybrid bool   // True for reticulation nodes (two parents)

	edges []*Edge // incident edges; slot order is significant for undo
}

// Edges returns the node's incident edges in slot order.
// The returned slice is a read-only view into the node; do not modify it.
func (n *Node) Edges() []*Edge { return n.edges }

// Degree returns the number of incident edges.
func (n *Node) Degree() int { return len(n.edges) }

// ParentEdges returns the incident edges for which n is the child.
// A tree node has at most one, a hybrid node has two.
func (n *Node) ParentEdges() []*Edge {
	var parents []*Edge
	for _, e := range n.edges {
		if e.Child() == n {
			parents = append(parents, e)
		}
	}
	return parents
}

// ChildEdges returns the incident edges for which n is the parent.
func (n *Node) ChildEdges() []*Edge {
	var children []*Edge
	for _, e := range n.edges {
		if e.Child() != n {
			children = append(children, e)
		}
	}
	return children
}

// ParentEdge returns the single parent edge of a non-hybrid node and true,
// or nil and false if the node has no parent (it is the root) or is hybrid.
func (n *Node) ParentEdge() (*Edge, bool) {
	if n.Hybrid {
		return nil, false
	}
	for _, e := range n.edges {
		if e.Child() == n {
			return e, true
		}
	}
	return nil, false
}

// MajorParentEdge returns the parent edge with Major set and true, or nil
// and false if the node has no major parent edge.
func (n *Node) MajorParentEdge() (*Edge, bool) {
	for _, e := range n.edges {
		if e.Child() == n && e.Major {
			return e, true
		}
	}
	return nil, false
}

// MinorParentEdge returns the hybrid parent edge with Major unset and true,
// or nil and false if the node has no minor parent edge. Only hybrid nodes
// have one.
func (n *Node) MinorParentEdge() (*Edge, bool) {
	for _, e := range n.edges {
		if e.Child() == n && !e.Major {
			return e, true
		}
	}
	return nil, false
}

// HasEdge reports whether e is incident to n.
func (n *Node) HasEdge(e *Edge) bool {
	for _, in := range n.edges {
		if in == e {
			return true
		}
	}
	return false
}

// ReplaceEdge swaps old for new in the node's incident-edge list, keeping
// the slot position. Returns ErrUnknownEdge if old is not incident to n.
func (n *Node) ReplaceEdge(old, new *Edge) error {
	for i, e := range n.edges {
		if e == old {
			n.edges[i] = new
			return nil
		}
	}
	return ErrUnknownEdge
}

func (n *Node) attachEdge(e *Edge) { n.edges = append(n.edges, e) }
