package phylo

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrDuplicateNodeNumber is returned by [Network.AddNode] when a node
	// with the same Number already exists. Numbers must be unique.
	ErrDuplicateNodeNumber = errors.New("duplicate node number")

	// ErrDuplicateEdgeNumber is returned by [Network.AddEdge] when an edge
	// with the same Number already exists. Numbers must be unique.
	ErrDuplicateEdgeNumber = errors.New("duplicate edge number")

	// ErrUnknownNode is returned when an operation references a node that is
	// not part of the network, or not an endpoint of the edge at hand.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownEdge is returned when an operation references an edge that is
	// not part of the network, or not incident to the node at hand.
	ErrUnknownEdge = errors.New("unknown edge")

	// ErrNoRoot is returned by [Network.Preorder] and [Network.Validate]
	// when no root has been designated with SetRoot.
	ErrNoRoot = errors.New("network has no root")

	// ErrRootHasParent is returned by [Network.Validate] when the designated
	// root has an incoming edge. The root must have in-degree zero.
	ErrRootHasParent = errors.New("root has a parent edge")

	// ErrGraphHasCycle is returned by [Network.Validate] when the directed
	// graph of child edges contains a cycle. Cycles are detected using
	// depth-first search with white/gray/black coloring.
	ErrGraphHasCycle = errors.New("network contains a directed cycle")

	// ErrUnreachableNode is returned by [Network.Validate] when a node
	// cannot be reached from the root by following child edges.
	ErrUnreachableNode = errors.New("node unreachable from root")

	// ErrHybridParentCount is returned by [Network.Validate] when a hybrid
	// node does not have exactly two parent edges, or a non-root tree node
	// does not have exactly one.
	ErrHybridParentCount = errors.New("wrong number of parent edges")

	// ErrHybridChildCount is returned by [Network.Validate] when a hybrid
	// node has more than one child edge.
	ErrHybridChildCount = errors.New("hybrid node with more than one child edge")

	// ErrNotRootable is returned by [Network.RerootAt] when the target node
	// cannot carry the root: it is a leaf or hybrid node, it is the root
	// already, or the walk from it to the current root crosses a hybrid.
	ErrNotRootable = errors.New("node cannot carry the root")

	// ErrHybridEdgeMismatch is returned by [Network.Validate] when an edge's
	// Hybrid flag disagrees with its child endpoint (an edge is hybrid
	// exactly when its child is a hybrid node).
	ErrHybridEdgeMismatch = errors.New("edge hybrid flag disagrees with child node")

	// ErrGammaSum is returned by [Network.Validate] when a hybrid node's two
	// parent-edge inheritance probabilities do not sum to 1.
	ErrGammaSum = errors.New("inheritance probabilities do not sum to 1")

	// ErrNoMajorParent is returned by [Network.Validate] when a hybrid node
	// does not have exactly one parent edge flagged Major.
	ErrNoMajorParent = errors.New("hybrid node needs exactly one major parent edge")

	// ErrContainRootMismatch is returned by [Network.Validate] when an
	// edge's ContainRoot flag is set even though the edge lies strictly
	// below a hybrid node, a region the root can never occupy.
	ErrContainRootMismatch = errors.New("containRoot set on an inadmissible edge")

	// ErrParallelEdges is returned by [Network.Validate] when two edges
	// share both endpoints (a 2-cycle in the undirected sense).
	ErrParallelEdges = errors.New("parallel edges between the same node pair")

	// ErrDegreeTwoNode is returned by [Network.CheckNetwork] when an
	// internal node has degree two. Such nodes carry no topology and break
	// the rearrangement operators' degree assumptions.
	ErrDegreeTwoNode = errors.New("internal node of degree two")
)

// gammaTol bounds the accepted deviation of a hybrid node's gamma sum from 1.
const gammaTol = 1e-9

// Network is a semidirected phylogenetic network: a rooted DAG whose hybrid
// nodes have two parent edges with inheritance probabilities, and whose tree
// edges record where the root could be relocated.
//
// Node and edge order is insertion order and is preserved by rearrangement
// operations, so serializations are reproducible. The zero value is not
// usable - use New.
//
// Network is not safe for concurrent use without external synchronization.
type Network struct {
	nodes []*Node
	edges []*Edge
	root  *Node

	nodeByNumber map[int]*Node
	edgeByNumber map[int]*Edge

	preorder []*Node // cached topological order, nil when stale
}

// New creates an empty network.
func New() *Network {
	return &Network{
		nodeByNumber: make(map[int]*Node),
		edgeByNumber: make(map[int]*Edge),
	}
}

// AddNode adds a node to the network.
// Returns ErrDuplicateNodeNumber if a node with the same Number exists.
func (g *Network) AddNode(n *Node) error {
	if _, exists := g.nodeByNumber[n.Number]; exists {
		return ErrDuplicateNodeNumber
	}
	g.nodes = append(g.nodes, n)
	g.nodeByNumber[n.Number] = n
	g.Invalidate()
	return nil
}

// AddEdge adds e to the network directed parent→child, wiring both
// endpoint slots and the incident-edge lists. Gamma defaults to 1 and Major
// to true when Gamma is unset; the Hybrid flag is derived from the child.
//
// Returns ErrDuplicateEdgeNumber if an edge with the same Number exists, or
// ErrUnknownNode if either endpoint has not been added to the network.
func (g *Network) AddEdge(e *Edge, parent, child *Node) error {
	if _, exists := g.edgeByNumber[e.Number]; exists {
		return ErrDuplicateEdgeNumber
	}
	if _, ok := g.nodeByNumber[parent.Number]; !ok || g.nodeByNumber[parent.Number] != parent {
		return ErrUnknownNode
	}
	if _, ok := g.nodeByNumber[child.Number]; !ok || g.nodeByNumber[child.Number] != child {
		return ErrUnknownNode
	}
	e.nodes[0] = child
	e.nodes[1] = parent
	e.child1 = true
	e.Hybrid = child.Hybrid
	if e.Gamma == 0 && !e.Hybrid {
		e.Gamma = 1
		e.Major = true
	}
	parent.attachEdge(e)
	child.attachEdge(e)
	g.edges = append(g.edges, e)
	g.edgeByNumber[e.Number] = e
	g.Invalidate()
	return nil
}

// SetRoot designates n as the root. Returns ErrUnknownNode if n is not part
// of the network. The root's in-degree is checked by Validate, not here.
func (g *Network) SetRoot(n *Node) error {
	if g.nodeByNumber[n.Number] != n {
		return ErrUnknownNode
	}
	g.root = n
	g.Invalidate()
	return nil
}

// Root returns the designated root, or nil if none has been set.
func (g *Network) Root() *Node { return g.root }

// RerootAt designates n as the root by reversing the directed path from the
// current root down to n. Only tree edges can be reversed, so the parent
// chain from n must not cross a hybrid node; leaves and hybrid nodes cannot
// carry the root. Returns the reversed edges in n-to-old-root order.
// Reversing them again and restoring the old root inverts the call exactly.
func (g *Network) RerootAt(n *Node) ([]*Edge, error) {
	if g.nodeByNumber[n.Number] != n {
		return nil, ErrUnknownNode
	}
	if n == g.root || n.Leaf || n.Hybrid {
		return nil, fmt.Errorf("node %d: %w", n.Number, ErrNotRootable)
	}
	var path []*Edge
	for w := n; w != g.root; {
		pe, ok := w.ParentEdge()
		if !ok || len(path) == len(g.edges) {
			return nil, fmt.Errorf("node %d: %w", w.Number, ErrNotRootable)
		}
		path = append(path, pe)
		w = pe.Parent()
	}
	for _, e := range path {
		e.SetChild(e.Parent())
	}
	g.root = n
	g.RefreshContainRoot()
	g.Invalidate()
	return path, nil
}

// Node returns the node with the given number and true, or nil and false.
func (g *Network) Node(number int) (*Node, bool) {
	n, ok := g.nodeByNumber[number]
	return n, ok
}

// Edge returns the edge with the given number and true, or nil and false.
func (g *Network) Edge(number int) (*Edge, bool) {
	e, ok := g.edgeByNumber[number]
	return e, ok
}

// Nodes returns all nodes in insertion order.
// The returned slice is a copy but the pointers are live.
func (g *Network) Nodes() []*Node { return slices.Clone(g.nodes) }

// Edges returns all edges in insertion order.
// The returned slice is a copy but the pointers are live.
func (g *Network) Edges() []*Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the network.
func (g *Network) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the network.
func (g *Network) EdgeCount() int { return len(g.edges) }

// Leaves returns all leaf nodes in insertion order.
func (g *Network) Leaves() []*Node {
	var leaves []*Node
	for _, n := range g.nodes {
		if n.Leaf {
			leaves = append(leaves, n)
		}
	}
	return leaves
}

// Hybrids returns all hybrid nodes in insertion order.
func (g *Network) Hybrids() []*Node {
	var hybrids []*Node
	for _, n := range g.nodes {
		if n.Hybrid {
			hybrids = append(hybrids, n)
		}
	}
	return hybrids
}

// Kind classifies n relative to this network's current root.
func (g *Network) Kind(n *Node) NodeKind {
	switch {
	case n.Hybrid:
		return NodeKindHybrid
	case n.Leaf:
		return NodeKindLeaf
	case n == g.root:
		return NodeKindRoot
	default:
		return NodeKindTree
	}
}

// Invalidate drops the cached traversal order. Any operation that changes
// edge directions or adjacency must call it; AddNode, AddEdge, SetRoot and
// the move operators do so themselves.
func (g *Network) Invalidate() { g.preorder = nil }

// Preorder returns the nodes in a topological order: every node appears
// after all of its parents, starting at the root. The order is computed on
// first use and cached until Invalidate is called.
//
// Returns ErrNoRoot if no root is set, ErrGraphHasCycle if the child edges
// contain a directed cycle, or ErrUnreachableNode if some node cannot be
// reached from the root.
func (g *Network) Preorder() ([]*Node, error) {
	if g.preorder != nil {
		return g.preorder, nil
	}
	if g.root == nil {
		return nil, ErrNoRoot
	}

	indeg := make(map[*Node]int, len(g.nodes))
	for _, e := range g.edges {
		indeg[e.Child()]++
	}

	order := make([]*Node, 0, len(g.nodes))
	queue := []*Node{g.root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		for _, e := range n.ChildEdges() {
			c := e.Child()
			indeg[c]--
			if indeg[c] == 0 {
				queue = append(queue, c)
			}
		}
	}
	if len(order) != len(g.nodes) {
		if err := g.detectCycles(); err != nil {
			return nil, err
		}
		return nil, ErrUnreachableNode
	}
	g.preorder = order
	return order, nil
}
