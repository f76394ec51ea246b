package phylo

// IsDescendant reports whether x is reachable from y by following child
// edges (x == y counts). Rearrangement legality checks use it to refuse
// edges that would close a directed cycle.
func IsDescendant(x, y *Node) bool {
	if x == y {
		return true
	}
	seen := map[*Node]bool{y: true}
	stack := []*Node{y}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range n.ChildEdges() {
			c := e.Child()
			if c == x {
				return true
			}
			if !seen[c] {
				seen[c] = true
				stack = append(stack, c)
			}
		}
	}
	return false
}

// IsConnected reports whether a and b share an edge, in either direction.
func IsConnected(a, b *Node) bool {
	if a == b {
		return true
	}
	for _, e := range a.Edges() {
		if e.Other(a) == b {
			return true
		}
	}
	return false
}

// Problem4Cycle reports whether a rearrangement that pairs b with d and a
// with c across a focus edge would shrink an existing 4-cycle into a
// 3-cycle: true when either pair is already adjacent.
func Problem4Cycle(b, d, a, c *Node) bool {
	return IsConnected(b, d) || IsConnected(a, c)
}

// HasTriangle reports whether the network contains an undirected 3-cycle.
// Searches that forbid 3-cycles reject starting networks containing one.
func (g *Network) HasTriangle() bool {
	for _, e := range g.edges {
		a, b := e.nodes[0], e.nodes[1]
		for _, ea := range a.edges {
			if ea == e {
				continue
			}
			if IsConnected(ea.Other(a), b) {
				return true
			}
		}
	}
	return false
}

// RefreshContainRoot recomputes every edge's ContainRoot flag from the
// current topology: false on every edge strictly below a hybrid node (its
// parent endpoint is a hybrid node or a descendant of one), true elsewhere.
// Direction changes and hybrid transfers must be followed by a call to
// this method.
func (g *Network) RefreshContainRoot() {
	below := make(map[*Node]bool)
	var mark func(n *Node)
	mark = func(n *Node) {
		if below[n] {
			return
		}
		below[n] = true
		for _, e := range n.ChildEdges() {
			mark(e.Child())
		}
	}
	for _, n := range g.nodes {
		if n.Hybrid {
			mark(n)
		}
	}
	for _, e := range g.edges {
		e.ContainRoot = !below[e.Parent()]
	}
}
