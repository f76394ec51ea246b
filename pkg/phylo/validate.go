package phylo

import (
	"fmt"
	"math"
)

// Validate checks the structural invariants of the network and returns nil
// if all hold:
//
//  1. A root is designated and has no parent edge.
//  2. Every edge's endpoints belong to the network.
//  3. Child edges form a DAG and every node is reachable from the root.
//  4. Hybrid nodes have exactly two parent edges, other non-root nodes one.
//  5. An edge is flagged Hybrid exactly when its child is a hybrid node.
//  6. Each hybrid node's parent gammas sum to 1, with exactly one Major.
//  7. ContainRoot is unset on hybrid edges and edges below hybrid nodes.
//  8. No two edges connect the same node pair.
//
// Each failure wraps the matching sentinel error with the offending node or
// edge number. Use this before running rearrangements or serializing.
func (g *Network) Validate() error {
	if g.root == nil {
		return ErrNoRoot
	}
	if len(g.root.ParentEdges()) > 0 {
		return fmt.Errorf("node %d: %w", g.root.Number, ErrRootHasParent)
	}
	for _, e := range g.edges {
		for _, n := range e.nodes {
			if n == nil || g.nodeByNumber[n.Number] != n {
				return fmt.Errorf("edge %d: %w", e.Number, ErrUnknownNode)
			}
		}
	}
	if err := g.detectCycles(); err != nil {
		return err
	}
	if err := g.checkReachability(); err != nil {
		return err
	}
	if err := g.checkHybrids(); err != nil {
		return err
	}
	if err := g.checkContainRoot(); err != nil {
		return err
	}
	return g.checkParallelEdges()
}

func (g *Network) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[*Node]int, len(g.nodes))
	var hasCycle bool

	var dfs func(n *Node)
	dfs = func(n *Node) {
		color[n] = gray
		for _, e := range n.ChildEdges() {
			switch color[e.Child()] {
			case white:
				dfs(e.Child())
			case gray:
				hasCycle = true
				return
			}
		}
		color[n] = black
	}

	for _, n := range g.nodes {
		if color[n] == white {
			dfs(n)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

func (g *Network) checkReachability() error {
	_, err := g.Preorder()
	return err
}

func (g *Network) checkHybrids() error {
	for _, n := range g.nodes {
		parents := n.ParentEdges()
		switch {
		case n.Hybrid:
			if len(parents) != 2 {
				return fmt.Errorf("hybrid node %d has %d parent edges: %w", n.Number, len(parents), ErrHybridParentCount)
			}
			if nc := n.Degree() - 2; nc > 1 {
				return fmt.Errorf("hybrid node %d has %d child edges: %w", n.Number, nc, ErrHybridChildCount)
			}
			sum := parents[0].Gamma + parents[1].Gamma
			if math.Abs(sum-1) > gammaTol {
				return fmt.Errorf("hybrid node %d gamma sum %g: %w", n.Number, sum, ErrGammaSum)
			}
			majors := 0
			for _, e := range parents {
				if e.Major {
					majors++
				}
			}
			if majors != 1 {
				return fmt.Errorf("hybrid node %d has %d major parent edges: %w", n.Number, majors, ErrNoMajorParent)
			}
		case n == g.root:
			if len(parents) != 0 {
				return fmt.Errorf("node %d: %w", n.Number, ErrRootHasParent)
			}
		default:
			if len(parents) != 1 {
				return fmt.Errorf("node %d has %d parent edges: %w", n.Number, len(parents), ErrHybridParentCount)
			}
		}
	}
	for _, e := range g.edges {
		if e.Hybrid != e.Child().Hybrid {
			return fmt.Errorf("edge %d: %w", e.Number, ErrHybridEdgeMismatch)
		}
	}
	return nil
}

func (g *Network) checkContainRoot() error {
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
		if e.ContainRoot && below[e.Parent()] {
			return fmt.Errorf("edge %d: %w", e.Number, ErrContainRootMismatch)
		}
	}
	return nil
}

func (g *Network) checkParallelEdges() error {
	type pair struct{ a, b int }
	seen := make(map[pair]bool, len(g.edges))
	for _, e := range g.edges {
		a, b := e.nodes[0].Number, e.nodes[1].Number
		if a > b {
			a, b = b, a
		}
		if seen[pair{a, b}] {
			return fmt.Errorf("edge %d: %w", e.Number, ErrParallelEdges)
		}
		seen[pair{a, b}] = true
	}
	return nil
}

// CheckNetwork verifies that the network is ready for a rearrangement
// search: all Validate invariants hold and no internal node has degree two.
// Degree-2 nodes carry no topology and would make every incident edge an
// invalid rearrangement focus.
func (g *Network) CheckNetwork() error {
	if err := g.Validate(); err != nil {
		return err
	}
	for _, n := range g.nodes {
		if !n.Leaf && n != g.root && n.Degree() == 2 {
			return fmt.Errorf("node %d: %w", n.Number, ErrDegreeTwoNode)
		}
	}
	return nil
}
