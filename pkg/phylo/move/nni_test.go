package move

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/phylonetworks/reticula/pkg/newick"
	"github.com/phylonetworks/reticula/pkg/phylo"
)

// Test networks, written so each exercises one case of the move table.
const (
	// Tree, no reticulations. Root has degree 2, so the root edges are not
	// pivots; the two inner edges offer the full 8 root-ambiguous moves.
	netTree = "((A:1,B:1):1,((C:1,D:1):1,(E:1,F:1):1):1);"

	// One reticulation. Edge 3 points into the hybrid from above (6 moves),
	// edge 4 leaves it (4 moves), edge 1 sits at the degree-3 root (8 moves).
	netOneHybrid = "((A:1,((B1:1,B2:1):1)#H1:1::0.6):1,(#H1:1::0.4,C:1):1,D:1);"

	// Like netOneHybrid but with a larger subtree under the hybrid, so edge 5
	// is a tree edge strictly below a reticulation (2 moves).
	netBelowHybrid = "((A:1,(((B1:1,B2:1):1,(B3:1,B4:1):1):1)#H1:1::0.6):1,(#H1:1::0.4,C:1):1,D:1);"

	// Nested reticulations. Edge 5 points into the inner hybrid from a node
	// below the outer one (3 moves).
	netNested = "((A:1,((((E1:1,E2:1):1)#H2:1::0.6,(#H2:1::0.4,F:1):1):1)#H1:1::0.7):1,(#H1:1::0.3,C:1):1,D:1);"

	// Stacked reticulations: edge 4 runs from one hybrid into another
	// (2 moves).
	netLadder = "((A:1,(((E1:1,E2:1):1)#H2:1::0.6)#H1:1::0.7):1,(#H1:1::0.3,(#H2:1::0.4,F:1):1):1,D:1);"
)

func parseFixture(t *testing.T, s string) *phylo.Network {
	t.Helper()
	g, err := newick.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q) = %v", s, err)
	}
	return g
}

func fixtureEdge(t *testing.T, g *phylo.Network, number int) *phylo.Edge {
	t.Helper()
	e, ok := g.Edge(number)
	if !ok {
		t.Fatalf("Edge(%d) not found", number)
	}
	return e
}

func TestCount_Table(t *testing.T) {
	tests := []struct {
		name    string
		fixture string
		edge    int
		want    int
	}{
		{"tree inner edge", netTree, 5, 8},
		{"tree other inner edge", netTree, 8, 8},
		{"tree edge at degree-2 root", netTree, 1, 0},
		{"leaf edge", netTree, 2, 0},
		{"into hybrid root-ambiguous", netOneHybrid, 3, 6},
		{"into hybrid from minor side", netOneHybrid, 8, 6},
		{"out of hybrid", netOneHybrid, 4, 4},
		{"tree edge at degree-3 root", netOneHybrid, 1, 8},
		{"tree edge below hybrid", netBelowHybrid, 5, 2},
		{"into hybrid below another", netNested, 5, 3},
		{"hybrid into hybrid", netLadder, 4, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := parseFixture(t, tt.fixture)
			e := fixtureEdge(t, g, tt.edge)
			if got := Count(e); got != tt.want {
				t.Errorf("Count(edge %d) = %d, want %d", tt.edge, got, tt.want)
			}
		})
	}
}

func TestApply_IndexOutOfRange(t *testing.T) {
	g := parseFixture(t, netTree)
	e := fixtureEdge(t, g, 5)
	for _, index := range []int{0, 9, -1} {
		if _, err := Apply(g, e, index, Options{}); !errors.Is(err, ErrNoMove) {
			t.Errorf("Apply(index %d) = %v, want ErrNoMove", index, err)
		}
	}
}

func TestApply_NotAPivot(t *testing.T) {
	g := parseFixture(t, netTree)
	e := fixtureEdge(t, g, 2)
	if _, err := Apply(g, e, 1, Options{}); !errors.Is(err, ErrNoMove) {
		t.Errorf("Apply(leaf edge) = %v, want ErrNoMove", err)
	}
}

// TestApply_UndoRoundTrip applies every candidate move on every pivot edge of
// every fixture, verifies the mutated network is still valid, undoes it, and
// checks the serialized form is byte-identical to the starting point. Some
// candidates are legitimately rejected; those must leave the network
// untouched too.
func TestApply_UndoRoundTrip(t *testing.T) {
	fixtures := []struct {
		name string
		s    string
	}{
		{"tree", netTree},
		{"one hybrid", netOneHybrid},
		{"below hybrid", netBelowHybrid},
		{"nested", netNested},
		{"ladder", netLadder},
	}
	optsets := []Options{
		{},
		{No3Cycle: true},
		{No3Cycle: true, NoHybridLadder: true},
	}
	for _, fx := range fixtures {
		t.Run(fx.name, func(t *testing.T) {
			for _, opts := range optsets {
				g := parseFixture(t, fx.s)
				before, err := newick.Write(g)
				if err != nil {
					t.Fatalf("Write() = %v", err)
				}
				for _, e := range g.Edges() {
					k := Count(e)
					for index := 1; index <= k; index++ {
						m, err := Apply(g, e, index, opts)
						if errors.Is(err, ErrNoMove) {
							if got, _ := newick.Write(g); got != before {
								t.Fatalf("rejected move %d on edge %d mutated the network: %q", index, e.Number, got)
							}
							continue
						}
						if err != nil {
							t.Fatalf("Apply(edge %d, move %d) = %v", e.Number, index, err)
						}
						if err := g.Validate(); err != nil {
							t.Fatalf("network invalid after move %d on edge %d: %v", index, e.Number, err)
						}
						if err := m.Undo(); err != nil {
							t.Fatalf("Undo(edge %d, move %d) = %v", e.Number, index, err)
						}
						after, err := newick.Write(g)
						if err != nil {
							t.Fatalf("Write() after undo = %v", err)
						}
						if after != before {
							t.Fatalf("undo of move %d on edge %d: got %q, want %q", index, e.Number, after, before)
						}
					}
				}
			}
		})
	}
}

// stateSignature captures the full oriented state of a network: the
// designated root plus every edge's endpoints, direction and inheritance
// bookkeeping. Two signatures are equal exactly when the networks are the
// same labeled graph.
func stateSignature(g *phylo.Network) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "root=%d", g.Root().Number)
	for _, e := range g.Edges() {
		fmt.Fprintf(&sb, " %d:%d->%d/%t/%g/%t",
			e.Number, e.Parent().Number, e.Child().Number, e.Hybrid, e.Gamma, e.Major)
	}
	return sb.String()
}

// TestApply_CandidatesAreDistinctStates applies every advertised move on a
// root-ambiguous pivot and checks each index yields its own oriented
// network: no two indices may collapse onto the same post-move state, and
// none may be structurally impossible. The root-relocated upper half has to
// differ from the base half by more than bookkeeping.
func TestApply_CandidatesAreDistinctStates(t *testing.T) {
	tests := []struct {
		name    string
		fixture string
		edge    int
		want    int
	}{
		{"tree edge with eight moves", netTree, 5, 8},
		{"hybrid edge with six moves", netOneHybrid, 3, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := parseFixture(t, tt.fixture)
			e := fixtureEdge(t, g, tt.edge)
			if k := Count(e); k != tt.want {
				t.Fatalf("Count(edge %d) = %d, want %d", tt.edge, k, tt.want)
			}
			start := stateSignature(g)
			seen := make(map[string]int, tt.want)
			for index := 1; index <= tt.want; index++ {
				m, err := Apply(g, e, index, Options{})
				if err != nil {
					t.Fatalf("Apply(edge %d, move %d) = %v", tt.edge, index, err)
				}
				sig := stateSignature(g)
				if sig == start {
					t.Errorf("move %d left the network in its starting state", index)
				}
				if prev, dup := seen[sig]; dup {
					t.Errorf("moves %d and %d produce identical networks", prev, index)
				}
				seen[sig] = index
				if err := m.Undo(); err != nil {
					t.Fatalf("Undo(move %d) = %v", index, err)
				}
				if got := stateSignature(g); got != start {
					t.Fatalf("undo of move %d did not restore the network", index)
				}
			}
		})
	}
}

// TestApply_RootRelocation pins the semantics of the upper index range on a
// root-ambiguous edge: the same subtree exchange as the corresponding base
// move, with the root carried across the focus edge and the parent chain
// reversed. Undo puts the root back.
func TestApply_RootRelocation(t *testing.T) {
	t.Run("tree edge", func(t *testing.T) {
		g := parseFixture(t, netTree)
		e := fixtureEdge(t, g, 5)
		u := e.Parent()
		oldRoot := g.Root()
		chain, ok := u.ParentEdge()
		if !ok {
			t.Fatal("focus parent has no parent edge")
		}

		// Move 7 keeps the focus parent's own parent edge in place; the
		// relocation must reverse it.
		m, err := Apply(g, e, 7, Options{})
		if err != nil {
			t.Fatalf("Apply(move 7) = %v", err)
		}
		if g.Root() != u {
			t.Errorf("root = node %d, want focus parent %d", g.Root().Number, u.Number)
		}
		if chain.Child() != oldRoot {
			t.Errorf("kept edge %d still points into node %d, want reversed", chain.Number, chain.Child().Number)
		}
		if err := g.Validate(); err != nil {
			t.Errorf("Validate() after relocation = %v", err)
		}
		if err := m.Undo(); err != nil {
			t.Fatalf("Undo() = %v", err)
		}
		if g.Root() != oldRoot || chain.Child() != u {
			t.Error("undo did not restore the root and the reversed chain")
		}
	})

	t.Run("hybrid edge", func(t *testing.T) {
		g := parseFixture(t, netOneHybrid)
		e := fixtureEdge(t, g, 3)
		u := e.Parent()
		oldRoot := g.Root()

		m, err := Apply(g, e, 6, Options{})
		if err != nil {
			t.Fatalf("Apply(move 6) = %v", err)
		}
		if g.Root() != u {
			t.Errorf("root = node %d, want focus parent %d", g.Root().Number, u.Number)
		}
		if err := g.Validate(); err != nil {
			t.Errorf("Validate() after relocation = %v", err)
		}
		if err := m.Undo(); err != nil {
			t.Fatalf("Undo() = %v", err)
		}
		if g.Root() != oldRoot {
			t.Errorf("root after undo = node %d, want %d", g.Root().Number, oldRoot.Number)
		}
	})
}

// TestApply_EachNetworkHasLegalMoves checks the move table is not vacuous:
// every fixture admits at least one applicable move under the default
// options. Individual pivots may have all candidates rejected, such as an
// edge whose endpoints already sit on a triangle.
func TestApply_EachNetworkHasLegalMoves(t *testing.T) {
	for _, s := range []string{netTree, netOneHybrid, netBelowHybrid, netNested, netLadder} {
		g := parseFixture(t, s)
		applied := 0
		for _, e := range g.Edges() {
			k := Count(e)
			for index := 1; index <= k; index++ {
				m, err := Apply(g, e, index, Options{})
				if err != nil {
					continue
				}
				applied++
				if err := m.Undo(); err != nil {
					t.Fatalf("Undo(edge %d, move %d) = %v", e.Number, index, err)
				}
			}
		}
		if applied == 0 {
			t.Errorf("fixture %q: every candidate on every pivot rejected", s)
		}
	}
}

// TestApply_FlipsEdgeBelowHybrid pins the directionality of the two moves
// available below a reticulation: both relocate a grandchild and reverse the
// pivot edge, so its former parent becomes its child.
func TestApply_FlipsEdgeBelowHybrid(t *testing.T) {
	for index := 1; index <= 2; index++ {
		g := parseFixture(t, netBelowHybrid)
		e := fixtureEdge(t, g, 5)
		oldParent := e.Parent()
		m, err := Apply(g, e, index, Options{})
		if err != nil {
			t.Fatalf("Apply(move %d) = %v", index, err)
		}
		if !m.Flipped() {
			t.Errorf("move %d: Flipped() = false, want true", index)
		}
		if e.Child() != oldParent {
			t.Errorf("move %d: Child() = %v, want former parent %v", index, e.Child().Number, oldParent.Number)
		}
	}
}

// TestApply_GammaTransfer checks the inheritance bookkeeping when a move
// swaps which edge feeds a hybrid node: the incoming edge inherits the
// departed edge's probability and major flag, and the demoted edge reverts
// to a plain tree edge.
func TestApply_GammaTransfer(t *testing.T) {
	g := parseFixture(t, netOneHybrid)
	focus := fixtureEdge(t, g, 4)
	major := fixtureEdge(t, g, 3)
	minor := fixtureEdge(t, g, 8)

	m, err := Apply(g, focus, 1, Options{})
	if err != nil {
		t.Fatalf("Apply() = %v", err)
	}
	if !focus.Hybrid || focus.Gamma != 0.6 || !focus.Major {
		t.Errorf("focus edge = hybrid %v gamma %v major %v, want hybrid 0.6 major",
			focus.Hybrid, focus.Gamma, focus.Major)
	}
	if major.Hybrid || major.Gamma != 1 || !major.Major {
		t.Errorf("demoted edge = hybrid %v gamma %v, want tree edge with gamma 1",
			major.Hybrid, major.Gamma)
	}
	if !minor.Hybrid || minor.Gamma != 0.4 || minor.Major {
		t.Errorf("untouched minor edge changed: hybrid %v gamma %v major %v",
			minor.Hybrid, minor.Gamma, minor.Major)
	}

	if err := m.Undo(); err != nil {
		t.Fatalf("Undo() = %v", err)
	}
	if !major.Hybrid || major.Gamma != 0.6 || !major.Major {
		t.Errorf("undo did not restore the major edge: hybrid %v gamma %v major %v",
			major.Hybrid, major.Gamma, major.Major)
	}
	if focus.Hybrid {
		t.Error("undo did not restore the focus edge to a tree edge")
	}
}

func TestApply_ThreeCycleGate(t *testing.T) {
	g := parseFixture(t, netOneHybrid)
	e := fixtureEdge(t, g, 1)

	if _, err := Apply(g, e, 1, Options{No3Cycle: true}); !errors.Is(err, ErrNoMove) {
		t.Fatalf("Apply(No3Cycle) = %v, want ErrNoMove", err)
	}

	m, err := Apply(g, e, 1, Options{})
	if err != nil {
		t.Fatalf("Apply() = %v", err)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() after move = %v", err)
	}
	if err := m.Undo(); err != nil {
		t.Fatalf("Undo() = %v", err)
	}
}

func TestApply_HybridLadderGate(t *testing.T) {
	g := parseFixture(t, netLadder)
	e := fixtureEdge(t, g, 4)

	if _, err := Apply(g, e, 1, Options{NoHybridLadder: true}); !errors.Is(err, ErrNoMove) {
		t.Fatalf("Apply(NoHybridLadder) = %v, want ErrNoMove", err)
	}

	m, err := Apply(g, e, 1, Options{})
	if err != nil {
		t.Fatalf("Apply() = %v", err)
	}
	if err := m.Undo(); err != nil {
		t.Fatalf("Undo() = %v", err)
	}
}

func TestApply_PreservesNodeKinds(t *testing.T) {
	g := parseFixture(t, netOneHybrid)
	e := fixtureEdge(t, g, 3)

	kinds := make(map[int]phylo.NodeKind)
	for _, n := range g.Nodes() {
		kinds[n.Number] = g.Kind(n)
	}
	m, err := Apply(g, e, 1, Options{})
	if errors.Is(err, ErrNoMove) {
		t.Skip("first candidate rejected on this pivot")
	}
	if err != nil {
		t.Fatalf("Apply() = %v", err)
	}
	defer m.Undo()
	for _, n := range g.Nodes() {
		want := kinds[n.Number]
		if want == phylo.NodeKindRoot || g.Kind(n) == phylo.NodeKindRoot {
			continue
		}
		if got := g.Kind(n); got != want {
			t.Errorf("node %d: Kind() = %v, want %v", n.Number, got, want)
		}
	}
}
