package move

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/phylonetworks/reticula/pkg/newick"
	"github.com/phylonetworks/reticula/pkg/phylo/constraint"
)

func TestApplyRandom_AppliesALegalMove(t *testing.T) {
	g := parseFixture(t, netOneHybrid)
	before, err := newick.Write(g)
	if err != nil {
		t.Fatalf("Write() = %v", err)
	}
	e := fixtureEdge(t, g, 3)
	rng := rand.New(rand.NewPCG(1, 2))

	m, err := ApplyRandom(g, e, rng, Options{}, nil)
	if err != nil {
		t.Fatalf("ApplyRandom() = %v", err)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() after move = %v", err)
	}
	if err := m.Undo(); err != nil {
		t.Fatalf("Undo() = %v", err)
	}
	if after, _ := newick.Write(g); after != before {
		t.Errorf("undo: got %q, want %q", after, before)
	}
}

func TestApplyRandom_RefusesStemEdge(t *testing.T) {
	g := parseFixture(t, netTree)
	c, err := constraint.New(g, constraint.Clade, []string{"C", "D"})
	if err != nil {
		t.Fatalf("constraint.New() = %v", err)
	}
	stem := fixtureEdge(t, g, c.EdgeNumber)
	rng := rand.New(rand.NewPCG(3, 4))

	_, err = ApplyRandom(g, stem, rng, Options{}, []*constraint.TopologyConstraint{c})
	if !errors.Is(err, ErrNoMove) {
		t.Errorf("ApplyRandom(stem edge) = %v, want ErrNoMove", err)
	}
}

func TestApplyRandom_KeepsConstraintIntact(t *testing.T) {
	g := parseFixture(t, netTree)
	c, err := constraint.New(g, constraint.Clade, []string{"C", "D"})
	if err != nil {
		t.Fatalf("constraint.New() = %v", err)
	}
	cs := []*constraint.TopologyConstraint{c}
	e := fixtureEdge(t, g, 8)
	rng := rand.New(rand.NewPCG(5, 6))

	m, err := ApplyRandom(g, e, rng, Options{No3Cycle: true}, cs)
	if err != nil {
		t.Fatalf("ApplyRandom() = %v", err)
	}
	if constraint.AnyViolated(g, cs) {
		t.Error("AnyViolated() = true after accepted move")
	}
	if err := m.Undo(); err != nil {
		t.Fatalf("Undo() = %v", err)
	}
}

func TestApplyRandom_NotAPivot(t *testing.T) {
	g := parseFixture(t, netTree)
	e := fixtureEdge(t, g, 2)
	rng := rand.New(rand.NewPCG(7, 8))

	if _, err := ApplyRandom(g, e, rng, Options{}, nil); !errors.Is(err, ErrNoMove) {
		t.Errorf("ApplyRandom(leaf edge) = %v, want ErrNoMove", err)
	}
}
