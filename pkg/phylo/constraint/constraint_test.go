package constraint

import (
	"errors"
	"testing"

	"github.com/phylonetworks/reticula/pkg/newick"
	"github.com/phylonetworks/reticula/pkg/phylo"
)

const (
	treeNet    = "((A:1,B:1):1,((C:1,D:1):1,(E:1,F:1):1):1);"
	hybridNet  = "((A:1,((B1:1,B2:1):1)#H1:1::0.6):1,(#H1:1::0.4,C:1):1,D:1);"
	speciesNet = "((S1:1,S2:1,S3:1):1,(A:1,B:1):1);"
)

func parseFixture(t *testing.T, s string) *phylo.Network {
	t.Helper()
	g, err := newick.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q) = %v", s, err)
	}
	return g
}

func TestNew_CladeStem(t *testing.T) {
	g := parseFixture(t, treeNet)
	tests := []struct {
		name     string
		taxa     []string
		wantEdge int
	}{
		{"cherry", []string{"C", "D"}, 5},
		{"four taxa", []string{"C", "D", "E", "F"}, 4},
		{"order independent", []string{"D", "C"}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(g, Clade, tt.taxa)
			if err != nil {
				t.Fatalf("New() = %v", err)
			}
			if c.EdgeNumber != tt.wantEdge {
				t.Errorf("EdgeNumber = %d, want %d", c.EdgeNumber, tt.wantEdge)
			}
			stem, ok := g.Edge(c.EdgeNumber)
			if !ok || stem.Child().Number != c.NodeNumber {
				t.Errorf("NodeNumber = %d does not match stem child", c.NodeNumber)
			}
		})
	}
}

func TestNew_SpeciesPolytomy(t *testing.T) {
	g := parseFixture(t, speciesNet)
	c, err := New(g, Species, []string{"S1", "S2", "S3"})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if c.EdgeNumber != 1 {
		t.Errorf("EdgeNumber = %d, want 1", c.EdgeNumber)
	}
	if got := c.Type.String(); got != "species" {
		t.Errorf("Type.String() = %q, want %q", got, "species")
	}
}

func TestNew_Errors(t *testing.T) {
	tree := parseFixture(t, treeNet)
	hybrid := parseFixture(t, hybridNet)
	tests := []struct {
		name string
		g    *phylo.Network
		typ  Type
		taxa []string
		want error
	}{
		{"one taxon", tree, Clade, []string{"A"}, ErrTooFewTaxa},
		{"no taxa", tree, Species, nil, ErrTooFewTaxa},
		{"unknown taxon", tree, Clade, []string{"A", "Z"}, ErrUnknownTaxon},
		{"repeated taxon", tree, Clade, []string{"A", "A"}, ErrUnknownTaxon},
		{"not monophyletic", tree, Clade, []string{"A", "C"}, ErrNoStemEdge},
		{"hybrid crown is ambiguous", hybrid, Clade, []string{"B1", "B2"}, ErrNoStemEdge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.g, tt.typ, tt.taxa); !errors.Is(err, tt.want) {
				t.Errorf("New() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestViolated(t *testing.T) {
	g := parseFixture(t, treeNet)
	c, err := New(g, Clade, []string{"C", "D"})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if c.Violated(g) {
		t.Error("Violated() = true on the network the constraint came from")
	}

	stem, _ := g.Edge(c.EdgeNumber)
	stem.SetChild(stem.Parent())
	if !c.Violated(g) {
		t.Error("Violated() = false after the stem edge was redirected")
	}
	if !AnyViolated(g, []*TopologyConstraint{c}) {
		t.Error("AnyViolated() = false, want true")
	}
}

func TestCheckStems(t *testing.T) {
	g := parseFixture(t, treeNet)
	c, err := New(g, Clade, []string{"E", "F"})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	cs := []*TopologyConstraint{c}
	if err := CheckStems(g, cs); err != nil {
		t.Errorf("CheckStems() = %v, want nil", err)
	}

	stem, _ := g.Edge(c.EdgeNumber)
	stem.SetChild(stem.Parent())
	if err := CheckStems(g, cs); !errors.Is(err, ErrStaleConstraint) {
		t.Errorf("CheckStems() = %v, want ErrStaleConstraint", err)
	}
}
