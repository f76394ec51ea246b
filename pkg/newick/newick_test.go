package newick

import (
	"errors"
	"strings"
	"testing"
)

func TestParse_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"simple tree", "((A:1,B:1):2,C:3);"},
		{"no lengths", "((A,B),C);"},
		{"nested tree", "((A:1,B:1):1,((C:1,D:1):1,(E:1,F:1):1):1);"},
		{"one hybrid", "((A:1,(B:1)#H1:1::0.7):1,(#H1:1::0.3,C:1):1,D:1);"},
		{"hybrid no length", "((A,(B)#H1:::0.7),(#H1:::0.3,C));"},
		{"two hybrids", "((A:1,((((E1:1,E2:1):1)#H2:1::0.6,(#H2:1::0.4,F:1):1):1)#H1:1::0.7):1,(#H1:1::0.3,C:1):1,D:1);"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse() = %v", err)
			}
			out, err := Write(g)
			if err != nil {
				t.Fatalf("Write() = %v", err)
			}
			if out != tt.input {
				t.Errorf("Write() = %q, want %q", out, tt.input)
			}
		})
	}
}

func TestParse_LeafNumbering(t *testing.T) {
	g, err := Parse("((A,B),C);")
	if err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	for i, name := range []string{"A", "B", "C"} {
		n, ok := g.Node(i + 1)
		if !ok || n.Name != name {
			t.Errorf("Node(%d) = %v, want leaf %q", i+1, n, name)
		}
	}
	if g.Root() == nil || g.Root().Number != -2 {
		t.Errorf("Root().Number = %v, want -2", g.Root())
	}
}

func TestParse_HybridGamma(t *testing.T) {
	g, err := Parse("((A:1,(B:1)#H1:1::0.7):1,(#H1:1::0.3,C:1):1,D:1);")
	if err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	hybrids := g.Hybrids()
	if len(hybrids) != 1 {
		t.Fatalf("Hybrids() len = %d, want 1", len(hybrids))
	}
	h := hybrids[0]
	major, ok := h.MajorParentEdge()
	if !ok || major.Gamma != 0.7 {
		t.Errorf("MajorParentEdge().Gamma = %v, want 0.7", major)
	}
	minor, ok := h.MinorParentEdge()
	if !ok || minor.Gamma != 0.3 {
		t.Errorf("MinorParentEdge().Gamma = %v, want 0.3", minor)
	}
	if !major.Hybrid || !minor.Hybrid {
		t.Error("hybrid parent edges not flagged hybrid")
	}
}

func TestParse_GammaDefaults(t *testing.T) {
	// No gammas at all: both sides get 0.5, the subtree occurrence is major.
	g, err := Parse("((A,(B)#H1),(#H1,C));")
	if err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	h := g.Hybrids()[0]
	major, ok := h.MajorParentEdge()
	if !ok || major.Gamma != 0.5 {
		t.Fatalf("MajorParentEdge().Gamma = %v, want 0.5", major)
	}
	if major.Child() != h {
		t.Error("major edge child is not the hybrid node")
	}
}

func TestParse_GammaComplement(t *testing.T) {
	// Minor gamma given, major inferred as the complement.
	g, err := Parse("((A,(B)#H1),(#H1:::0.2,C));")
	if err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	h := g.Hybrids()[0]
	major, _ := h.MajorParentEdge()
	if major.Gamma != 0.8 {
		t.Errorf("MajorParentEdge().Gamma = %v, want 0.8", major.Gamma)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "   ", ErrEmptyInput},
		{"missing semicolon", "(A,B)", ErrSyntax},
		{"unbalanced", "((A,B);", ErrSyntax},
		{"bad number", "(A:x,B);", ErrSyntax},
		{"empty leaf", "(A,,B);", ErrSyntax},
		{"duplicate taxon", "((A,B),A);", ErrDuplicateTaxon},
		{"hybrid seen once", "((A,(B)#H1),C);", ErrHybridOccurrences},
		{"hybrid seen thrice", "(((B)#H1,#H1),(#H1,C));", ErrHybridOccurrences},
		{"bad gamma sum", "((A,(B)#H1:::0.7),(#H1:::0.6,C));", ErrGamma},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.input); !errors.Is(err, tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, err, tt.want)
			}
		})
	}
}

func TestRead_FirstTree(t *testing.T) {
	r := strings.NewReader("((A,B),C);\n((X,Y),Z);\n")
	g, err := Read(r)
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}
	if len(g.Leaves()) != 3 {
		t.Errorf("Leaves() len = %d, want 3", len(g.Leaves()))
	}
	if _, ok := g.Node(1); !ok {
		t.Error("Node(1) missing after Read")
	}
}

func TestWrite_Deterministic(t *testing.T) {
	g, err := Parse("((A:1,(B:1)#H1:1::0.7):1,(#H1:1::0.3,C:1):1,D:1);")
	if err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	first, err := Write(g)
	if err != nil {
		t.Fatalf("Write() = %v", err)
	}
	second, err := Write(g)
	if err != nil {
		t.Fatalf("Write() = %v", err)
	}
	if first != second {
		t.Errorf("Write() not deterministic: %q then %q", first, second)
	}
}
