package move_test

import (
	"fmt"
	"math/rand/v2"

	"github.com/phylonetworks/reticula/pkg/newick"
	"github.com/phylonetworks/reticula/pkg/phylo/move"
)

func ExampleCount() {
	g, err := newick.Parse("((A:1,B:1):1,((C:1,D:1):1,(E:1,F:1):1):1);")
	if err != nil {
		panic(err)
	}

	// An internal edge with two degree-3 tree endpoints admits eight moves.
	inner, _ := g.Edge(5)
	fmt.Println("Inner edge:", move.Count(inner))

	// A leaf edge admits none.
	leaf, _ := g.Edge(2)
	fmt.Println("Leaf edge:", move.Count(leaf))
	// Output:
	// Inner edge: 8
	// Leaf edge: 0
}

func ExampleApplyRandom() {
	g, err := newick.Parse("((A:1,B:1):1,((C:1,D:1):1,(E:1,F:1):1):1);")
	if err != nil {
		panic(err)
	}
	before, _ := newick.Write(g)

	focus, _ := g.Edge(5)
	rng := rand.New(rand.NewPCG(1, 2))
	m, err := move.ApplyRandom(g, focus, rng, move.Options{}, nil)
	if err != nil {
		panic(err)
	}

	after, _ := newick.Write(g)
	fmt.Println("Changed:", after != before)

	// Undo restores the exact serialization.
	if err := m.Undo(); err != nil {
		panic(err)
	}
	restored, _ := newick.Write(g)
	fmt.Println("Restored:", restored == before)
	// Output:
	// Changed: true
	// Restored: true
}
