package pipeline

import (
	"context"

	"github.com/phylonetworks/reticula/pkg/phylo"
)

// Scorer evaluates candidate topologies during a search. Implementations
// typically wrap a likelihood engine or a parsimony criterion; the walk
// accepts a move when the candidate scores at least as well as the
// incumbent topology.
type Scorer interface {
	// Name identifies the scorer in cache keys and run records.
	Name() string

	// Score evaluates the network. Higher is better.
	Score(ctx context.Context, g *phylo.Network) (float64, error)
}

// AcceptAll scores every topology identically, so the walk accepts every
// legal move. Useful for exploring the neighborhood of a network and for
// exercising the search machinery without a likelihood engine.
type AcceptAll struct{}

// Name returns the scorer identifier.
func (AcceptAll) Name() string { return "accept-all" }

// Score returns zero for every network.
func (AcceptAll) Score(context.Context, *phylo.Network) (float64, error) { return 0, nil }
