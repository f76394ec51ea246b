package move

import (
	"fmt"
	"math/rand/v2"

	"github.com/phylonetworks/reticula/pkg/phylo"
	"github.com/phylonetworks/reticula/pkg/phylo/constraint"
)

// ApplyRandom tries the focus edge's rearrangements in random order and
// returns the first one that both applies and leaves every constraint
// intact. A move that applies but breaks a constraint is undone on the spot
// before the next candidate is tried, so the network never leaves the call
// in an intermediate state.
//
// The focus edge is refused outright when its number matches a constraint's
// stem edge. When every candidate is rejected the error wraps ErrNoMove and
// the network is unchanged.
func ApplyRandom(g *phylo.Network, focus *phylo.Edge, rng *rand.Rand, opts Options, cs []*constraint.TopologyConstraint) (*Move, error) {
	for _, c := range cs {
		if c.EdgeNumber == focus.Number {
			return nil, fmt.Errorf("edge %d is the stem of a %s constraint: %w", focus.Number, c.Type, ErrNoMove)
		}
	}
	k := Count(focus)
	if k == 0 {
		return nil, fmt.Errorf("edge %d is not a degree-3 pivot: %w", focus.Number, ErrNoMove)
	}

	order := rng.Perm(k)
	for _, i := range order {
		m, err := Apply(g, focus, i+1, opts)
		if err != nil {
			continue
		}
		if !constraint.AnyViolated(g, cs) {
			return m, nil
		}
		if err := m.Undo(); err != nil {
			// Undo of an immediately preceding move cannot fail unless the
			// network was mutated concurrently, which is unsupported.
			return nil, err
		}
	}
	return nil, fmt.Errorf("all %d candidates on edge %d rejected: %w", k, focus.Number, ErrNoMove)
}
