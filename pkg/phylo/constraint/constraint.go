// Package constraint implements topology constraints for rearrangement
// searches: named sets of taxa that must stay together as a clade or as the
// individuals of one species. A constraint is derived once from a network
// and then checked cheaply after every candidate move.
package constraint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/phylonetworks/reticula/pkg/phylo"
)

var (
	// ErrUnknownTaxon is returned by [New] when a requested taxon name does
	// not match any leaf of the network.
	ErrUnknownTaxon = errors.New("taxon not found in network")

	// ErrTooFewTaxa is returned by [New] when fewer than two taxa are given.
	// A single-taxon group constrains nothing.
	ErrTooFewTaxa = errors.New("constraint needs at least two taxa")

	// ErrNoStemEdge is returned by [New] when no single edge separates
	// exactly the requested taxa from the rest of the network, so the group
	// is not currently monophyletic.
	ErrNoStemEdge = errors.New("taxa do not form a clade with a single stem edge")

	// ErrStaleConstraint is returned by [CheckStems] when a constraint's
	// recorded stem edge no longer exists or no longer leads to its crown
	// node. Constraints must be rebuilt after incompatible topology changes.
	ErrStaleConstraint = errors.New("constraint stem edge is stale")
)

// Type tags what a constraint protects.
type Type int

const (
	// Clade protects a monophyletic group of taxa.
	Clade Type = iota + 1
	// Species protects the individuals sampled from one species.
	Species
)

func (t Type) String() string {
	switch t {
	case Clade:
		return "clade"
	case Species:
		return "species"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// TopologyConstraint pins a group of taxa to the subtree hanging below one
// stem edge. It records the stem edge's number and the crown node's number;
// both are stable across NNI rearrangements, which relink but never create
// or destroy edges. The constraint does not track the network: if the root
// is moved or the topology is rebuilt, derive it again with [New].
type TopologyConstraint struct {
	Type         Type
	TaxonNames   []string
	TaxonNumbers []int
	EdgeNumber   int // stem edge
	NodeNumber   int // crown node, the stem edge's child
}

// New derives a constraint of the given type from the network and taxon
// names. The stem edge is found through the network's hardwired clusters:
// it is the unique edge whose set of descendant leaves equals the taxa.
//
// Returns ErrTooFewTaxa, ErrUnknownTaxon, or ErrNoStemEdge; no partial
// constraint is ever returned.
func New(g *phylo.Network, typ Type, taxa []string) (*TopologyConstraint, error) {
	if len(taxa) < 2 {
		return nil, fmt.Errorf("%s constraint on %d taxa: %w", typ, len(taxa), ErrTooFewTaxa)
	}

	byName := make(map[string]*phylo.Node)
	for _, n := range g.Leaves() {
		byName[n.Name] = n
	}
	want := make(map[int]bool, len(taxa))
	numbers := make([]int, 0, len(taxa))
	for _, name := range taxa {
		leaf, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%s constraint: %q: %w", typ, name, ErrUnknownTaxon)
		}
		want[leaf.Number] = true
		numbers = append(numbers, leaf.Number)
	}
	if len(want) != len(taxa) {
		return nil, fmt.Errorf("%s constraint: repeated taxon in %s: %w", typ, strings.Join(taxa, ","), ErrUnknownTaxon)
	}

	stem, err := stemEdge(g, want)
	if err != nil {
		return nil, fmt.Errorf("%s constraint on %s: %w", typ, strings.Join(taxa, ","), err)
	}
	return &TopologyConstraint{
		Type:         typ,
		TaxonNames:   append([]string(nil), taxa...),
		TaxonNumbers: numbers,
		EdgeNumber:   stem.Number,
		NodeNumber:   stem.Child().Number,
	}, nil
}

// stemEdge finds the unique edge whose hardwired cluster is exactly want.
// With hybrid crowns both parent edges match the cluster, so uniqueness is
// required, not assumed.
func stemEdge(g *phylo.Network, want map[int]bool) (*phylo.Edge, error) {
	order, err := g.Preorder()
	if err != nil {
		return nil, err
	}

	// Leaf clusters accumulate bottom-up: reverse topological order
	// guarantees every child is done before its parents need it.
	cluster := make(map[*phylo.Node]map[int]bool, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		n := order[i]
		set := make(map[int]bool)
		if n.Leaf {
			set[n.Number] = true
		}
		for _, e := range n.ChildEdges() {
			for num := range cluster[e.Child()] {
				set[num] = true
			}
		}
		cluster[n] = set
	}

	var found *phylo.Edge
	for _, e := range g.Edges() {
		if !clusterEquals(cluster[e.Child()], want) {
			continue
		}
		if found != nil {
			return nil, ErrNoStemEdge
		}
		found = e
	}
	if found == nil {
		return nil, ErrNoStemEdge
	}
	return found, nil
}

func clusterEquals(a, b map[int]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// Violated reports whether the constraint no longer holds on g: its stem
// edge is gone, or the stem edge's child is no longer the recorded crown
// node. NNIs relink edges in place, so a surviving stem with the same crown
// means the protected group is intact.
func (c *TopologyConstraint) Violated(g *phylo.Network) bool {
	e, ok := g.Edge(c.EdgeNumber)
	if !ok {
		return true
	}
	return e.Child().Number != c.NodeNumber
}

// AnyViolated reports whether any constraint in the list is violated on g.
func AnyViolated(g *phylo.Network, cs []*TopologyConstraint) bool {
	for _, c := range cs {
		if c.Violated(g) {
			return true
		}
	}
	return false
}

// CheckStems verifies before a search starts that every constraint's stem
// edge still exists and leads to its crown node.
func CheckStems(g *phylo.Network, cs []*TopologyConstraint) error {
	for _, c := range cs {
		if c.Violated(g) {
			return fmt.Errorf("%s constraint on %s (edge %d): %w",
				c.Type, strings.Join(c.TaxonNames, ","), c.EdgeNumber, ErrStaleConstraint)
		}
	}
	return nil
}
