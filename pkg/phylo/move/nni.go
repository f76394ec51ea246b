package move

import (
	"errors"
	"fmt"

	"github.com/phylonetworks/reticula/pkg/phylo"
)

// ErrNoMove is returned by [Apply] and [ApplyRandom] when the requested
// rearrangement cannot be performed: the focus edge is not a valid pivot,
// the move index is out of range, the rewiring would violate an invariant,
// or every randomized candidate was rejected. The network is guaranteed
// unchanged when an error wrapping ErrNoMove is returned.
var ErrNoMove = errors.New("no legal rearrangement")

// Options gates which rearrangements [Apply] accepts beyond the hard
// structural invariants.
type Options struct {
	// No3Cycle rejects moves that would create an undirected 3-cycle.
	No3Cycle bool
	// NoHybridLadder rejects moves that would direct a hybrid edge out of
	// another hybrid node (two stacked reticulations).
	NoHybridLadder bool
}

// Count returns the number of distinct NNI rearrangements available on the
// focus edge: 0 when either endpoint has degree other than 3, otherwise
// 2, 3, 4, 6 or 8 depending on the endpoints' hybrid status and the edge's
// root ambiguity.
func Count(e *phylo.Edge) int {
	u, v := e.Parent(), e.Child()
	if u.Degree() != 3 || v.Degree() != 3 {
		return 0
	}
	switch {
	case u.Hybrid && v.Hybrid:
		return 2
	case u.Hybrid:
		return 4
	case v.Hybrid:
		if e.ContainRoot {
			return 6
		}
		return 3
	default:
		if e.ContainRoot {
			return 8
		}
		return 2
	}
}

// Move is the undo token of one applied rearrangement. It records the five
// relinked slots, the direction flip, and for root-relocated variants the
// reversed parent chain, which is exactly the information needed to invert
// the surgery. Undo must be called before any further mutation of the
// network; a Move is single-use.
type Move struct {
	g         *phylo.Network
	u, v      *phylo.Node
	eU, eV    *phylo.Edge
	rV        *phylo.Edge
	focus     *phylo.Edge
	flipped   bool
	origChild *phylo.Node
	snap      [3]edgeSnapshot
	oldRoot   *phylo.Node
	shift     []*phylo.Edge
}

type edgeSnapshot struct {
	hybrid bool
	gamma  float64
	major  bool
}

// Edge returns the focus edge of the applied move.
func (m *Move) Edge() *phylo.Edge { return m.focus }

// Flipped reports whether the move reversed the focus edge's direction.
func (m *Move) Flipped() bool { return m.flipped }

// Apply performs move number index on the focus edge, for index in
// [1, Count(focus)]. The mapping from index to rearrangement is
// deterministic for a given network state: indices walk the choice of
// swapped neighbor edge at each endpoint, and on a root-ambiguous edge the
// upper half of the range repeats those choices with the root relocated
// across the focus edge, re-orienting the reversed parent chain. Every
// index therefore names its own post-move network.
//
// On success the network has been mutated in place (same node and edge
// objects, relinked) and the returned Move undoes it exactly. On failure
// the error wraps ErrNoMove and the network is untouched.
func Apply(g *phylo.Network, focus *phylo.Edge, index int, opts Options) (*Move, error) {
	k := Count(focus)
	if k == 0 {
		return nil, fmt.Errorf("edge %d is not a degree-3 pivot: %w", focus.Number, ErrNoMove)
	}
	if index < 1 || index > k {
		return nil, fmt.Errorf("move %d of %d on edge %d: %w", index, k, focus.Number, ErrNoMove)
	}
	base, relocate := splitIndex(index, k)
	p := makePlan(focus, base, k)
	if err := p.check(g, opts); err != nil {
		return nil, err
	}
	m := p.commit(g)
	if relocate {
		if err := m.relocateRoot(); err != nil {
			m.Undo()
			return nil, fmt.Errorf("move %d on edge %d cannot carry the root: %w", index, focus.Number, ErrNoMove)
		}
	}
	return m, nil
}

// splitIndex maps a public move index onto a base rearrangement plus a
// root-relocation flag. The root-ambiguous cases (BB with 8 moves, BR with
// 6) advertise each base move twice: as-is, and with the root carried
// across the focus edge.
func splitIndex(index, k int) (base int, relocate bool) {
	if (k == 6 || k == 8) && index > k/2 {
		return index - k/2, true
	}
	return index, false
}

// plan is one fully labeled rearrangement: eU detaches from u and reattaches
// to v, eV detaches from v and reattaches to u, rU and rV stay put, and the
// focus edge flips direction when the three orientations run straight
// through the eU-u-v-eV path.
type plan struct {
	focus  *phylo.Edge
	u, v   *phylo.Node
	eU, eV *phylo.Edge
	rU, rV *phylo.Edge
	flip   bool
}

func makePlan(focus *phylo.Edge, index, k int) *plan {
	u, v := focus.Parent(), focus.Child()

	var secondU, secondV bool
	switch {
	case u.Hybrid && v.Hybrid: // RR
		secondU = index == 2
	case u.Hybrid: // RB
		secondU = index == 2 || index == 4
		secondV = index > 2
	case v.Hybrid: // BR, base index in [1, 3]
		secondV = index >= 2
		secondU = index == 3
	default: // BB
		if k == 8 {
			secondU = index > 2
			secondV = index%2 == 0
		} else {
			secondV = index == 2
		}
	}

	us := neighborEdges(focus, u)
	vs := neighborEdges(focus, v)
	p := &plan{focus: focus, u: u, v: v, eU: us[0], rU: us[1], eV: vs[0], rV: vs[1]}
	if secondU {
		p.eU, p.rU = us[1], us[0]
	}
	if secondV {
		p.eV, p.rV = vs[1], vs[0]
	}

	downU := p.eU.Child() == u
	downUV := focus.Child() == v
	downV := p.eV.Child() != v
	p.flip = (downU && downUV && downV) || (!downU && !downUV && !downV)
	return p
}

// neighborEdges returns w's two non-focus edges: parent edges first (major
// before minor), then child edges in slot order. The focus endpoints have
// degree 3, so exactly two edges remain.
func neighborEdges(focus *phylo.Edge, w *phylo.Node) [2]*phylo.Edge {
	var parents, children []*phylo.Edge
	for _, x := range w.Edges() {
		if x == focus {
			continue
		}
		if x.Child() == w {
			parents = append(parents, x)
		} else {
			children = append(children, x)
		}
	}
	if len(parents) == 2 && !parents[0].Major {
		parents[0], parents[1] = parents[1], parents[0]
	}
	all := append(parents, children...)
	return [2]*phylo.Edge{all[0], all[1]}
}

// postChildren returns the child endpoint each of the three touched edges
// would have after the surgery, without mutating anything. Relocated edges
// keep their far-end orientation: an edge that pointed into u points into v
// after the swap, and vice versa.
func (p *plan) postChildren() (cU, cF, cV *phylo.Node) {
	a, d := p.eU.Other(p.u), p.eV.Other(p.v)
	cU = a
	if p.eU.Child() == p.u {
		cU = p.v
	}
	cV = d
	if p.eV.Child() == p.v {
		cV = p.u
	}
	cF = p.focus.Child()
	if p.flip {
		cF = p.focus.Other(cF)
	}
	return cU, cF, cV
}

func (p *plan) check(g *phylo.Network, opts Options) error {
	u, v := p.u, p.v
	a, d := p.eU.Other(u), p.eV.Other(v)
	b, c := p.rU.Other(u), p.rV.Other(v)
	cU, cF, cV := p.postChildren()

	// Parent-count arithmetic: after the surgery each endpoint must have
	// the in-degree its kind demands.
	inU := btoi(p.rU.Child() == u) + btoi(cF == u) + btoi(cV == u)
	inV := btoi(p.rV.Child() == v) + btoi(cF == v) + btoi(cU == v)
	if inU != requiredParents(g, u) || inV != requiredParents(g, v) {
		return fmt.Errorf("move on edge %d breaks parent counts: %w", p.focus.Number, ErrNoMove)
	}

	// 2-cycle guard: the rewired edges must not duplicate an existing
	// adjacency.
	if p.adjacentBesides(a, v) || p.adjacentBesides(d, u) {
		return fmt.Errorf("move on edge %d creates parallel edges: %w", p.focus.Number, ErrNoMove)
	}

	if opts.No3Cycle && phylo.Problem4Cycle(b, d, a, c) {
		return fmt.Errorf("move on edge %d creates a 3-cycle: %w", p.focus.Number, ErrNoMove)
	}

	if opts.NoHybridLadder {
		for _, pc := range []struct{ parent, child *phylo.Node }{
			{other2(a, v, cU), cU},
			{other2(u, v, cF), cF},
			{other2(d, u, cV), cV},
		} {
			if pc.child.Hybrid && pc.parent.Hybrid {
				return fmt.Errorf("move on edge %d creates a hybrid ladder: %w", p.focus.Number, ErrNoMove)
			}
		}
	}

	if p.createsCycle(cU, cF, cV) {
		return fmt.Errorf("move on edge %d creates a directed cycle: %w", p.focus.Number, ErrNoMove)
	}
	return nil
}

// createsCycle runs reachability on the post-move arc set without mutating
// the network: the three touched edges are interpreted through their
// post-move endpoints, everything else is read as-is.
func (p *plan) createsCycle(cU, cF, cV *phylo.Node) bool {
	a, d := p.eU.Other(p.u), p.eV.Other(p.v)
	type arc struct{ parent, child *phylo.Node }
	post := map[*phylo.Edge]arc{
		p.eU:    {other2(a, p.v, cU), cU},
		p.focus: {other2(p.u, p.v, cF), cF},
		p.eV:    {other2(d, p.u, cV), cV},
	}

	children := func(n *phylo.Node) []*phylo.Node {
		var out []*phylo.Node
		for _, e := range n.Edges() {
			if _, touched := post[e]; touched {
				continue
			}
			if e.Child() != n {
				out = append(out, e.Child())
			}
		}
		for _, pa := range post {
			if pa.parent == n {
				out = append(out, pa.child)
			}
		}
		return out
	}

	reaches := func(src, dst *phylo.Node) bool {
		seen := map[*phylo.Node]bool{src: true}
		stack := []*phylo.Node{src}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, ch := range children(n) {
				if ch == dst {
					return true
				}
				if !seen[ch] {
					seen[ch] = true
					stack = append(stack, ch)
				}
			}
		}
		return false
	}

	for _, pa := range post {
		if reaches(pa.child, pa.parent) {
			return true
		}
	}
	return false
}

// adjacentBesides reports whether x and y share an edge other than the
// three being rewired.
func (p *plan) adjacentBesides(x, y *phylo.Node) bool {
	for _, e := range x.Edges() {
		if e == p.eU || e == p.eV || e == p.focus {
			continue
		}
		if e.Other(x) == y {
			return true
		}
	}
	return false
}

func (p *plan) commit(g *phylo.Network) *Move {
	m := &Move{
		g: g, u: p.u, v: p.v,
		eU: p.eU, eV: p.eV, rV: p.rV, focus: p.focus,
		flipped: p.flip, origChild: p.focus.Child(),
	}
	for i, e := range []*phylo.Edge{p.eU, p.focus, p.eV} {
		m.snap[i] = edgeSnapshot{hybrid: e.Hybrid, gamma: e.Gamma, major: e.Major}
	}

	// Pre-move hybrid parentage, for the gamma transfer below.
	preParents := make(map[*phylo.Node]map[*phylo.Edge]edgeSnapshot, 2)
	for _, w := range []*phylo.Node{p.u, p.v} {
		if !w.Hybrid {
			continue
		}
		ps := make(map[*phylo.Edge]edgeSnapshot, 2)
		for _, e := range w.ParentEdges() {
			ps[e] = edgeSnapshot{hybrid: e.Hybrid, gamma: e.Gamma, major: e.Major}
		}
		preParents[w] = ps
	}

	// The surgery: swap the near endpoints of eU and eV, slot-preserving
	// on both the node edge lists and the edge endpoint pairs.
	p.u.ReplaceEdge(p.eU, p.eV)
	p.v.ReplaceEdge(p.eV, p.eU)
	p.eU.ReplaceNode(p.u, p.v)
	p.eV.ReplaceNode(p.v, p.u)
	if p.flip {
		p.focus.SetChild(p.focus.Other(p.focus.Child()))
	}

	for _, e := range []*phylo.Edge{p.eU, p.focus, p.eV} {
		e.Hybrid = e.Child().Hybrid
		if !e.Hybrid {
			e.Gamma = 1
			e.Major = true
		}
	}

	// A hybrid node that traded one parent edge for another hands the old
	// edge's inheritance share to the new one.
	for _, w := range []*phylo.Node{p.u, p.v} {
		pre, ok := preParents[w]
		if !ok {
			continue
		}
		var departed *edgeSnapshot
		for e, snap := range pre {
			if e.Child() != w {
				s := snap
				departed = &s
			}
		}
		if departed == nil {
			continue
		}
		for _, e := range w.ParentEdges() {
			if _, was := pre[e]; !was {
				e.Gamma = departed.gamma
				e.Major = departed.major
			}
		}
	}

	g.RefreshContainRoot()
	g.Invalidate()
	return m
}

// relocateRoot carries the root across the focus edge after the surgery:
// to the focus parent, or to the far side of the hybrid child's retained
// parent edge when the surgery directed the focus edge out of the hybrid.
// The reversed parent chain is what distinguishes a root-relocated variant
// from its base move.
func (m *Move) relocateRoot() error {
	target := m.u
	if m.flipped && m.v.Hybrid {
		target = m.rV.Other(m.v)
	}
	old := m.g.Root()
	path, err := m.g.RerootAt(target)
	if err != nil {
		return err
	}
	m.oldRoot, m.shift = old, path
	return nil
}

// Undo reverses the move exactly: same slots, same direction, same hybrid
// flags and inheritance probabilities. Returns an error only if the network
// was mutated after the move, in which case nothing is changed.
func (m *Move) Undo() error {
	if !m.u.HasEdge(m.eV) || !m.v.HasEdge(m.eU) {
		return fmt.Errorf("undo of move on edge %d: %w", m.focus.Number, phylo.ErrUnknownEdge)
	}
	if m.shift != nil {
		for _, e := range m.shift {
			e.SetChild(e.Parent())
		}
		m.g.SetRoot(m.oldRoot)
	}
	m.u.ReplaceEdge(m.eV, m.eU)
	m.v.ReplaceEdge(m.eU, m.eV)
	m.eU.ReplaceNode(m.v, m.u)
	m.eV.ReplaceNode(m.u, m.v)
	if m.flipped {
		m.focus.SetChild(m.origChild)
	}
	for i, e := range []*phylo.Edge{m.eU, m.focus, m.eV} {
		e.Hybrid = m.snap[i].hybrid
		e.Gamma = m.snap[i].gamma
		e.Major = m.snap[i].major
	}
	m.g.RefreshContainRoot()
	m.g.Invalidate()
	return nil
}

func requiredParents(g *phylo.Network, w *phylo.Node) int {
	switch {
	case w.Hybrid:
		return 2
	case w == g.Root():
		return 0
	default:
		return 1
	}
}

// other2 returns whichever of x and y is not c.
func other2(x, y, c *phylo.Node) *phylo.Node {
	if c == x {
		return y
	}
	return x
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
