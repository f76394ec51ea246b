package newick

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/phylonetworks/reticula/pkg/phylo"
)

var (
	// ErrSyntax is returned by [Parse] when the input is not well-formed
	// Newick: unbalanced parentheses, missing separators, or a bad number.
	ErrSyntax = errors.New("malformed newick")

	// ErrEmptyInput is returned by [Parse] and [Read] when no tree is found.
	ErrEmptyInput = errors.New("no newick tree in input")

	// ErrDuplicateTaxon is returned by [Parse] when two leaves carry the
	// same name. Taxon names must be unique.
	ErrDuplicateTaxon = errors.New("duplicate taxon name")

	// ErrHybridOccurrences is returned by [Parse] when a hybrid tag does
	// not appear exactly twice, or when both occurrences carry a subtree.
	ErrHybridOccurrences = errors.New("hybrid tag must appear exactly twice")

	// ErrGamma is returned by [Parse] when a hybrid node's inheritance
	// probabilities are out of range or do not sum to 1.
	ErrGamma = errors.New("invalid inheritance probabilities")
)

const gammaTol = 1e-9

// ast is one parsed occurrence: a leaf, an internal node, or a hybrid tag.
type ast struct {
	label    string
	length   float64 // -1 when absent
	gamma    float64 // -1 when absent
	children []*ast
}

// Parse reads a single extended-Newick tree and returns the network.
// The result is validated; leaves are numbered 1..n in appearance order,
// internal nodes -2, -3, ... and edges sequentially.
func Parse(s string) (*phylo.Network, error) {
	p := &parser{s: s}
	p.skipSpace()
	if p.pos >= len(p.s) {
		return nil, ErrEmptyInput
	}
	root, err := p.subtree()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos >= len(p.s) || p.s[p.pos] != ';' {
		return nil, fmt.Errorf("position %d: expected ';': %w", p.pos, ErrSyntax)
	}
	return build(root)
}

// Read consumes r and parses the first tree it contains.
func Read(r io.Reader) (*phylo.Network, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading newick input: %w", err)
	}
	s := string(data)
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i+1]
	}
	return Parse(s)
}

type parser struct {
	s   string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) peek() byte {
	if p.pos < len(p.s) {
		return p.s[p.pos]
	}
	return 0
}

func (p *parser) subtree() (*ast, error) {
	n := &ast{length: -1, gamma: -1}
	p.skipSpace()
	if p.peek() == '(' {
		p.pos++
		for {
			child, err := p.subtree()
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, child)
			p.skipSpace()
			switch p.peek() {
			case ',':
				p.pos++
				continue
			case ')':
				p.pos++
			default:
				return nil, fmt.Errorf("position %d: expected ',' or ')': %w", p.pos, ErrSyntax)
			}
			break
		}
	}
	n.label = p.label()
	if len(n.children) == 0 && n.label == "" {
		return nil, fmt.Errorf("position %d: empty leaf label: %w", p.pos, ErrSyntax)
	}
	return n, p.fields(n)
}

// label reads an unquoted node label: everything up to a structural byte.
func (p *parser) label() string {
	start := p.pos
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case '(', ')', ',', ':', ';':
			return strings.TrimSpace(p.s[start:p.pos])
		}
		p.pos++
	}
	return strings.TrimSpace(p.s[start:])
}

// fields reads up to three colon-separated numbers after a node: branch
// length, bootstrap support (discarded), inheritance probability.
func (p *parser) fields(n *ast) error {
	for i := 0; i < 3 && p.peek() == ':'; i++ {
		p.pos++
		start := p.pos
		for p.pos < len(p.s) {
			c := p.s[p.pos]
			if c == ':' || c == ',' || c == ')' || c == ';' || c == '(' {
				break
			}
			p.pos++
		}
		tok := strings.TrimSpace(p.s[start:p.pos])
		if tok == "" {
			continue
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return fmt.Errorf("position %d: bad number %q: %w", start, tok, ErrSyntax)
		}
		switch i {
		case 0:
			n.length = v
		case 2:
			n.gamma = v
		}
	}
	return nil
}

type builder struct {
	g            *phylo.Network
	nextLeaf     int
	nextInternal int
	nextEdge     int
	taxa         map[string]bool
	hybrids      map[string]*phylo.Node
	tagEdges     map[string][]*phylo.Edge
	tagGamma     map[*phylo.Edge]float64
	tagPrimary   map[string]*phylo.Edge
}

func build(root *ast) (*phylo.Network, error) {
	b := &builder{
		g:            phylo.New(),
		nextLeaf:     1,
		nextInternal: -1,
		nextEdge:     1,
		taxa:         make(map[string]bool),
		hybrids:      make(map[string]*phylo.Node),
		tagEdges:     make(map[string][]*phylo.Edge),
		tagGamma:     make(map[*phylo.Edge]float64),
		tagPrimary:   make(map[string]*phylo.Edge),
	}
	rootNode, err := b.walk(root, nil)
	if err != nil {
		return nil, err
	}
	if err := b.g.SetRoot(rootNode); err != nil {
		return nil, err
	}
	if err := b.finalizeHybrids(); err != nil {
		return nil, err
	}
	b.g.RefreshContainRoot()
	if err := b.g.Validate(); err != nil {
		return nil, fmt.Errorf("parsed network is invalid: %w", err)
	}
	return b.g, nil
}

func (b *builder) walk(a *ast, parent *phylo.Node) (*phylo.Node, error) {
	n, err := b.node(a)
	if err != nil {
		return nil, err
	}
	if parent != nil {
		e := &phylo.Edge{Number: b.nextEdge, Length: a.length}
		b.nextEdge++
		if n.Hybrid && a.gamma >= 0 {
			e.Gamma = a.gamma
		}
		if err := b.g.AddEdge(e, parent, n); err != nil {
			return nil, err
		}
		if n.Hybrid {
			b.tagEdges[a.label] = append(b.tagEdges[a.label], e)
			b.tagGamma[e] = a.gamma
			if len(a.children) > 0 {
				if _, dup := b.tagPrimary[a.label]; dup {
					return nil, fmt.Errorf("tag %q has two subtrees: %w", a.label, ErrHybridOccurrences)
				}
				b.tagPrimary[a.label] = e
			}
		}
	}
	for _, c := range a.children {
		if _, err := b.walk(c, n); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (b *builder) node(a *ast) (*phylo.Node, error) {
	if strings.Contains(a.label, "#") {
		if n, ok := b.hybrids[a.label]; ok {
			return n, nil
		}
		b.nextInternal--
		n := &phylo.Node{Number: b.nextInternal, Name: a.label, Hybrid: true}
		b.hybrids[a.label] = n
		return n, b.g.AddNode(n)
	}
	if len(a.children) == 0 {
		if b.taxa[a.label] {
			return nil, fmt.Errorf("taxon %q: %w", a.label, ErrDuplicateTaxon)
		}
		b.taxa[a.label] = true
		n := &phylo.Node{Number: b.nextLeaf, Name: a.label, Leaf: true}
		b.nextLeaf++
		return n, b.g.AddNode(n)
	}
	b.nextInternal--
	n := &phylo.Node{Number: b.nextInternal, Name: a.label}
	return n, b.g.AddNode(n)
}

// finalizeHybrids resolves gammas and major flags once both parent edges of
// every hybrid tag are known.
func (b *builder) finalizeHybrids() error {
	for tag, edges := range b.tagEdges {
		if len(edges) != 2 {
			return fmt.Errorf("tag %q seen %d times: %w", tag, len(edges), ErrHybridOccurrences)
		}
		g0, g1 := b.tagGamma[edges[0]], b.tagGamma[edges[1]]
		switch {
		case g0 < 0 && g1 < 0:
			g0, g1 = 0.5, 0.5
		case g0 < 0:
			g0 = 1 - g1
		case g1 < 0:
			g1 = 1 - g0
		}
		if g0 < 0 || g0 > 1 || g1 < 0 || g1 > 1 || math.Abs(g0+g1-1) > gammaTol {
			return fmt.Errorf("tag %q gammas %g and %g: %w", tag, g0, g1, ErrGamma)
		}
		edges[0].Gamma, edges[1].Gamma = g0, g1
		major := edges[0]
		if g1 > g0 {
			major = edges[1]
		} else if g0 == g1 {
			if p, ok := b.tagPrimary[tag]; ok {
				major = p
			}
		}
		for _, e := range edges {
			e.Major = e == major
		}
	}
	return nil
}
