package newick

import (
	"strconv"
	"strings"

	"github.com/phylonetworks/reticula/pkg/phylo"
)

// Write serializes the network to extended Newick. Child order follows the
// incident-edge slot order of each node, so the output is deterministic for
// a given in-memory state. A hybrid node's subtree is written under its
// major parent edge; the minor parent edge gets the bare tag.
//
// Returns phylo.ErrNoRoot when no root is set, or phylo.ErrGraphHasCycle
// when traversal revisits a node through child edges.
func Write(g *phylo.Network) (string, error) {
	root := g.Root()
	if root == nil {
		return "", phylo.ErrNoRoot
	}
	w := &writer{visited: make(map[*phylo.Node]bool)}
	var sb strings.Builder
	if err := w.subtree(&sb, root, nil); err != nil {
		return "", err
	}
	sb.WriteByte(';')
	return sb.String(), nil
}

type writer struct {
	visited map[*phylo.Node]bool
}

func (w *writer) subtree(sb *strings.Builder, n *phylo.Node, in *phylo.Edge) error {
	stub := in != nil && n.Hybrid && !in.Major
	if !stub {
		if w.visited[n] {
			return phylo.ErrGraphHasCycle
		}
		w.visited[n] = true
		if children := n.ChildEdges(); len(children) > 0 {
			sb.WriteByte('(')
			for i, e := range children {
				if i > 0 {
					sb.WriteByte(',')
				}
				if err := w.subtree(sb, e.Child(), e); err != nil {
					return err
				}
			}
			sb.WriteByte(')')
		}
	}
	sb.WriteString(n.Name)
	if in != nil {
		writeFields(sb, in)
	}
	return nil
}

func writeFields(sb *strings.Builder, e *phylo.Edge) {
	if e.Hybrid {
		sb.WriteByte(':')
		if e.Length >= 0 {
			sb.WriteString(formatFloat(e.Length))
		}
		sb.WriteString("::")
		sb.WriteString(formatFloat(e.Gamma))
		return
	}
	if e.Length >= 0 {
		sb.WriteByte(':')
		sb.WriteString(formatFloat(e.Length))
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
