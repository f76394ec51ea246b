package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/phylonetworks/reticula/pkg/phylo"
	"github.com/phylonetworks/reticula/pkg/render"
)

// Options configures network diagram rendering.
type Options struct {
	// Detailed includes branch lengths on tree edges and node numbers on
	// internal nodes. When false, only taxon names and inheritance
	// probabilities are shown.
	Detailed bool
}

// ToDOT converts a network to Graphviz DOT format for node-link
// visualization. The resulting DOT string can be rendered using
// [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Hybrid edges are rendered dashed and labeled with their inheritance
// probability; the minor edge of each hybrid pair is drawn grey.
func ToDOT(g *phylo.Network, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=point, width=0.08];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		attrs := nodeAttrs(g, n, opts.Detailed)
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(n), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		attrs := edgeAttrs(e, opts.Detailed)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", nodeID(e.Parent()), nodeID(e.Child()))
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", nodeID(e.Parent()), nodeID(e.Child()), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(n *phylo.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return strconv.Itoa(n.Number)
}

func nodeAttrs(g *phylo.Network, n *phylo.Node, detailed bool) []string {
	switch g.Kind(n) {
	case phylo.NodeKindLeaf:
		return []string{
			fmt.Sprintf("label=%q", n.Name),
			"shape=none",
			"fontsize=14",
		}
	case phylo.NodeKindHybrid:
		attrs := []string{"color=steelblue", "width=0.12"}
		if detailed {
			attrs = append(attrs,
				fmt.Sprintf("xlabel=%q", fmt.Sprintf("%s (%d)", n.Name, n.Number)),
				"fontsize=10")
		}
		return attrs
	case phylo.NodeKindRoot:
		return []string{"shape=diamond", "width=0.15", "height=0.15"}
	default:
		if detailed {
			return []string{
				fmt.Sprintf("xlabel=%q", strconv.Itoa(n.Number)),
				"fontsize=10",
			}
		}
		return nil
	}
}

func edgeAttrs(e *phylo.Edge, detailed bool) []string {
	if e.Hybrid {
		attrs := []string{
			fmt.Sprintf("label=%q", strconv.FormatFloat(e.Gamma, 'g', 3, 64)),
			"style=dashed",
			"fontsize=10",
		}
		if e.Major {
			attrs = append(attrs, "color=steelblue")
		} else {
			attrs = append(attrs, "color=grey")
		}
		return attrs
	}
	if detailed && e.Length >= 0 {
		return []string{
			fmt.Sprintf("label=%q", strconv.FormatFloat(e.Length, 'g', 3, 64)),
			"fontsize=10",
		}
	}
	return nil
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
