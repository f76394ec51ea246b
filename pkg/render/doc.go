// Package render provides figure rendering for phylogenetic networks.
//
// # Overview
//
// This package contains the rendering pipeline that turns networks into
// visual outputs. It provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Node-link network diagrams (in [nodelink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// # Network Diagrams
//
// The [nodelink] subpackage renders directed network diagrams using
// Graphviz. Tree edges appear as solid arrows; the two parent edges of each
// reticulation are dashed and labeled with their inheritance probabilities.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//
// [nodelink]: github.com/phylonetworks/reticula/pkg/render/nodelink
package render
