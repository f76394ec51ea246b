// Package pkg provides the core libraries for Reticula phylogenetic network
// rearrangement.
//
// # Overview
//
// Reticula explores the space of semidirected phylogenetic networks through
// nearest-neighbor-interchange (NNI) moves. The pkg directory is organized
// into five main areas:
//
//  1. [phylo] - Domain logic (network structures, NNI moves, constraints)
//  2. [newick] - Extended Newick parsing and writing
//  3. [render] - Visualization (Graphviz node-link diagrams)
//  4. [pipeline] - Orchestration (load → search → render)
//  5. [cache] / [runstore] - Infrastructure (result caching, run persistence)
//
// # Architecture
//
// The typical data flow through Reticula:
//
//	Extended Newick string
//	         ↓
//	    [newick] package (parse into a network)
//	         ↓
//	    [phylo] package (network structure + NNI moves + constraints)
//	         ↓
//	    [pipeline] package (search walk, scoring, caching)
//	         ↓
//	    [render/nodelink] package (DOT/SVG/PNG/PDF output)
//
// # Quick Start
//
// Parse a network, run a rearrangement search, and render the result:
//
//	import (
//	    "context"
//	    "github.com/phylonetworks/reticula/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil, nil)
//	defer runner.Close()
//
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    Newick:   "((A:1,(B:1)#H1:1::0.6):1,(#H1:1::0.4,C:1):1,D:1);",
//	    MaxMoves: 100,
//	    Seed:     42,
//	})
//
//	svg, err := runner.Render(context.Background(), result.Network, pipeline.Options{
//	    Format: pipeline.FormatSVG,
//	})
//
// # Main Packages
//
// ## Domain Logic
//
// [phylo] - Semidirected phylogenetic networks: nodes, edges, reticulations,
// inheritance probabilities, and structural validation.
//
// [phylo/move] - NNI local rearrangements. Counts the moves available on an
// edge, applies a move by index, applies a random legal move, and undoes a
// move exactly.
//
// [phylo/constraint] - Topology constraints that pin clades or species groups
// to their stem edges during a search.
//
// ## Input/Output
//
// [newick] - Extended Newick reader and writer supporting hybrid nodes with
// inheritance probabilities. Writing is canonical: equal networks produce
// equal strings.
//
// ## Visualization
//
// [render/nodelink] - Directed network diagrams using Graphviz. Tree edges
// appear as solid arrows; the two parent edges of each reticulation are
// dashed and labeled with their inheritance probabilities.
//
// [render] - Top-level utilities for format conversion (SVG to PDF/PNG).
//
// ## Orchestration
//
// [pipeline] - Complete search pipeline (load → search → record → render)
// used by the CLI and the HTTP API. Ensures consistent behavior across all
// entry points, with score and figure caching.
//
// ## Infrastructure
//
// [cache] - Content-addressed result cache. FileCache for the CLI,
// RedisCache for server deployments, NullCache to disable caching.
//
// [runstore] - Search run persistence. MemoryStore for testing, FileStore
// for the CLI, MongoStore for server deployments.
//
// [errors] - Coded errors with user-facing messages, shared by the CLI and
// the HTTP API.
//
// [observability] - Hook points for search instrumentation.
//
// [buildinfo] - Version information injected at build time.
//
// [phylo]: github.com/phylonetworks/reticula/pkg/phylo
// [newick]: github.com/phylonetworks/reticula/pkg/newick
// [render]: github.com/phylonetworks/reticula/pkg/render
// [pipeline]: github.com/phylonetworks/reticula/pkg/pipeline
// [cache]: github.com/phylonetworks/reticula/pkg/cache
// [runstore]: github.com/phylonetworks/reticula/pkg/runstore
package pkg
