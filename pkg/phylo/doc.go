// Package phylo provides the core data structure for semidirected
// phylogenetic networks: rooted DAGs with reticulation (hybrid) nodes,
// where tree-edge directions are a consequence of root placement rather
// than fixed data.
//
// # Overview
//
// A phylogenetic network extends a phylogenetic tree with hybrid nodes that
// have two parents, modelling reticulate evolution (hybridization, horizontal
// gene transfer). Each hybrid node's two parent edges carry inheritance
// probabilities (gamma values) that sum to 1; the edge with the larger gamma
// is the major parent edge.
//
// The network is semidirected: hybrid edges have fixed direction, but tree
// edges are directed only by the current root placement. Each tree edge
// records whether the root could be relocated onto it (ContainRoot), which
// is false for every edge reachable from a hybrid node.
//
// # Basic Usage
//
// Create a network with [New], add nodes with [Network.AddNode], and connect
// them with [Network.AddEdge], which orients the edge parent-to-child:
//
//	g := phylo.New()
//	root := &phylo.Node{Number: -2}
//	a := &phylo.Node{Number: 1, Name: "A", Leaf: true}
//	g.AddNode(root)
//	g.AddNode(a)
//	g.AddEdge(&phylo.Edge{Number: 1, Length: 1.0}, root, a)
//	g.SetRoot(root)
//
// Query structure with [Node.ParentEdges], [Node.ChildEdges], [Edge.Parent],
// [Edge.Child], and [Network.Preorder]. Use [Network.Validate] to verify all
// structural invariants before applying rearrangements.
//
// # Direction Storage
//
// Each edge stores its two endpoints in fixed slots plus a flag naming which
// slot holds the child. Rearrangement operations swap endpoints in place and
// flip the flag, never reordering slots. Keeping slot order stable is what
// makes a move followed by its undo restore the network byte-for-byte when
// serialized.
//
// # Mutation and Caching
//
// [Network.Preorder] caches a topological ordering of the nodes. Operations
// that change the topology must call [Network.Invalidate] to drop the cache;
// the rearrangement operators in the move subpackage do this automatically.
//
// # Concurrency
//
// Network instances are not safe for concurrent use. Callers must
// synchronize access if multiple goroutines read or modify the same network.
//
// # Related Packages
//
// The [move] subpackage implements nearest-neighbor interchange (NNI)
// rearrangements with exact undo. The [constraint] subpackage implements
// clade and species-group topology constraints checked during searches.
//
// [move]: github.com/phylonetworks/reticula/pkg/phylo/move
// [constraint]: github.com/phylonetworks/reticula/pkg/phylo/constraint
package phylo
