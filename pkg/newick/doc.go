// Package newick reads and writes semidirected phylogenetic networks in
// extended Newick format.
//
// # Format
//
// Plain trees use standard Newick: nested parentheses with branch lengths
// after colons, terminated by a semicolon:
//
//	((A:1,B:1):2,C:3);
//
// Reticulations use hybrid tags: a node label containing "#" names a hybrid
// node that appears twice, once with its child subtree (under its major
// parent) and once as a bare tag (under its minor parent). The third
// colon-separated field on a hybrid branch is the inheritance probability:
//
//	((A,(B)#H1:1.0::0.7),(#H1:::0.3,C));
//
// The second field (bootstrap support) is accepted and discarded.
//
// # Conventions
//
// Leaves are numbered 1..n in order of appearance, internal nodes -2, -3, ...
// and edges sequentially in construction order. When both gamma values of a
// hybrid are missing they default to 0.5 each, with the occurrence carrying
// the child subtree treated as major. Writing is deterministic: child order
// follows the incident-edge slot order, so a network serializes identically
// before a rearrangement and after the rearrangement's undo.
package newick
