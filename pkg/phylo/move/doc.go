// Package move implements nearest-neighbor interchange (NNI) rearrangements
// on semidirected phylogenetic networks.
//
// # Overview
//
// An NNI picks a focus edge uv and swaps one subtree hanging off the parent
// endpoint u with one hanging off the child endpoint v. On a semidirected
// network the number of distinct rearrangements depends on the hybrid status
// of u and v and on whether the focus edge is root-ambiguous:
//
//	u tree,   v tree   (BB): 8 if root-ambiguous, else 2
//	u tree,   v hybrid (BR): 6 if root-ambiguous, else 3
//	u hybrid, v tree   (RB): 4
//	u hybrid, v hybrid (RR): 2
//
// On a root-ambiguous edge the upper half of the range repeats the subtree
// exchanges of the lower half with the root carried across the focus edge:
// the parent chain down to the new root reverses, so the variant is a
// genuinely different oriented network, not a relabeling.
//
// [Count] reports the number for an edge; [Apply] performs move number m of
// that count deterministically and returns a [Move] whose Undo restores the
// network exactly, including edge slot order, so the serialized form is
// byte-identical. [ApplyRandom] shuffles the candidates, applies them one at
// a time, and keeps the first that survives the topology constraints.
//
// All rejections (bad pivot degree, directed cycle, 2-cycle or 3-cycle,
// protected stem edge, exhausted candidates) are reported as errors wrapping
// [ErrNoMove] and leave the network untouched. Rejected moves are a normal,
// frequent outcome of randomized search, never a fatal condition.
package move
