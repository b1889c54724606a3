// Package layout assigns coordinates to graph nodes with a layered
// (Sugiyama-style) algorithm.
//
// [Engine.Layout] breaks cycles, assigns ranks by longest path, splits long
// edges with dummy nodes, orders each rank with barycenter sweeps keeping
// the ordering with the fewest crossings, then packs every rank left to
// right and centres it on the widest rank. Coordinates in a [Result] are
// node centres; edges are routed through the dummy positions.
//
// For an acyclic input no two boxes overlap and every edge points to a
// strictly lower rank. Layout is deterministic: ties are broken by input
// order.
//
// When layout cannot run (too many nodes, an edge to an unknown node,
// cancellation) [Place] degrades to [Fallback], a naive diagonal
// placement, and flags the result as Degraded.
package layout
