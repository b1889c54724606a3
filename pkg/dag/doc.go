// Package dag provides a directed graph organized into rows (layers), the
// working structure of the layered layout engine.
//
// Nodes carry a row index and edges are expected, once a graph has been
// prepared by the transform subpackage, to connect consecutive rows only.
// [DAG.Validate] checks that shape. Long edges are split by synthetic
// [NodeKindDummy] nodes that remember the input edge they belong to.
//
//	g := dag.New()
//	_ = g.AddNode(dag.Node{ID: "A", Row: 0})
//	_ = g.AddNode(dag.Node{ID: "B", Row: 1})
//	_ = g.AddEdge(dag.Edge{From: "A", To: "B"})
//
// Unlike a map-backed graph, iteration follows insertion order, so two
// runs over the same input produce the same ordering and coordinates.
//
// [CountCrossings] and [CountLayerCrossings] count edge crossings for
// candidate row orders in O(E log V) using a Fenwick tree.
//
// A DAG is not safe for concurrent use.
package dag
