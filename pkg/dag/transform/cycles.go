package transform

import "github.com/matzehuels/mermedit/pkg/dag"

// BreakCycles makes g acyclic and returns the number of edges it changed.
//
// A depth-first search from the sources (then from any node still
// unvisited, in insertion order) classifies edges with white/gray/black
// coloring. Back edges are reversed and self-loops are removed.
func BreakCycles(g *dag.DAG) int {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, g.NodeCount())
	var back []dag.Edge

	var visit func(id string)
	visit = func(id string) {
		color[id] = gray
		for _, child := range g.Children(id) {
			switch color[child] {
			case white:
				visit(child)
			case gray:
				back = append(back, dag.Edge{From: id, To: child})
			}
		}
		color[id] = black
	}

	roots := append(g.Sources(), g.Nodes()...)
	for _, n := range roots {
		if color[n.ID] == white {
			visit(n.ID)
		}
	}

	for _, e := range back {
		if e.From == e.To {
			g.RemoveEdge(e.From, e.To)
		} else {
			g.ReverseEdge(e.From, e.To)
		}
	}
	return len(back)
}
