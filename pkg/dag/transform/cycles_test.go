package transform

import (
	"testing"

	"github.com/matzehuels/mermedit/pkg/dag"
)

func build(ids []string, edges [][2]string) *dag.DAG {
	g := dag.New()
	for _, id := range ids {
		_ = g.AddNode(dag.Node{ID: id})
	}
	for i, e := range edges {
		_ = g.AddEdge(dag.Edge{From: e[0], To: e[1], Index: i})
	}
	return g
}

func TestBreakCycles(t *testing.T) {
	tests := []struct {
		name      string
		ids       []string
		edges     [][2]string
		changed   int
		edgeCount int
	}{
		{"no cycles", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}}, 0, 2},
		{"two-cycle", []string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}}, 1, 2},
		{"triangle", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}}, 1, 3},
		{"two cycles", []string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"b", "a"}, {"c", "d"}, {"d", "c"}}, 2, 4},
		{"self loop", []string{"a"}, [][2]string{{"a", "a"}}, 1, 0},
		{"diamond", []string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}}, 0, 4},
		{"empty", nil, nil, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(tt.ids, tt.edges)

			if got := BreakCycles(g); got != tt.changed {
				t.Errorf("BreakCycles() = %d, want %d", got, tt.changed)
			}
			if g.EdgeCount() != tt.edgeCount {
				t.Errorf("EdgeCount() = %d, want %d", g.EdgeCount(), tt.edgeCount)
			}
			if g.HasCycle() {
				t.Error("graph still has a cycle")
			}
		})
	}
}

func TestBreakCycles_KeepsEdgeIndex(t *testing.T) {
	g := build([]string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "b"}})

	BreakCycles(g)

	found := false
	for _, e := range g.Edges() {
		if e.Index == 3 {
			found = true
			if e.From != "b" || e.To != "d" {
				t.Errorf("reversed edge = %s->%s, want b->d", e.From, e.To)
			}
		}
	}
	if !found {
		t.Error("edge with index 3 disappeared")
	}
}
