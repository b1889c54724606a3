package transform

import (
	"testing"

	"github.com/matzehuels/mermedit/pkg/dag"
)

func TestAssignLayers_LongestPath(t *testing.T) {
	g := build([]string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}, {"d", "c"}})

	AssignLayers(g)

	want := map[string]int{"a": 0, "b": 1, "c": 2, "d": 0}
	for id, row := range want {
		n, _ := g.Node(id)
		if n.Row != row {
			t.Errorf("row(%s) = %d, want %d", id, n.Row, row)
		}
	}
}

func TestAssignLayers_OverwritesRows(t *testing.T) {
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "a", Row: 5})
	_ = g.AddNode(dag.Node{ID: "b", Row: 5})
	_ = g.AddEdge(dag.Edge{From: "a", To: "b"})

	AssignLayers(g)

	if a, _ := g.Node("a"); a.Row != 0 {
		t.Errorf("row(a) = %d, want 0", a.Row)
	}
	if b, _ := g.Node("b"); b.Row != 1 {
		t.Errorf("row(b) = %d, want 1", b.Row)
	}
}

func TestSubdivide(t *testing.T) {
	g := build([]string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"a", "d"}})
	AssignLayers(g)

	added := Subdivide(g)

	if added != 2 {
		t.Fatalf("Subdivide() added %d dummies, want 2", added)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	dummies := 0
	for _, n := range g.Nodes() {
		if n.IsDummy() {
			dummies++
			if n.EdgeIndex != 3 {
				t.Errorf("dummy %s EdgeIndex = %d, want 3", n.ID, n.EdgeIndex)
			}
		}
	}
	if dummies != 2 {
		t.Errorf("dummies = %d, want 2", dummies)
	}
	segments := 0
	for _, e := range g.Edges() {
		if e.Index == 3 {
			segments++
		}
	}
	if segments != 3 {
		t.Errorf("segments of edge 3 = %d, want 3", segments)
	}
}

func TestSubdivide_IDCollision(t *testing.T) {
	g := build([]string{"a", "~a>c@1", "c", "x"}, [][2]string{{"a", "x"}, {"x", "c"}, {"a", "c"}})
	g.SetRows(map[string]int{"a": 0, "x": 1, "c": 2, "~a>c@1": 3})

	Subdivide(g)

	if _, ok := g.Node("~a>c@1#1"); !ok {
		t.Errorf("expected suffixed dummy, nodes = %v", dag.NodeIDs(g.Nodes()))
	}
}

func TestPrepare_ProducesValidGraph(t *testing.T) {
	g := build(
		[]string{"a", "b", "c", "d", "e"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}, {"a", "d"}, {"d", "e"}, {"a", "e"}, {"e", "e"}},
	)

	Prepare(g)

	if err := g.Validate(); err != nil {
		t.Errorf("Validate() after Prepare = %v", err)
	}
}
