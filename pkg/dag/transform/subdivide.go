package transform

import (
	"fmt"

	"github.com/matzehuels/mermedit/pkg/dag"
)

// Subdivide replaces every edge spanning more than one row with a chain of
// [dag.NodeKindDummy] nodes, one per intermediate row, so that all edges
// connect consecutive rows. Each dummy records the index of the edge it
// belongs to, and every segment keeps that index, which lets the layout
// engine route the original edge through the dummies' coordinates.
//
// Dummy IDs have the form "~<source>><target>@<row>", with a numeric suffix
// if that ID is already taken. It returns the number of dummies added.
func Subdivide(g *dag.DAG) int {
	gen := newIDGen(g.Nodes())
	added := 0

	for _, e := range g.Edges() {
		src, srcOK := g.Node(e.From)
		dst, dstOK := g.Node(e.To)
		if !srcOK || !dstOK || dst.Row <= src.Row+1 {
			continue
		}

		g.RemoveEdge(e.From, e.To)
		prev := src.ID
		for row := src.Row + 1; row < dst.Row; row++ {
			id := gen.next(fmt.Sprintf("~%s>%s@%d", e.From, e.To, row))
			if err := g.AddNode(dag.Node{ID: id, Row: row, Kind: dag.NodeKindDummy, EdgeIndex: e.Index}); err != nil {
				panic(err)
			}
			if err := g.AddEdge(dag.Edge{From: prev, To: id, Index: e.Index}); err != nil {
				panic(err)
			}
			prev = id
			added++
		}
		if err := g.AddEdge(dag.Edge{From: prev, To: dst.ID, Index: e.Index}); err != nil {
			panic(err)
		}
	}
	return added
}

// Prepare turns an arbitrary directed graph into a properly layered one:
// cycles broken, rows assigned and long edges subdivided. It returns the
// number of edges reversed or removed to break cycles.
func Prepare(g *dag.DAG) int {
	changed := BreakCycles(g)
	AssignLayers(g)
	Subdivide(g)
	return changed
}

type idGen struct {
	used map[string]struct{}
}

func newIDGen(nodes []*dag.Node) *idGen {
	m := make(map[string]struct{}, len(nodes)*2)
	for _, n := range nodes {
		m[n.ID] = struct{}{}
	}
	return &idGen{used: m}
}

func (gen *idGen) next(base string) string {
	id := base
	for i := 1; ; i++ {
		if _, exists := gen.used[id]; !exists {
			gen.used[id] = struct{}{}
			return id
		}
		id = fmt.Sprintf("%s#%d", base, i)
	}
}
