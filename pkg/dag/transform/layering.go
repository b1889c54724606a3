package transform

import "github.com/matzehuels/mermedit/pkg/dag"

// AssignLayers assigns every node the length of the longest path reaching
// it from a source, so sources sit in row 0 and every edge points to a
// strictly lower row. Existing rows are overwritten.
//
// The traversal is Kahn's topological sort seeded with the sources in
// insertion order, O(V+E). Nodes on a cycle never reach in-degree zero and
// stay in row 0; run [BreakCycles] first.
func AssignLayers(g *dag.DAG) {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	rows := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		rows[n.ID] = 0
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.Children(curr) {
			if row := rows[curr] + 1; row > rows[child] {
				rows[child] = row
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	g.SetRows(rows)
}
