package layout

import (
	"context"
	"maps"
	"slices"

	"github.com/matzehuels/mermedit/pkg/dag"
)

// Orderer decides the left-to-right order of the nodes of every rank.
type Orderer interface {
	OrderRows(ctx context.Context, g *dag.DAG) (map[int][]string, error)
}

// Barycentric is the classic Sugiyama heuristic. Each pass sorts every rank
// by the mean position of its neighbours in the rank above (down sweep),
// then in the rank below (up sweep), and finally swaps adjacent nodes while
// that removes crossings. The ordering with the fewest crossings seen is
// returned; the initial insertion order counts as a candidate, so ties
// favour input order.
type Barycentric struct {
	Passes int
}

// OrderRows implements [Orderer]. On cancellation it returns the best
// ordering found so far together with the context error.
func (b Barycentric) OrderRows(ctx context.Context, g *dag.DAG) (map[int][]string, error) {
	orders := dag.RowOrders(g)
	best := cloneOrders(orders)
	bestCrossings := dag.CountCrossings(g, best)
	rows := g.RowIDs()

	for pass := 0; pass < b.Passes && bestCrossings > 0; pass++ {
		if err := ctx.Err(); err != nil {
			return best, err
		}
		for i := 1; i < len(rows); i++ {
			above := dag.PosMap(orders[rows[i-1]])
			orders[rows[i]] = sortByBarycenter(g, orders[rows[i]], above, true)
		}
		for i := len(rows) - 2; i >= 0; i-- {
			below := dag.PosMap(orders[rows[i+1]])
			orders[rows[i]] = sortByBarycenter(g, orders[rows[i]], below, false)
		}
		transpose(g, orders, rows)

		if c := dag.CountCrossings(g, orders); c < bestCrossings {
			best, bestCrossings = cloneOrders(orders), c
		}
	}
	return best, nil
}

// sortByBarycenter orders ids by the mean position of their neighbours in
// the adjacent rank. Nodes without neighbours there keep their current
// index as sort key; the sort is stable.
func sortByBarycenter(g *dag.DAG, ids []string, adjPos map[string]int, useParents bool) []string {
	type keyed struct {
		id  string
		key float64
	}
	items := make([]keyed, len(ids))
	for i, id := range ids {
		nbrs := g.Children(id)
		if useParents {
			nbrs = g.Parents(id)
		}
		sum, n := 0, 0
		for _, nb := range nbrs {
			if p, ok := adjPos[nb]; ok {
				sum += p
				n++
			}
		}
		key := float64(i)
		if n > 0 {
			key = float64(sum) / float64(n)
		}
		items[i] = keyed{id, key}
	}
	slices.SortStableFunc(items, func(a, b keyed) int {
		switch {
		case a.key < b.key:
			return -1
		case a.key > b.key:
			return 1
		}
		return 0
	})
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.id
	}
	return out
}

// transpose swaps adjacent nodes of each rank while a swap strictly lowers
// the crossings with both neighbouring ranks.
func transpose(g *dag.DAG, orders map[int][]string, rows []int) {
	for improved, rounds := true, 0; improved && rounds < 8; rounds++ {
		improved = false
		for _, r := range rows {
			row := orders[r]
			above := dag.PosMap(orders[r-1])
			below := dag.PosMap(orders[r+1])
			for i := 0; i+1 < len(row); i++ {
				v, w := row[i], row[i+1]
				current := dag.CountPairCrossings(g, v, w, above, true) + dag.CountPairCrossings(g, v, w, below, false)
				swapped := dag.CountPairCrossings(g, w, v, above, true) + dag.CountPairCrossings(g, w, v, below, false)
				if swapped < current {
					row[i], row[i+1] = w, v
					improved = true
				}
			}
		}
	}
}

func cloneOrders(orders map[int][]string) map[int][]string {
	out := make(map[int][]string, len(orders))
	for _, r := range slices.Sorted(maps.Keys(orders)) {
		out[r] = slices.Clone(orders[r])
	}
	return out
}
