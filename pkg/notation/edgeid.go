package notation

import "strconv"

// EdgeIDs issues edge identifiers of the form "e<source>-<target>". An
// identifier already issued gets a numeric suffix ("-1", "-2", ...) until
// it is unused, so IDs stay unique even when node IDs contain '-'.
//
// The zero value is not usable; create one with make.
type EdgeIDs map[string]bool

// Next returns a fresh identifier for an edge from source to target.
func (ids EdgeIDs) Next(source, target string) string {
	base := "e" + source + "-" + target
	id := base
	for n := 1; ids[id]; n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	ids[id] = true
	return id
}

// Reserve marks id as issued.
func (ids EdgeIDs) Reserve(id string) { ids[id] = true }

// AssignEdgeIDs returns one unique identifier per edge, in order.
func AssignEdgeIDs(edges []Edge) []string {
	ids := make(EdgeIDs, len(edges))
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = ids.Next(e.Source, e.Target)
	}
	return out
}
