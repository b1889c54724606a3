package notation

import "slices"

// NodeKind tags nodes that carry diagram-specific meaning.
type NodeKind string

const (
	// NodeKindPlain is the kind of flowchart nodes.
	NodeKindPlain NodeKind = ""
	// NodeKindEntity marks entities of an entity-relationship diagram.
	NodeKindEntity NodeKind = "entity"
)

// Node is a vertex of the graph model. ID is the join key across parse,
// layout and render cycles: two nodes are the same entity iff their IDs
// match.
type Node struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Kind  NodeKind `json:"kind,omitempty"`

	// Attributes holds the raw attribute lines of an entity block
	// (e.g. "int id"). They are informational and never generated.
	Attributes []string `json:"attributes,omitempty"`
}

// Edge is a directed connection between two nodes, referenced by ID.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// Graph is the result of parsing a document. Nodes appear in first-mention
// order and edges in the order they were written.
type Graph struct {
	Kind      DiagramKind `json:"kind"`
	Direction string      `json:"direction,omitempty"`
	Nodes     []Node      `json:"nodes"`
	Edges     []Edge      `json:"edges"`
}

// Node returns the node with the given ID.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Empty reports whether the graph has no nodes.
func (g Graph) Empty() bool { return len(g.Nodes) == 0 }

// Equal reports whether both graphs have the same kind and identical node
// and edge sequences (IDs, labels, kinds and edge labels).
func (g Graph) Equal(other Graph) bool {
	if g.Kind != other.Kind {
		return false
	}
	return slices.EqualFunc(g.Nodes, other.Nodes, func(a, b Node) bool {
		return a.ID == b.ID && a.Label == b.Label && a.Kind == b.Kind
	}) && slices.Equal(g.Edges, other.Edges)
}

// SameElements reports whether both graphs contain the same nodes (by ID
// and label) and the same edges, ignoring diagram and node kinds. This is
// the equivalence preserved by a Parse/Generate round trip.
func (g Graph) SameElements(other Graph) bool {
	return slices.EqualFunc(g.Nodes, other.Nodes, func(a, b Node) bool {
		return a.ID == b.ID && a.Label == b.Label
	}) && slices.Equal(g.Edges, other.Edges)
}

// builder accumulates nodes and edges while enforcing the identity and
// label rules of the parser.
type builder struct {
	kind  NodeKind
	nodes []Node
	index map[string]int
	edges []Edge
}

func newBuilder(kind NodeKind) *builder {
	return &builder{kind: kind, index: make(map[string]int)}
}

// ensure creates the node with its ID as label unless it already exists.
func (b *builder) ensure(id string) *Node {
	if i, ok := b.index[id]; ok {
		return &b.nodes[i]
	}
	b.index[id] = len(b.nodes)
	b.nodes = append(b.nodes, Node{ID: id, Label: id, Kind: b.kind})
	return &b.nodes[len(b.nodes)-1]
}

// declare sets an explicit label, creating the node if needed. An empty
// label leaves the current label untouched.
func (b *builder) declare(id, label string) *Node {
	n := b.ensure(id)
	if label != "" {
		n.Label = label
	}
	return n
}

func (b *builder) connect(source, target, label string) {
	b.ensure(source)
	b.ensure(target)
	b.edges = append(b.edges, Edge{Source: source, Target: target, Label: label})
}

func (b *builder) graph(h header) Graph {
	g := Graph{Kind: h.kind, Direction: h.direction, Nodes: b.nodes, Edges: b.edges}
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	if g.Edges == nil {
		g.Edges = []Edge{}
	}
	return g
}
