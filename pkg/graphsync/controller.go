package graphsync

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mermedit/pkg/layout"
	"github.com/matzehuels/mermedit/pkg/notation"
	"github.com/matzehuels/mermedit/pkg/observability"
)

// ErrUnknownNode is returned when a canvas operation names a node that is
// not on the canvas.
var ErrUnknownNode = errors.New("unknown node")

// TextListener receives the text produced by canvas edits.
type TextListener func(text string, revision uint64)

// Controller synchronizes document text with the canvas. The zero value is
// not usable; create controllers with [New].
type Controller struct {
	engine         *layout.Engine
	logger         *log.Logger
	listener       TextListener
	preservePinned bool

	text           string
	revision       uint64
	layoutRevision uint64
	graph          notation.Graph
	nodes          []PositionedNode
	edges          []CanvasEdge
	degraded       bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithEngine sets the layout engine. The default uses layout.DefaultOptions.
func WithEngine(e *layout.Engine) Option {
	return func(c *Controller) { c.engine = e }
}

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithListener registers the receiver of canvas-originated text.
func WithListener(fn TextListener) Option {
	return func(c *Controller) { c.listener = fn }
}

// WithPreservePinned controls whether dragged nodes keep their position
// across a relayout. It is enabled by default.
func WithPreservePinned(preserve bool) Option {
	return func(c *Controller) { c.preservePinned = preserve }
}

// New creates a controller with empty text and an empty canvas.
func New(opts ...Option) *Controller {
	c := &Controller{preservePinned: true}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	if c.engine == nil {
		c.engine = layout.New(layout.DefaultOptions(), layout.WithLogger(c.logger))
	}
	c.graph = notation.Parse("")
	return c
}

// Text returns the current document text.
func (c *Controller) Text() string { return c.text }

// Revision returns the current revision. It starts at zero and grows by
// one with every accepted text or canvas change.
func (c *Controller) Revision() uint64 { return c.revision }

// Graph returns the graph parsed from the current text.
func (c *Controller) Graph() notation.Graph { return c.graph }

// SetText applies a text edit. Text equal to the current text is an echo
// of a canvas edit and is ignored: the returned bool is false and nothing
// is parsed or laid out. Otherwise the revision advances and the canvas is
// rebuilt if the parsed graph differs from the previous one.
func (c *Controller) SetText(ctx context.Context, text string) (Snapshot, bool) {
	if text == c.text {
		observability.Sync().OnEchoSuppressed()
		return c.Snapshot(), false
	}
	c.text = text
	c.revision++

	start := time.Now()
	observability.Pipeline().OnParseStart(ctx)
	g := notation.Parse(text)
	observability.Pipeline().OnParseComplete(ctx, g.Kind.String(), len(g.Nodes), time.Since(start))

	relayout := !g.Equal(c.graph)
	c.graph = g
	if relayout {
		c.rebuild(ctx)
	}

	c.logger.Debug("text change", "revision", c.revision, "kind", g.Kind, "nodes", len(g.Nodes), "relayout", relayout)
	observability.Sync().OnTextChange("text", c.revision, relayout)
	return c.Snapshot(), true
}

// rebuild replaces the canvas with a fresh layout of c.graph.
func (c *Controller) rebuild(ctx context.Context) {
	kept := make(map[string]Position)
	if c.preservePinned {
		for _, n := range c.nodes {
			if n.Pinned {
				kept[n.ID] = n.Position
			}
		}
	}

	in := layout.Input{
		Nodes: make([]layout.NodeBox, len(c.graph.Nodes)),
		Edges: make([]layout.EdgeRef, len(c.graph.Edges)),
	}
	for i, n := range c.graph.Nodes {
		in.Nodes[i] = layout.NodeBox{ID: n.ID}
	}
	for i, e := range c.graph.Edges {
		in.Edges[i] = layout.EdgeRef{Source: e.Source, Target: e.Target}
	}

	engine := c.engine
	if c.graph.Direction != "" {
		engine = engine.WithDirection(layout.ParseDirection(c.graph.Direction))
	}
	res := layout.Place(ctx, engine, in)

	nodes := make([]PositionedNode, len(c.graph.Nodes))
	for i, n := range c.graph.Nodes {
		p := res.Nodes[i]
		tl := p.TopLeft()
		node := PositionedNode{
			ID:         n.ID,
			Label:      n.Label,
			Kind:       n.Kind,
			Attributes: slices.Clone(n.Attributes),
			Position:   Position{X: max(tl.X, 0), Y: max(tl.Y, 0)},
			Width:      p.Width,
			Height:     p.Height,
			Style:      DefaultNodeStyle(n.Kind),
		}
		if pos, ok := kept[n.ID]; ok {
			node.Position = pos
			node.Pinned = true
		}
		nodes[i] = node
	}

	ids := notation.AssignEdgeIDs(c.graph.Edges)
	edges := make([]CanvasEdge, len(c.graph.Edges))
	for i, e := range c.graph.Edges {
		edges[i] = CanvasEdge{
			ID:     ids[i],
			Source: e.Source,
			Target: e.Target,
			Label:  e.Label,
			Type:   EdgeType,
			Style:  DefaultEdgeStyle(),
		}
	}

	c.nodes, c.edges = nodes, edges
	c.degraded = res.Degraded
	c.layoutRevision = c.revision
}

// ApplyNodeChanges applies canvas node edits. Position changes move and
// pin the node; removals also drop the incident edges. Unless every change
// is a selection, the text is regenerated from the canvas. Changes naming
// unknown nodes are ignored.
func (c *Controller) ApplyNodeChanges(changes []NodeChange) Snapshot {
	structural := false
	for _, ch := range changes {
		i := c.nodeIndex(ch.ID)
		if i < 0 {
			continue
		}
		switch ch.Type {
		case ChangePosition:
			if ch.Position == nil {
				continue
			}
			c.nodes[i].Position = *ch.Position
			c.nodes[i].Pinned = true
			structural = true
		case ChangeRemove:
			c.nodes = slices.Delete(c.nodes, i, i+1)
			c.edges = slices.DeleteFunc(c.edges, func(e CanvasEdge) bool {
				return e.Source == ch.ID || e.Target == ch.ID
			})
			structural = true
		case ChangeSelect:
			c.nodes[i].Selected = ch.Selected
		}
	}
	if structural {
		c.commit()
	}
	return c.Snapshot()
}

// ApplyEdgeChanges applies canvas edge edits. Removals regenerate the
// text; selections do not.
func (c *Controller) ApplyEdgeChanges(changes []EdgeChange) Snapshot {
	structural := false
	for _, ch := range changes {
		i := slices.IndexFunc(c.edges, func(e CanvasEdge) bool { return e.ID == ch.ID })
		if i < 0 {
			continue
		}
		switch ch.Type {
		case ChangeRemove:
			c.edges = slices.Delete(c.edges, i, i+1)
			structural = true
		case ChangeSelect:
			c.edges[i].Selected = ch.Selected
		}
	}
	if structural {
		c.commit()
	}
	return c.Snapshot()
}

// Connect adds an edge between two canvas nodes and regenerates the text.
// Connecting an already connected pair is a no-op.
func (c *Controller) Connect(source, target string) (Snapshot, error) {
	for _, id := range []string{source, target} {
		if c.nodeIndex(id) < 0 {
			return c.Snapshot(), fmt.Errorf("connect %s -> %s: %w: %q", source, target, ErrUnknownNode, id)
		}
	}
	if slices.ContainsFunc(c.edges, func(e CanvasEdge) bool { return e.Source == source && e.Target == target }) {
		return c.Snapshot(), nil
	}

	ids := make(notation.EdgeIDs, len(c.edges)+1)
	for _, e := range c.edges {
		ids.Reserve(e.ID)
	}
	c.edges = append(c.edges, CanvasEdge{
		ID:     ids.Next(source, target),
		Source: source,
		Target: target,
		Type:   EdgeType,
		Style:  DefaultEdgeStyle(),
	})
	c.commit()
	return c.Snapshot(), nil
}

// MoveNode places a node at pos and pins it.
func (c *Controller) MoveNode(id string, pos Position) (Snapshot, error) {
	if c.nodeIndex(id) < 0 {
		return c.Snapshot(), fmt.Errorf("move %s: %w", id, ErrUnknownNode)
	}
	return c.ApplyNodeChanges([]NodeChange{{Type: ChangePosition, ID: id, Position: &pos}}), nil
}

// commit regenerates the text from the canvas. An empty canvas leaves the
// text untouched, and so does output identical to the current text.
func (c *Controller) commit() {
	if len(c.nodes) == 0 {
		return
	}
	nodes := make([]notation.Node, len(c.nodes))
	for i, n := range c.nodes {
		nodes[i] = notation.Node{ID: n.ID, Label: n.Label}
	}
	edges := make([]notation.Edge, len(c.edges))
	for i, e := range c.edges {
		edges[i] = notation.Edge{Source: e.Source, Target: e.Target, Label: e.Label}
	}

	text := notation.Generate(nodes, edges)
	if text == c.text {
		return
	}
	c.text = text
	c.revision++
	c.graph = notation.Parse(text)

	observability.Sync().OnTextChange("canvas", c.revision, false)
	if c.listener != nil {
		c.listener(text, c.revision)
	}
}

func (c *Controller) nodeIndex(id string) int {
	return slices.IndexFunc(c.nodes, func(n PositionedNode) bool { return n.ID == id })
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	nodes := make([]PositionedNode, len(c.nodes))
	for i, n := range c.nodes {
		n.Attributes = slices.Clone(n.Attributes)
		nodes[i] = n
	}
	return Snapshot{
		Text:           c.text,
		Revision:       c.revision,
		Kind:           c.graph.Kind,
		Nodes:          nodes,
		Edges:          append([]CanvasEdge{}, c.edges...),
		LayoutRevision: c.layoutRevision,
		Degraded:       c.degraded,
	}
}
