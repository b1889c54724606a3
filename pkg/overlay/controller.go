package overlay

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/charmbracelet/log"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/matzehuels/mermedit/pkg/observability"
)

// ErrUnknownNode is returned for pointer events naming a node that has no
// container in the loaded markup.
var ErrUnknownNode = errors.New("no draggable container for node")

const (
	processedAttr = "data-draggable-processed"
	nodeIDAttr    = "data-node-id"
)

// selectors find node containers, most specific first.
var selectors = func() []cascadia.Selector {
	src := []string{
		"[data-node-id]",
		".node",
		".nodeLabel",
		`[class*="node"]`,
		".entity",
		".er",
		`[id*="entity"]`,
		".actor",
		".participant",
		".classGroup",
		`[class*="cluster"]`,
	}
	sels := make([]cascadia.Selector, len(src))
	for i, s := range src {
		sels[i] = cascadia.MustCompile(s)
	}
	return sels
}()

// edgeClasses mark groups that belong to connectors.
var edgeClasses = []string{"edgePath", "edgeLabel", "relation", "edge"}

var shapeSel = cascadia.MustCompile("rect, circle, ellipse, polygon, path")

type container struct {
	id   string
	node *html.Node
}

type dragSession struct {
	id      string
	start   Point
	initial Point
	current Point
}

// Controller decorates rendered SVG and tracks node drags.
type Controller struct {
	root       *html.Node
	containers []container
	offsets    OffsetMap
	dragMode   bool
	drag       *dragSession
	onChange   func([]NodeOffset)
	logger     *log.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithOnChange registers a callback receiving all offsets after each
// committed drag.
func WithOnChange(fn func([]NodeOffset)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New creates a controller with no markup loaded.
func New(opts ...Option) *Controller {
	c := &Controller{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	return c
}

// Load replaces the current markup, decorates its node containers and
// re-applies stored offsets. Offsets of IDs that no longer appear are
// dropped. A drag in progress is abandoned. Markup without recognizable
// nodes is not an error.
func (c *Controller) Load(markup string) error {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return fmt.Errorf("parse markup: %w", err)
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}

	// Markup may come back decorated from an earlier Load; containers are
	// rediscovered through their data-node-id.
	descendants(root, func(n *html.Node) bool {
		removeAttr(n, processedAttr)
		return true
	})

	c.root = root
	c.containers = c.containers[:0]
	c.drag = nil
	c.scan()

	present := make(map[string]bool, len(c.containers))
	for _, ct := range c.containers {
		present[ct.id] = true
	}
	if dropped := c.offsets.Retain(present); dropped > 0 {
		c.logger.Debug("pruned offsets", "dropped", dropped)
	}
	for _, ct := range c.containers {
		if p, ok := c.offsets.Get(ct.id); ok {
			setTranslation(ct.node, p)
		}
		c.applyModeStyle(ct.node)
	}
	return nil
}

func (c *Controller) scan() {
	for _, sel := range selectors {
		for _, match := range cascadia.QueryAll(c.root, sel) {
			g := closestGroup(match)
			if g == nil || c.skip(g) {
				continue
			}
			id := extractID(g)
			if id == "" {
				continue
			}
			setAttr(g, processedAttr, "true")
			setAttr(g, nodeIDAttr, id)
			c.containers = append(c.containers, container{id: id, node: g})
		}
	}
}

// skip reports whether g must not become a container: it already is one,
// lies inside or around one, or belongs to an edge.
func (c *Controller) skip(g *html.Node) bool {
	for n := g; n != nil; n = n.Parent {
		if _, ok := attr(n, processedAttr); ok {
			return true
		}
	}
	wraps := !descendants(g, func(n *html.Node) bool {
		_, ok := attr(n, processedAttr)
		return !ok
	})
	if wraps {
		return true
	}
	cls := classes(g)
	for _, ec := range edgeClasses {
		if slices.Contains(cls, ec) {
			return true
		}
	}
	return false
}

// extractID derives a node ID for a container. It tries, in order: the
// data-node-id attribute, the id attribute, the trimmed texts of <text>
// descendants joined by "-", the first class name, and the position of
// the first descendant carrying coordinates.
func extractID(g *html.Node) string {
	if v, _ := attr(g, nodeIDAttr); v != "" {
		return v
	}
	if v, _ := attr(g, "id"); v != "" {
		return v
	}

	var texts []string
	descendants(g, func(n *html.Node) bool {
		if isElement(n, "text") {
			if s := strings.TrimSpace(textContent(n)); s != "" {
				texts = append(texts, s)
			}
		}
		return true
	})
	if len(texts) > 0 {
		return strings.Join(texts, "-")
	}

	if cls := classes(g); len(cls) > 0 {
		return cls[0]
	}

	var id string
	descendants(g, func(n *html.Node) bool {
		for _, keys := range [][2]string{{"x", "y"}, {"cx", "cy"}} {
			xs, okX := attr(n, keys[0])
			ys, okY := attr(n, keys[1])
			if okX && okY {
				var x, y float64
				fmt.Sscan(xs, &x)
				fmt.Sscan(ys, &y)
				id = fmt.Sprintf("node-%d-%d", int(math.Round(x)), int(math.Round(y)))
				return false
			}
		}
		return true
	})
	return id
}

// IDs returns the node IDs of all containers in discovery order.
func (c *Controller) IDs() []string {
	ids := make([]string, len(c.containers))
	for i, ct := range c.containers {
		ids[i] = ct.id
	}
	return ids
}

func (c *Controller) find(id string) []*html.Node {
	var out []*html.Node
	for _, ct := range c.containers {
		if ct.id == id {
			out = append(out, ct.node)
		}
	}
	return out
}

// DragMode reports whether pointer events move nodes.
func (c *Controller) DragMode() bool { return c.dragMode }

// SetDragMode switches drag mode and restyles all containers. Leaving drag
// mode ends a drag in progress.
func (c *Controller) SetDragMode(on bool) {
	if !on && c.drag != nil {
		c.PointerUp()
	}
	c.dragMode = on
	for _, ct := range c.containers {
		c.applyModeStyle(ct.node)
	}
}

func (c *Controller) applyModeStyle(g *html.Node) {
	shape := cascadia.Query(g, shapeSel)
	if c.dragMode {
		updateStyle(g, "cursor", "move", "opacity", "0.9")
		if shape != nil {
			updateStyle(shape, "stroke", "#2563eb", "stroke-width", "2")
		}
		return
	}
	updateStyle(g, "cursor", "grab", "opacity", "")
	if shape != nil {
		updateStyle(shape, "stroke", "", "stroke-width", "")
	}
}

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool { return c.drag != nil }

// PointerDown starts dragging the container of id at pointer position p.
// Outside drag mode it does nothing and returns false.
func (c *Controller) PointerDown(id string, p Point) (bool, error) {
	if !c.dragMode {
		return false, nil
	}
	nodes := c.find(id)
	if len(nodes) == 0 {
		return false, fmt.Errorf("pointer down on %q: %w", id, ErrUnknownNode)
	}
	initial := translation(nodes[0])
	c.drag = &dragSession{id: id, start: p, initial: initial, current: initial}
	updateStyle(nodes[0], "cursor", "grabbing")
	return true, nil
}

// PointerMove translates the dragged container by the distance the
// pointer travelled since PointerDown.
func (c *Controller) PointerMove(p Point) {
	if c.drag == nil {
		return
	}
	c.drag.current = c.drag.initial.Add(p.Sub(c.drag.start))
	for _, n := range c.find(c.drag.id) {
		setTranslation(n, c.drag.current)
	}
}

// PointerUp ends the drag, records the final translation and notifies the
// change callback. It returns the committed offset.
func (c *Controller) PointerUp() (NodeOffset, bool) {
	if c.drag == nil {
		return NodeOffset{}, false
	}
	d := c.drag
	c.drag = nil

	c.offsets.Set(d.id, d.current)
	cursor := "grab"
	if c.dragMode {
		cursor = "move"
	}
	for _, n := range c.find(d.id) {
		updateStyle(n, "cursor", cursor)
	}

	observability.Sync().OnOffsetCommit(c.offsets.Len())
	if c.onChange != nil {
		c.onChange(c.offsets.Entries())
	}
	return NodeOffset{ID: d.id, Offset: d.current}, true
}

// PointerLeave behaves like PointerUp.
func (c *Controller) PointerLeave() (NodeOffset, bool) { return c.PointerUp() }

// Offsets returns the committed offsets.
func (c *Controller) Offsets() []NodeOffset { return c.offsets.Entries() }

// SetOffsets replaces the committed offsets and applies them to the
// loaded markup.
func (c *Controller) SetOffsets(offsets []NodeOffset) {
	c.offsets.Replace(offsets)
	for _, ct := range c.containers {
		if p, ok := c.offsets.Get(ct.id); ok {
			setTranslation(ct.node, p)
		}
	}
}

// Markup serializes the decorated tree.
func (c *Controller) Markup() (string, error) {
	if c.root == nil {
		return "", nil
	}
	var sb strings.Builder
	for n := c.root.FirstChild; n != nil; n = n.NextSibling {
		if err := html.Render(&sb, n); err != nil {
			return "", fmt.Errorf("render markup: %w", err)
		}
	}
	return sb.String(), nil
}
