package overlay

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const graphvizSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 200">` +
	`<g id="graph0" class="graph">` +
	`<g id="A" class="node"><title>A</title><polygon points="0,0 10,0 10,10"></polygon><text x="10" y="20">Start</text></g>` +
	`<g id="B" class="node"><ellipse cx="5" cy="5"></ellipse><text>End</text></g>` +
	`<g id="eA-B" class="edge"><path d="M0,0L1,1"></path></g>` +
	`</g></svg>`

const mermaidSVG = `<svg xmlns="http://www.w3.org/2000/svg">` +
	`<g class="root"><g class="nodes">` +
	`<g class="node default" id="flowchart-A-0" transform="translate(100, 50)"><rect></rect>` +
	`<g class="label"><foreignObject><div><span class="nodeLabel">Start</span></div></foreignObject></g></g>` +
	`</g>` +
	`<g class="edgeLabels"><g class="edgeLabel"><g class="label"><text>yes</text></g></g></g>` +
	`</g></svg>`

func load(t *testing.T, markup string, opts ...Option) *Controller {
	t.Helper()
	c := New(opts...)
	if err := c.Load(markup); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return c
}

func markup(t *testing.T, c *Controller) string {
	t.Helper()
	s, err := c.Markup()
	if err != nil {
		t.Fatalf("Markup() error = %v", err)
	}
	return s
}

func TestLoad_GraphvizNodes(t *testing.T) {
	c := load(t, graphvizSVG)
	if got, want := c.IDs(), []string{"A", "B"}; !slices.Equal(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
	out := markup(t, c)
	if !strings.Contains(out, `data-draggable-processed="true"`) || !strings.Contains(out, `data-node-id="A"`) {
		t.Errorf("Markup() not decorated:\n%s", out)
	}
	if strings.Contains(out, `data-node-id="eA-B"`) {
		t.Error("edge group was decorated")
	}
}

func TestLoad_MermaidNodesSkipLabelsAndWrappers(t *testing.T) {
	c := load(t, mermaidSVG)
	if got, want := c.IDs(), []string{"flowchart-A-0"}; !slices.Equal(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
}

func TestLoad_NoMatches(t *testing.T) {
	for _, m := range []string{"", `<svg><circle r="1"></circle></svg>`, "not svg at all"} {
		c := load(t, m)
		if len(c.IDs()) != 0 {
			t.Errorf("Load(%q) found containers %v", m, c.IDs())
		}
	}
}

func TestLoad_DecoratedMarkupRoundTrip(t *testing.T) {
	c := load(t, graphvizSVG)
	again := load(t, markup(t, c))
	if got := again.IDs(); !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("IDs() after reload = %v", got)
	}
}

func TestDrag_TranslatesAndCommits(t *testing.T) {
	var notified []NodeOffset
	c := load(t, mermaidSVG, WithOnChange(func(o []NodeOffset) { notified = o }))
	c.SetDragMode(true)

	started, err := c.PointerDown("flowchart-A-0", Point{10, 10})
	if err != nil || !started {
		t.Fatalf("PointerDown() = %v, %v", started, err)
	}
	c.PointerMove(Point{20, 15})
	c.PointerMove(Point{30, 40})
	if !strings.Contains(markup(t, c), `transform="translate(120, 80)"`) {
		t.Errorf("container not moved:\n%s", markup(t, c))
	}

	off, ok := c.PointerUp()
	if !ok || off != (NodeOffset{ID: "flowchart-A-0", Offset: Point{120, 80}}) {
		t.Errorf("PointerUp() = %v, %v", off, ok)
	}
	if len(notified) != 1 || notified[0] != off {
		t.Errorf("OnChange got %v", notified)
	}
	if c.Dragging() {
		t.Error("Dragging() after PointerUp")
	}
}

func TestDrag_OffsetSurvivesReload(t *testing.T) {
	c := load(t, graphvizSVG)
	c.SetDragMode(true)
	_ = c.Handle(
		PointerEvent{Type: PointerDownEvent, ID: "B", X: 0, Y: 0},
		PointerEvent{Type: PointerMoveEvent, X: 15, Y: -5},
		PointerEvent{Type: PointerLeaveEvent},
	)

	if err := c.Load(graphvizSVG); err != nil {
		t.Fatal(err)
	}
	out := markup(t, c)
	if !strings.Contains(out, `transform="translate(15, -5)"`) {
		t.Errorf("offset not re-applied after reload:\n%s", out)
	}
	if got := c.Offsets(); len(got) != 1 || got[0].ID != "B" {
		t.Errorf("Offsets() = %v", got)
	}
}

func TestLoad_PrunesMissingIDs(t *testing.T) {
	c := load(t, graphvizSVG)
	c.SetOffsets([]NodeOffset{{ID: "A", Offset: Point{1, 1}}, {ID: "gone", Offset: Point{2, 2}}})
	if err := c.Load(graphvizSVG); err != nil {
		t.Fatal(err)
	}
	if got := c.Offsets(); len(got) != 1 || got[0].ID != "A" {
		t.Errorf("Offsets() = %v, want only A", got)
	}
}

func TestPointerDown_RequiresDragMode(t *testing.T) {
	c := load(t, graphvizSVG)
	started, err := c.PointerDown("A", Point{})
	if started || err != nil {
		t.Errorf("PointerDown() outside drag mode = %v, %v", started, err)
	}
	if _, ok := c.PointerUp(); ok {
		t.Error("PointerUp() without drag committed")
	}

	c.SetDragMode(true)
	if _, err := c.PointerDown("missing", Point{}); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("PointerDown(missing) error = %v, want ErrUnknownNode", err)
	}
}

func TestSetDragMode_Restyles(t *testing.T) {
	c := load(t, graphvizSVG)
	c.SetDragMode(true)
	out := markup(t, c)
	if !strings.Contains(out, `style="cursor: move; opacity: 0.9"`) {
		t.Errorf("drag mode container style missing:\n%s", out)
	}
	if !strings.Contains(out, `stroke: #2563eb; stroke-width: 2`) {
		t.Errorf("drag mode shape style missing:\n%s", out)
	}

	c.SetDragMode(false)
	out = markup(t, c)
	if strings.Contains(out, "opacity") || strings.Contains(out, "#2563eb") {
		t.Errorf("drag mode styles not removed:\n%s", out)
	}
	if !strings.Contains(out, `style="cursor: grab"`) {
		t.Errorf("pan mode cursor missing:\n%s", out)
	}
}

func TestSetDragMode_OffEndsDrag(t *testing.T) {
	c := load(t, graphvizSVG)
	c.SetDragMode(true)
	_, _ = c.PointerDown("A", Point{})
	c.PointerMove(Point{5, 5})
	c.SetDragMode(false)

	if c.Dragging() {
		t.Error("drag still active")
	}
	if p, ok := c.offsets.Get("A"); !ok || p != (Point{5, 5}) {
		t.Errorf("offset = %v, %v", p, ok)
	}
}

func TestHandle_UnknownEvent(t *testing.T) {
	c := load(t, graphvizSVG)
	if err := c.Handle(PointerEvent{Type: "wheel"}); err == nil {
		t.Error("Handle(wheel) = nil error")
	}
}

func fragment(t *testing.T, s string) *html.Node {
	t.Helper()
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader("<svg>"+s+"</svg>"), body)
	if err != nil {
		t.Fatal(err)
	}
	return nodes[0].FirstChild
}

func TestExtractID(t *testing.T) {
	tests := []struct {
		name, svg, want string
	}{
		{"data attribute", `<g data-node-id="x" id="y"></g>`, "x"},
		{"id", `<g id="y" class="c"></g>`, "y"},
		{"texts", `<g class="c"><text> CUSTOMER </text><text></text><text>int id</text></g>`, "CUSTOMER-int id"},
		{"class", `<g class="actor top"><rect></rect></g>`, "actor"},
		{"position", `<g><rect x="10.4" y="20.6"></rect></g>`, "node-10-21"},
		{"circle", `<g><circle cx="3" cy="4"></circle></g>`, "node-3-4"},
		{"nothing", `<g></g>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractID(fragment(t, tt.svg)); got != tt.want {
				t.Errorf("extractID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetTranslation_KeepsOtherTransforms(t *testing.T) {
	g := fragment(t, `<g transform="translate(4 4) rotate(45)"></g>`)
	if p := translation(g); p != (Point{4, 4}) {
		t.Errorf("translation() = %v, want {4 4}", p)
	}
	setTranslation(g, Point{X: 10, Y: -2.5})
	if v, _ := attr(g, "transform"); v != "translate(10, -2.5) rotate(45)" {
		t.Errorf("transform = %q", v)
	}

	plain := fragment(t, `<g></g>`)
	setTranslation(plain, Point{X: 1, Y: 2})
	if v, _ := attr(plain, "transform"); v != "translate(1, 2)" {
		t.Errorf("transform = %q", v)
	}
}

func TestStyle(t *testing.T) {
	st := parseStyle("fill: red; cursor:move;;")
	st = st.set("cursor", "grab").set("fill", "").set("opacity", "1")
	if got, want := st.String(), "cursor: grab; opacity: 1"; got != want {
		t.Errorf("style = %q, want %q", got, want)
	}
}
