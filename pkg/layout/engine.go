package layout

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mermedit/pkg/dag"
	"github.com/matzehuels/mermedit/pkg/dag/transform"
	"github.com/matzehuels/mermedit/pkg/observability"
)

// Engine computes layered layouts. It holds no per-layout state and may be
// shared between goroutines.
type Engine struct {
	opts    Options
	orderer Orderer
	logger  *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithOrderer replaces the default [Barycentric] orderer.
func WithOrderer(o Orderer) Option {
	return func(e *Engine) { e.orderer = o }
}

// WithLogger sets the logger used for debug and degradation messages.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine. Zero sizes and limits in opts take their defaults.
func New(opts Options, options ...Option) *Engine {
	opts = opts.withDefaults()
	e := &Engine{opts: opts, orderer: Barycentric{Passes: opts.Sweeps}}
	for _, o := range options {
		o(e)
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	return e
}

// Options returns the effective options of the engine.
func (e *Engine) Options() Options { return e.opts }

// WithDirection returns an engine that differs from e only in direction.
// It returns e itself when the direction already matches.
func (e *Engine) WithDirection(d Direction) *Engine {
	if d == "" || d == e.opts.Direction {
		return e
	}
	c := *e
	c.opts.Direction = d
	return &c
}

// Layout places every node of in. It fails with [ErrTooLarge],
// [ErrDuplicateNode] or [ErrUnknownEndpoint] for unusable input and with
// the context error on cancellation.
func (e *Engine) Layout(ctx context.Context, in Input) (res Result, err error) {
	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, "layered", len(in.Nodes))
	defer func() {
		observability.Pipeline().OnLayoutComplete(ctx, "layered", time.Since(start), err)
	}()

	if len(in.Nodes) > e.opts.MaxNodes {
		return Result{}, fmt.Errorf("%w: %d nodes, limit is %d", ErrTooLarge, len(in.Nodes), e.opts.MaxNodes)
	}

	g, err := buildDAG(in)
	if err != nil {
		return Result{}, err
	}
	reversed := transform.Prepare(g)

	orders, err := e.orderer.OrderRows(ctx, g)
	if err != nil {
		return Result{}, fmt.Errorf("order ranks: %w", err)
	}
	for r, ids := range orders {
		g.SetRowOrder(r, ids)
	}

	res = e.assign(g, in)
	res.Reversed = reversed
	res.Crossings = dag.CountCrossings(g, dag.RowOrders(g))

	e.logger.Debug("layout complete",
		"nodes", len(in.Nodes),
		"edges", len(in.Edges),
		"ranks", res.Ranks,
		"crossings", res.Crossings,
		"reversed", reversed,
		"elapsed", time.Since(start))
	return res, nil
}

func buildDAG(in Input) (*dag.DAG, error) {
	g := dag.New()
	for _, n := range in.Nodes {
		if err := g.AddNode(dag.Node{ID: n.ID}); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateNode, n.ID)
		}
	}
	for i, e := range in.Edges {
		if err := g.AddEdge(dag.Edge{From: e.Source, To: e.Target, Index: i}); err != nil {
			return nil, fmt.Errorf("%w: %s -> %s", ErrUnknownEndpoint, e.Source, e.Target)
		}
	}
	return g, nil
}

// assign computes coordinates for a ranked and ordered graph. Positions
// are first computed on two abstract axes: "along" runs inside a rank,
// "across" runs from rank to rank. They map to x/y according to the
// direction.
func (e *Engine) assign(g *dag.DAG, in Input) Result {
	o := e.opts
	horizontal := o.Direction.horizontal()

	sizes := make(map[string][2]float64, len(in.Nodes))
	for _, n := range in.Nodes {
		w, h := o.size(n)
		sizes[n.ID] = [2]float64{w, h}
	}
	// along and across extents of a node; dummies take no space.
	extent := func(n *dag.Node) (along, across float64) {
		s, ok := sizes[n.ID]
		if !ok || n.IsDummy() {
			return 0, 0
		}
		if horizontal {
			return s[1], s[0]
		}
		return s[0], s[1]
	}
	minThickness := o.NodeHeight
	if horizontal {
		minThickness = o.NodeWidth
	}

	rows := g.RowIDs()
	alongPos := make(map[string]float64, g.NodeCount())
	acrossPos := make(map[int]float64, len(rows))
	rankLen := make(map[int]float64, len(rows))

	var maxLen, across float64
	for i, r := range rows {
		thickness := minThickness
		cursor := 0.0
		for _, n := range g.NodesInRow(r) {
			a, c := extent(n)
			thickness = max(thickness, c)
			alongPos[n.ID] = cursor + a/2
			cursor += a + o.NodeSep
		}
		if nodes := len(g.NodesInRow(r)); nodes > 0 {
			cursor -= o.NodeSep
		}
		rankLen[r] = cursor
		maxLen = max(maxLen, cursor)

		if i > 0 {
			across += o.RankSep
		}
		acrossPos[r] = across + thickness/2
		across += thickness
	}

	point := func(n *dag.Node) Point {
		a := alongPos[n.ID] + (maxLen-rankLen[n.Row])/2
		c := acrossPos[n.Row]
		if o.Direction == BottomTop || o.Direction == RightLeft {
			c = across - c
		}
		if horizontal {
			return Point{X: c, Y: a}
		}
		return Point{X: a, Y: c}
	}

	res := Result{Ranks: len(rows)}
	if horizontal {
		res.Width, res.Height = across, maxLen
	} else {
		res.Width, res.Height = maxLen, across
	}

	res.Nodes = make([]Placement, 0, len(in.Nodes))
	for _, b := range in.Nodes {
		n, _ := g.Node(b.ID)
		s := sizes[b.ID]
		res.Nodes = append(res.Nodes, Placement{
			ID:     b.ID,
			Center: point(n),
			Width:  s[0],
			Height: s[1],
			Rank:   n.Row,
			Order:  slices.Index(dag.NodeIDs(g.NodesInRow(n.Row)), n.ID),
		})
	}

	dummies := make(map[int][]*dag.Node)
	for _, n := range g.Nodes() {
		if n.IsDummy() {
			dummies[n.EdgeIndex] = append(dummies[n.EdgeIndex], n)
		}
	}
	res.Edges = make([]Route, 0, len(in.Edges))
	for i, ed := range in.Edges {
		src, _ := g.Node(ed.Source)
		dst, _ := g.Node(ed.Target)
		chain := dummies[i]
		if src.Row <= dst.Row {
			slices.SortFunc(chain, func(a, b *dag.Node) int { return cmp.Compare(a.Row, b.Row) })
		} else {
			slices.SortFunc(chain, func(a, b *dag.Node) int { return cmp.Compare(b.Row, a.Row) })
		}
		points := make([]Point, 0, len(chain)+2)
		points = append(points, point(src))
		for _, d := range chain {
			points = append(points, point(d))
		}
		points = append(points, point(dst))
		res.Edges = append(res.Edges, Route{Source: ed.Source, Target: ed.Target, Points: points})
	}
	return res
}
