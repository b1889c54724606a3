package layout

import (
	"context"
	"time"

	"github.com/matzehuels/mermedit/pkg/observability"
)

// Fallback places the i-th node with its top-left corner at
// (i*FallbackStepX, i*FallbackStepY), edges as straight segments. It never
// fails and is used when the layered layout cannot run.
func Fallback(in Input, opts Options) Result {
	opts = opts.withDefaults()
	res := Result{Degraded: true, Ranks: len(in.Nodes)}
	res.Nodes = make([]Placement, 0, len(in.Nodes))

	centers := make(map[string]Point, len(in.Nodes))
	for i, b := range in.Nodes {
		w, h := opts.size(b)
		c := Point{X: float64(i)*FallbackStepX + w/2, Y: float64(i)*FallbackStepY + h/2}
		if _, dup := centers[b.ID]; !dup {
			centers[b.ID] = c
		}
		res.Nodes = append(res.Nodes, Placement{ID: b.ID, Center: c, Width: w, Height: h, Rank: i})
		res.Width = max(res.Width, c.X+w/2)
		res.Height = max(res.Height, c.Y+h/2)
	}

	res.Edges = make([]Route, 0, len(in.Edges))
	for _, e := range in.Edges {
		r := Route{Source: e.Source, Target: e.Target}
		src, okS := centers[e.Source]
		dst, okD := centers[e.Target]
		if okS && okD {
			r.Points = []Point{src, dst}
		}
		res.Edges = append(res.Edges, r)
	}
	return res
}

// Place runs the layered layout and degrades to [Fallback] when it fails.
// The failure is logged at warn level and never returned: callers always
// receive a usable placement.
func Place(ctx context.Context, e *Engine, in Input) Result {
	res, err := e.Layout(ctx, in)
	if err == nil {
		return res
	}
	e.logger.Warn("layout failed, using fallback placement", "nodes", len(in.Nodes), "err", err)

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, "fallback", len(in.Nodes))
	res = Fallback(in, e.opts)
	observability.Pipeline().OnLayoutComplete(ctx, "fallback", time.Since(start), nil)
	return res
}
