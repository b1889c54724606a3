package pipeline

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mermedit/pkg/layout"
	"github.com/matzehuels/mermedit/pkg/notation"
)

// LayoutInput converts a parsed graph into layout engine input.
func LayoutInput(g notation.Graph) layout.Input {
	in := layout.Input{
		Nodes: make([]layout.NodeBox, len(g.Nodes)),
		Edges: make([]layout.EdgeRef, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		in.Nodes[i] = layout.NodeBox{ID: n.ID}
	}
	for i, e := range g.Edges {
		in.Edges[i] = layout.EdgeRef{Source: e.Source, Target: e.Target}
	}
	return in
}

// GenerateLayout places g in the given direction. It degrades to the
// fallback placement instead of failing, so the result is always usable;
// the returned error only reports cancellation.
func GenerateLayout(ctx context.Context, g notation.Graph, opts layout.Options, dir layout.Direction, logger *log.Logger) (layout.Result, error) {
	opts.Direction = dir
	engine := layout.New(opts, layout.WithLogger(logger))
	res := layout.Place(ctx, engine, LayoutInput(g))
	if err := ctx.Err(); err != nil {
		return layout.Result{}, err
	}
	return res, nil
}
