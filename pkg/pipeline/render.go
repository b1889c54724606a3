package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mermedit/pkg/render"
)

// RendererFactory creates the renderer for one output configuration.
type RendererFactory func(cfg render.Config, logger *log.Logger) render.Renderer

// NewGraphvizRenderer is the default [RendererFactory].
func NewGraphvizRenderer(cfg render.Config, logger *log.Logger) render.Renderer {
	return render.NewGraphviz(cfg, render.WithLogger(logger))
}

// RenderFormats renders text once per format with renderers from factory.
// Renderers implementing io.Closer are closed afterwards.
func RenderFormats(ctx context.Context, text string, formats []string, cfg func(string) render.Config, factory RendererFactory, logger *log.Logger) (map[string][]byte, error) {
	out := make(map[string][]byte, len(formats))
	for _, format := range formats {
		data, err := renderOne(ctx, text, factory(cfg(format), logger))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", format, err)
		}
		out[format] = data
	}
	return out, nil
}

func renderOne(ctx context.Context, text string, r render.Renderer) ([]byte, error) {
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}
	return r.Render(ctx, text)
}
