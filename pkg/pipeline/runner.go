package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mermedit/pkg/cache"
	"github.com/matzehuels/mermedit/pkg/layout"
	"github.com/matzehuels/mermedit/pkg/notation"
	"github.com/matzehuels/mermedit/pkg/observability"
	"github.com/matzehuels/mermedit/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// NewRenderer creates renderers on cache misses. Defaults to
	// [NewGraphvizRenderer].
	NewRenderer RendererFactory
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:       c,
		Keyer:       keyer,
		Logger:      logger,
		NewRenderer: NewGraphvizRenderer,
	}
}

// Execute runs the complete parse → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Parse
	parseStart := time.Now()
	g := Parse(ctx, opts.Text)
	result.Graph = g
	result.GraphHash = GraphHash(g)
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.NodeCount = len(g.Nodes)
	result.Stats.EdgeCount = len(g.Edges)

	r.Logger.Info("parsed document",
		"kind", g.Kind,
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"duration", result.Stats.ParseTime)

	// Stage 2: Layout
	if !opts.SkipLayout {
		layoutStart := time.Now()
		res, hit, err := r.GenerateLayoutWithCacheInfo(ctx, g, opts)
		if err != nil {
			return nil, fmt.Errorf("layout: %w", err)
		}
		result.Layout = res
		result.Stats.LayoutTime = time.Since(layoutStart)
		result.CacheInfo.LayoutHit = hit

		r.Logger.Info("computed layout",
			"ranks", res.Ranks,
			"crossings", res.Crossings,
			"degraded", res.Degraded,
			"duration", result.Stats.LayoutTime)
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// GenerateLayoutWithCacheInfo lays out g with caching and returns cache
// hit info. Degraded layouts are returned but not cached.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, g notation.Graph, opts Options) (layout.Result, bool, error) {
	opts.SetLayoutDefaults()
	dir := opts.Direction(g)
	key := r.Keyer.LayoutKey(GraphHash(g), opts.LayoutKeyOpts(dir))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cached layout.Result
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	res, err := GenerateLayout(ctx, g, opts.Layout, dir, r.logger(opts))
	if err != nil {
		return layout.Result{}, false, err
	}

	if !res.Degraded {
		if data, err := json.Marshal(res); err == nil {
			if err := r.Cache.Set(ctx, key, data, DefaultLayoutTTL); err == nil {
				observability.Cache().OnCacheSet(ctx, "layout", len(data))
			}
		}
	}
	return res, false, nil
}

// GenerateLayout is a convenience wrapper that discards the cache hit info.
func (r *Runner) GenerateLayout(ctx context.Context, g notation.Graph, opts Options) (layout.Result, error) {
	res, _, err := r.GenerateLayoutWithCacheInfo(ctx, g, opts)
	return res, err
}

// RenderWithCacheInfo renders opts.Formats with caching and reports whether
// every artifact came from the cache. Syntax errors are returned as
// *render.SyntaxError (wrapped).
func (r *Runner) RenderWithCacheInfo(ctx context.Context, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	keys := make(map[string]string, len(opts.Formats))
	for _, format := range opts.Formats {
		keys[format] = r.Keyer.RenderKey(opts.Text, render.KeyOpts(opts.RenderConfig(format)))
	}

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, keys[format])
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "render")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "render")
	}

	factory := r.NewRenderer
	if factory == nil {
		factory = NewGraphvizRenderer
	}
	rendered, err := RenderFormats(ctx, opts.Text, opts.Formats, opts.RenderConfig, factory, r.logger(opts))
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		if len(data) == 0 {
			continue
		}
		if err := r.Cache.Set(ctx, keys[format], data, render.DefaultCacheTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "render", len(data))
		}
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
