package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/mermedit/pkg/notation"
	"github.com/matzehuels/mermedit/pkg/observability"
)

// Graphviz renders documents through an in-process Graphviz instance. It
// is safe for concurrent use; renders are serialized.
type Graphviz struct {
	cfg    Config
	logger *log.Logger

	once    sync.Once
	initErr error
	mu      sync.Mutex
	gv      *graphviz.Graphviz
}

// Option configures a Graphviz renderer.
type Option func(*Graphviz)

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(r *Graphviz) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewGraphviz creates a renderer. Graphviz itself is started lazily by the
// first call to Init or Render.
func NewGraphviz(cfg Config, opts ...Option) *Graphviz {
	r := &Graphviz{cfg: cfg.withDefaults(), logger: log.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the effective configuration.
func (r *Graphviz) Config() Config { return r.cfg }

// Init starts Graphviz. It is idempotent: later calls return the result
// of the first one.
func (r *Graphviz) Init(ctx context.Context) error {
	r.once.Do(func() {
		start := time.Now()
		r.gv, r.initErr = graphviz.New(context.WithoutCancel(ctx))
		if r.initErr != nil {
			r.initErr = fmt.Errorf("init graphviz: %w", r.initErr)
			return
		}
		r.logger.Debug("graphviz ready", "took", time.Since(start))
	})
	return r.initErr
}

// Render validates text, converts it to DOT and renders it in the
// configured format.
func (r *Graphviz) Render(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if err := notation.Check(text); err != nil {
		var le *notation.LineError
		if errors.As(err, &le) {
			return nil, &SyntaxError{Message: le.Message, Line: le.Line}
		}
		return nil, &SyntaxError{Message: err.Error()}
	}
	if kind := notation.DetectKind(text); !kind.Drawable() {
		return nil, &SyntaxError{Message: fmt.Sprintf("%s diagrams cannot be previewed yet; only flowchart and erDiagram documents are drawn", kind)}
	}

	start := time.Now()
	observability.Pipeline().OnParseStart(ctx)
	g := notation.Parse(text)
	observability.Pipeline().OnParseComplete(ctx, g.Kind.String(), len(g.Nodes), time.Since(start))

	return r.RenderDOT(ctx, ToDOT(g, r.cfg))
}

// RenderDOT renders DOT source in the configured format.
func (r *Graphviz) RenderDOT(ctx context.Context, dot string) (out []byte, err error) {
	format := r.cfg.Format
	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, string(format))
	defer func() {
		observability.Pipeline().OnRenderComplete(ctx, string(format), time.Since(start), err)
	}()

	if err := r.Init(ctx); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	gvFormat := graphviz.SVG
	if format == FormatPNG {
		gvFormat = graphviz.PNG
	}

	var buf bytes.Buffer
	if err := r.gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	if format == FormatSVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

// Close releases the Graphviz instance.
func (r *Graphviz) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gv == nil {
		return nil
	}
	err := r.gv.Close()
	r.gv = nil
	return err
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.-]+)\s+([0-9.-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element to a zero-origin viewBox with
// pixel dimensions, so previews scale the same way in every browser.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	loc := svgTagRe.FindIndex(svg)
	out := make([]byte, 0, len(svg))
	out = append(out, svg[:loc[0]]...)
	out = append(out, tag...)
	return append(out, svg[loc[1]:]...)
}

var _ Renderer = (*Graphviz)(nil)
