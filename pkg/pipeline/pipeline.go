// Package pipeline runs the batch parse → layout → render pipeline used by
// the CLI and the stateless HTTP endpoints.
//
// A run reads one document, parses it into a [notation.Graph], places it
// with the layered layout engine and renders the requested formats with
// Graphviz. Layouts and artifacts are cached through a [cache.Cache]:
//
//	r := pipeline.NewRunner(c, nil, logger)
//	res, err := r.Execute(ctx, pipeline.Options{
//	    Text:    text,
//	    Formats: []string{"svg", "png"},
//	})
//	svg := res.Artifacts["svg"]
package pipeline

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mermedit/pkg/cache"
	merrors "github.com/matzehuels/mermedit/pkg/errors"
	"github.com/matzehuels/mermedit/pkg/layout"
	"github.com/matzehuels/mermedit/pkg/notation"
	"github.com/matzehuels/mermedit/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

const (
	FormatSVG = string(render.FormatSVG)
	FormatPNG = string(render.FormatPNG)
)

// ValidFormats lists the accepted output formats.
var ValidFormats = map[string]bool{
	FormatSVG: true,
	FormatPNG: true,
}

// DefaultLayoutTTL is how long computed layouts stay cached.
const DefaultLayoutTTL = 7 * 24 * time.Hour

// ErrEmptyDocument is returned when the input text has no content.
var ErrEmptyDocument = errors.New("document is empty")

// =============================================================================
// Types
// =============================================================================

// Options configures a pipeline run.
type Options struct {
	// Text is the notation document.
	Text string `json:"text"`

	// Formats lists the artifacts to render. Defaults to svg.
	Formats []string `json:"formats,omitempty"`

	// Render controls theme, font size and rank direction of artifacts.
	// Render.Format is ignored; it is set per entry of Formats.
	Render render.Config `json:"render"`

	// Layout controls node spacing. A zero Direction follows the document
	// header.
	Layout layout.Options `json:"layout"`

	// SkipLayout skips the layout stage. Rendering does not depend on it.
	SkipLayout bool `json:"skip_layout,omitempty"`

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the parsed document.
	Graph notation.Graph

	// GraphHash is the content hash of Graph.
	GraphHash string

	// Layout holds node positions. It is zero when SkipLayout was set.
	Layout layout.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	ParseTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each cached stage.
type CacheInfo struct {
	LayoutHit bool // layout came from cache
	RenderHit bool // every artifact came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return merrors.New(merrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if strings.TrimSpace(o.Text) == "" {
		return ErrEmptyDocument
	}
	o.SetLayoutDefaults()
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults fills zero layout options from layout.DefaultOptions,
// keeping Direction empty so the document header decides.
func (o *Options) SetLayoutDefaults() {
	d := layout.DefaultOptions()
	if o.Layout.NodeWidth <= 0 {
		o.Layout.NodeWidth = d.NodeWidth
	}
	if o.Layout.NodeHeight <= 0 {
		o.Layout.NodeHeight = d.NodeHeight
	}
	if o.Layout.NodeSep <= 0 {
		o.Layout.NodeSep = d.NodeSep
	}
	if o.Layout.RankSep <= 0 {
		o.Layout.RankSep = d.RankSep
	}
	if o.Layout.MaxNodes <= 0 {
		o.Layout.MaxNodes = d.MaxNodes
	}
	if o.Layout.Sweeps <= 0 {
		o.Layout.Sweeps = d.Sweeps
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// Direction returns the layout direction for g: the explicit option when
// set, otherwise the direction written in the document header.
func (o *Options) Direction(g notation.Graph) layout.Direction {
	if o.Layout.Direction != "" {
		return o.Layout.Direction
	}
	return layout.ParseDirection(g.Direction)
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts(dir layout.Direction) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		NodeWidth:  o.Layout.NodeWidth,
		NodeHeight: o.Layout.NodeHeight,
		NodeSep:    o.Layout.NodeSep,
		RankSep:    o.Layout.RankSep,
		Direction:  string(dir),
	}
}

// RenderConfig returns the renderer configuration for one format.
func (o *Options) RenderConfig(format string) render.Config {
	cfg := o.Render
	cfg.Format = render.Format(format)
	return cfg
}
