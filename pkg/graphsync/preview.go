package graphsync

import (
	"context"
	"sync"

	"github.com/matzehuels/mermedit/pkg/observability"
	"github.com/matzehuels/mermedit/pkg/render"
)

// PreviewState is the displayed preview.
type PreviewState struct {
	Revision uint64 `json:"revision"`
	Image    []byte `json:"-"`

	// Error holds the message shown instead of the image when the last
	// accepted render failed.
	Error string `json:"error,omitempty"`
}

// Empty reports whether there is neither an image nor an error.
func (s PreviewState) Empty() bool { return len(s.Image) == 0 && s.Error == "" }

// Preview renders documents and keeps the result of the newest revision.
// Results for older revisions that finish late are discarded.
type Preview struct {
	renderer render.Renderer

	mu    sync.Mutex
	state PreviewState
	shown bool
}

// NewPreview creates a preview backed by r.
func NewPreview(r render.Renderer) *Preview {
	return &Preview{renderer: r}
}

// Request renders text for revision rev and offers the result to Accept.
// It reports whether the result was displayed.
func (p *Preview) Request(ctx context.Context, rev uint64, text string) (PreviewState, bool) {
	img, err := p.renderer.Render(ctx, text)
	if ctx.Err() != nil && err != nil {
		return p.State(), false
	}
	ok := p.Accept(rev, img, err)
	return p.State(), ok
}

// Accept displays a render result unless a newer revision is already
// shown. A failed render replaces the image with its error message;
// syntax errors are shown verbatim.
func (p *Preview) Accept(rev uint64, img []byte, err error) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.shown && rev < p.state.Revision {
		observability.Sync().OnStaleRender(rev)
		return false
	}
	p.shown = true
	p.state = PreviewState{Revision: rev, Image: img}
	if err != nil {
		p.state.Image = nil
		p.state.Error = err.Error()
	}
	return true
}

// State returns the displayed preview.
func (p *Preview) State() PreviewState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}
