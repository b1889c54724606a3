// Package render turns notation text into preview images.
//
// # Overview
//
// A [Renderer] converts a document into SVG or PNG bytes. The editor uses
// it for the live preview; the CLI and HTTP API use it for export.
//
//	r := render.NewGraphviz(render.Config{Format: render.FormatSVG})
//	defer r.Close()
//	svg, err := r.Render(ctx, text)
//
// Documents that fail validation produce a [*SyntaxError] whose message is
// shown to the user as is. Empty documents render to an empty preview
// without error.
//
// # DOT Conversion
//
// [ToDOT] converts a parsed graph into Graphviz DOT. Every node carries an
// id attribute equal to its notation ID, so the rendered SVG groups can be
// matched back to graph nodes (see pkg/overlay). Entity nodes list their
// attribute lines below the name.
//
// # Caching
//
// [Cached] wraps any renderer with a [cache.Cache] keyed by a hash of the
// text and the render options. Concurrent renders of the same key share
// one underlying call.
//
// # Dependencies
//
// [Graphviz] uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process through WebAssembly; no system installation is needed.
package render
