// Package pkg holds the libraries behind the mermedit diagram editor.
//
// # Overview
//
// Mermedit keeps a Mermaid-style text document and a node-graph canvas in
// sync, renders a live preview of the text, and lets users drag nodes of
// the rendered preview. The packages split into the document model, the
// layout and rendering engines, and the editing state built on top:
//
//	notation text
//	     ↓
//	[notation] parse into nodes and edges
//	     ↓
//	[layout] layered placement on [dag]
//	     ↓
//	[graphsync] canvas snapshot ⇄ regenerated text
//	     ↓
//	[render] Graphviz preview → [overlay] draggable SVG
//
// # Main Packages
//
// [notation] - Parser and generator for the flowchart and entity-relationship
// grammars, header detection for the other diagram kinds, and the
// built-in templates.
//
// [layout] - Layered layout: cycle breaking, longest-path ranks, crossing
// reduction and coordinate assignment, with a diagonal fallback for large
// graphs.
//
// [graphsync] - The text/canvas controller, the debouncer for settled text
// and the preview that keeps the newest revision.
//
// [render] - Renderers that turn text into SVG or PNG, and a caching
// wrapper.
//
// [overlay] - Drag handling over rendered SVG: node discovery, offsets and
// the transformed document.
//
// [session] - In-memory editing sessions for the HTTP server.
//
// [pipeline] - Batch parse → layout → render runs for the CLI and the
// stateless API routes.
//
// # Infrastructure
//
// [cache] - File, Redis and no-op caches with content-hashed keys.
//
// [errors] - Coded errors shared by the CLI and the HTTP API.
//
// [observability] and [metrics] - Event hooks and their Prometheus
// collectors.
//
// [buildinfo] - Version information set at build time.
//
// # Quick Start
//
// Parse a document and lay it out:
//
//	g := notation.Parse("graph LR\n  A[Start] --> B[End]")
//	res := layout.Place(ctx, layout.New(layout.DefaultOptions()), pipeline.LayoutInput(g))
//
// Render it with the batch pipeline:
//
//	r := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	out, _ := r.Execute(ctx, pipeline.Options{Text: text, Formats: []string{"svg"}})
//
// [notation]: https://pkg.go.dev/github.com/matzehuels/mermedit/pkg/notation
// [layout]: https://pkg.go.dev/github.com/matzehuels/mermedit/pkg/layout
// [dag]: https://pkg.go.dev/github.com/matzehuels/mermedit/pkg/dag
// [graphsync]: https://pkg.go.dev/github.com/matzehuels/mermedit/pkg/graphsync
// [render]: https://pkg.go.dev/github.com/matzehuels/mermedit/pkg/render
// [overlay]: https://pkg.go.dev/github.com/matzehuels/mermedit/pkg/overlay
// [session]: https://pkg.go.dev/github.com/matzehuels/mermedit/pkg/session
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/mermedit/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/mermedit/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/mermedit/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/mermedit/pkg/observability
// [metrics]: https://pkg.go.dev/github.com/matzehuels/mermedit/pkg/metrics
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/mermedit/pkg/buildinfo
package pkg
