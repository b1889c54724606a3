// Package graphsync keeps notation text and a node-graph canvas in step.
//
// # Overview
//
// A [Controller] owns the current document text, its revision counter and
// the canvas state derived from it. Edits arrive from two directions:
//
//   - Text edits ([Controller.SetText]) parse the document and, when the
//     graph changed, lay the canvas out again.
//   - Canvas edits ([Controller.ApplyNodeChanges], [Controller.Connect],
//     ...) regenerate the text from the canvas without running layout,
//     so positions chosen by the user survive.
//
// Every canvas edit produces text that the editor will eventually hand
// back through SetText. The controller recognizes this echo by comparing
// against the current text and ignores it, so a canvas edit never causes
// a relayout.
//
// Nodes the user dragged are pinned. When a later text edit does force a
// relayout, pinned nodes whose ID still exists keep their position unless
// the controller was created with WithPreservePinned(false).
//
// # Preview
//
// [Preview] tags every render with the revision it was requested for and
// drops results that arrive after a newer one was shown. [Debouncer]
// delays text edits so that only the last keystroke of a burst is
// processed.
//
// # Concurrency
//
// Controller is not safe for concurrent use; callers serialize access.
// Preview and Debouncer are safe for concurrent use.
package graphsync
