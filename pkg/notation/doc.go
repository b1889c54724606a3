// Package notation parses and generates Mermaid-style diagram text.
//
// The package converts between notation text and a renderer-agnostic graph
// model made of [Node] and [Edge] values. It targets a practical subset of
// the notation rather than the full grammar:
//
//   - Flowcharts (graph/flowchart): node declarations with shapes, arrow
//     chains, pipe and inline edge labels, & groups
//   - Entity-relationship diagrams (erDiagram): entity blocks and
//     cardinality relationships with labels
//
// # Parsing
//
// [Parse] never fails. Lines it does not understand are skipped silently,
// so a partially typed document still yields the graph recognized so far.
// The diagram kind is resolved once from the header line (see [DetectKind])
// and selects the grammar for the whole document.
//
// Node identity follows "first mention wins": an edge may reference a node
// before it is declared, in which case the node is synthesized with its ID
// as label. Labels follow "last explicit declaration wins" and always beat
// the synthesized default, regardless of line order.
//
// # Generation
//
// [Generate] serializes nodes and edges back to flowchart text. The round
// trip is lossy (comments, styling, subgraphs and shapes are dropped), but
// it is stable: parsing generated text yields the same graph again.
//
//	g := notation.Parse("graph TD\n  A[Start]-->B[Process]\n  B-->C[End]")
//	text := notation.Generate(g.Nodes, g.Edges)
//	again := notation.Parse(text)
//	// again.SameElements(g) == true
package notation
