package notation

import (
	"strings"
)

// GeneratedHeader is the header line emitted by [Generate].
const GeneratedHeader = "graph TD"

// Generate serializes nodes and edges as flowchart text: one header line,
// one declaration per node (id[label]) and one link per edge
// (source-->target, or source-->|label|target for labeled edges), in input
// order.
//
// Generate is pure and total. It does not preserve comments, shapes,
// styling or subgraphs of the text the graph was parsed from.
func Generate(nodes []Node, edges []Edge) string {
	var sb strings.Builder
	sb.WriteString(GeneratedHeader)
	sb.WriteByte('\n')

	for _, n := range nodes {
		sb.WriteString("  ")
		sb.WriteString(n.ID)
		if n.Label != "" {
			sb.WriteByte('[')
			sb.WriteString(quoteLabel(n.Label))
			sb.WriteByte(']')
		}
		sb.WriteByte('\n')
	}

	for _, e := range edges {
		sb.WriteString("  ")
		sb.WriteString(e.Source)
		sb.WriteString("-->")
		if e.Label != "" {
			sb.WriteByte('|')
			sb.WriteString(quoteLabel(e.Label))
			sb.WriteByte('|')
		}
		sb.WriteString(e.Target)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// quoteLabel wraps labels containing delimiter characters in quotes so the
// parser reads them back verbatim.
func quoteLabel(label string) string {
	if !strings.ContainsAny(label, "[](){}|\";#") && !strings.HasPrefix(label, "/") && !strings.HasPrefix(label, `\`) {
		return label
	}
	escaped := strings.ReplaceAll(label, "#", "#35;")
	return `"` + strings.ReplaceAll(escaped, `"`, "#quot;") + `"`
}
