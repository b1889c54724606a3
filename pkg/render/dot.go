package render

import (
	"fmt"
	"strings"

	"github.com/matzehuels/mermedit/pkg/notation"
)

type palette struct {
	background, fill, stroke, font, edge, entityFill string
}

var themes = map[string]palette{
	"default": {"transparent", "#ECECFF", "#9370DB", "#333333", "#333333", "#FFFFE0"},
	"dark":    {"#1f2020", "#1f2020", "#81B1DB", "#e0e0e0", "#d0d0d0", "#2b2b3a"},
	"forest":  {"transparent", "#cde498", "#13540c", "#333333", "#008000", "#eef7e0"},
	"neutral": {"transparent", "#eeeeee", "#999999", "#333333", "#666666", "#f7f7f7"},
}

// ToDOT converts a parsed graph into Graphviz DOT source. Node statements
// set id to the notation ID and class to "node" (or "node entity"); edge
// statements set id to "e<source>-<target>", suffixed with "-<n>" for
// parallel edges.
func ToDOT(g notation.Graph, cfg Config) string {
	cfg = cfg.withDefaults()
	pal, ok := themes[cfg.Theme]
	if !ok {
		pal = themes["default"]
	}
	rankdir := cfg.RankDir
	if rankdir == "" {
		rankdir = g.Direction
	}
	rankdir = normalizeRankDir(rankdir)

	var buf strings.Builder
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	fmt.Fprintf(&buf, "  bgcolor=%s;\n", quote(pal.background))
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fillcolor=%s, color=%s, fontcolor=%s, fontname=\"Helvetica\", fontsize=%d, penwidth=2, margin=\"0.2,0.1\"];\n",
		quote(pal.fill), quote(pal.stroke), quote(pal.font), cfg.FontSize)
	fmt.Fprintf(&buf, "  edge [color=%s, fontcolor=%s, fontname=\"Helvetica\", fontsize=%d];\n",
		quote(pal.edge), quote(pal.font), max(cfg.FontSize-2, 1))
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		attrs := []string{"id=" + quote(n.ID)}
		if n.Kind == notation.NodeKindEntity {
			attrs = append(attrs,
				"label="+entityLabel(n),
				`class="node entity"`,
				"fillcolor="+quote(pal.entityFill),
				`style="filled"`)
		} else {
			attrs = append(attrs, "label="+quote(n.Label), `class="node"`)
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", quote(n.ID), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	edgeIDs := notation.AssignEdgeIDs(g.Edges)
	for i, e := range g.Edges {
		attrs := []string{"id=" + quote(edgeIDs[i])}
		if e.Label != "" {
			attrs = append(attrs, "label="+quote(e.Label))
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", quote(e.Source), quote(e.Target), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func normalizeRankDir(d string) string {
	switch strings.ToUpper(d) {
	case "BT", "LR", "RL":
		return strings.ToUpper(d)
	default:
		return "TB"
	}
}

// entityLabel lists the attribute lines left-aligned below the entity name.
func entityLabel(n notation.Node) string {
	if len(n.Attributes) == 0 {
		return quote(n.Label)
	}
	var sb strings.Builder
	sb.WriteByte('"')
	sb.WriteString(escape(n.Label))
	sb.WriteString(`\n\n`)
	for _, a := range n.Attributes {
		sb.WriteString(escape(a))
		sb.WriteString(`\l`)
	}
	sb.WriteByte('"')
	return sb.String()
}

func quote(s string) string { return `"` + escape(s) + `"` }

// escape prepares s for a DOT double-quoted string.
func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", "")
	return r.Replace(s)
}
