package notation

import "strings"

// Parse converts notation text into a graph model. It never fails:
// malformed or unrecognized lines are skipped, which may yield an empty
// graph.
//
// The header line selects the grammar once for the whole document. Text
// without a recognized header is parsed with the flow grammar and no line
// is treated as a header.
func Parse(text string) Graph {
	lines := cleanLines(text)
	h := detectHeader(lines)

	var b *builder
	if h.kind.UsesERGrammar() {
		b = parseER(lines, h)
	} else {
		b = parseFlow(lines, h)
	}
	return b.graph(h)
}

// body returns the content lines of a document: comments and the header
// line removed.
func body(lines []string, h header) []string {
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		if i == h.line || isComment(line) {
			continue
		}
		out = append(out, line)
	}
	return out
}

// flowDirectives are statement keywords of the flow grammar that carry no
// graph elements.
var flowDirectives = []string{
	"style", "classDef", "class", "click", "linkStyle",
	"subgraph", "end", "direction", "accTitle", "accDescr",
}

func isDirective(line string) bool {
	for _, kw := range flowDirectives {
		if rest, ok := strings.CutPrefix(line, kw); ok {
			if rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == ':' || rest[0] == ';' {
				return true
			}
		}
	}
	return false
}

// parseFlow applies the flow grammar to every content line.
func parseFlow(lines []string, h header) *builder {
	b := newBuilder(NodeKindPlain)
	allowBare := h.kind == KindFlowchart
	for _, line := range body(lines, h) {
		for _, stmt := range splitStatements(line) {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" || isDirective(stmt) {
				continue
			}
			applyStatement(b, stmt, allowBare)
		}
	}
	return b
}

// applyStatement parses one flow statement and records its elements. A
// statement that does not parse completely is skipped as a whole.
func applyStatement(b *builder, stmt string, allowBare bool) {
	st, ok := scanStatement(stmt)
	if !ok {
		return
	}
	if len(st.hops) == 0 {
		if len(st.groups[0]) != 1 {
			return
		}
		ref := st.groups[0][0]
		if !ref.shaped && !allowBare {
			return
		}
		b.declare(ref.id, ref.label)
		return
	}

	// Declarations are applied in reading order so that a label written
	// inline on an edge line behaves exactly like a standalone one.
	for i, group := range st.groups {
		for _, ref := range group {
			b.declare(ref.id, ref.label)
		}
		if i == 0 {
			continue
		}
		hop := st.hops[i-1]
		for _, src := range st.groups[i-1] {
			for _, dst := range group {
				b.connect(src.id, dst.id, hop.label)
			}
		}
	}
}
