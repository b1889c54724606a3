package notation

import "strings"

// DiagramKind identifies the diagram type declared by the header line.
type DiagramKind int

const (
	KindUnknown DiagramKind = iota
	KindFlowchart
	KindER
	KindSequence
	KindClass
	KindState
	KindGantt
	KindPie
	KindJourney
	KindGitGraph
	KindMindmap
	KindTimeline
	KindQuadrant
)

var kindNames = map[DiagramKind]string{
	KindUnknown:   "unknown",
	KindFlowchart: "flowchart",
	KindER:        "er",
	KindSequence:  "sequence",
	KindClass:     "class",
	KindState:     "state",
	KindGantt:     "gantt",
	KindPie:       "pie",
	KindJourney:   "journey",
	KindGitGraph:  "gitgraph",
	KindMindmap:   "mindmap",
	KindTimeline:  "timeline",
	KindQuadrant:  "quadrant",
}

// headerKeywords maps the first token of a header line to its kind.
var headerKeywords = map[string]DiagramKind{
	"graph":           KindFlowchart,
	"flowchart":       KindFlowchart,
	"erDiagram":       KindER,
	"sequenceDiagram": KindSequence,
	"classDiagram":    KindClass,
	"classDiagram-v2": KindClass,
	"stateDiagram":    KindState,
	"stateDiagram-v2": KindState,
	"gantt":           KindGantt,
	"pie":             KindPie,
	"journey":         KindJourney,
	"gitGraph":        KindGitGraph,
	"mindmap":         KindMindmap,
	"timeline":        KindTimeline,
	"quadrantChart":   KindQuadrant,
}

// String returns the lowercase name of the kind.
func (k DiagramKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler so kinds serialize by name.
func (k DiagramKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *DiagramKind) UnmarshalText(b []byte) error {
	name := string(b)
	for kind, s := range kindNames {
		if s == name {
			*k = kind
			return nil
		}
	}
	*k = KindUnknown
	return nil
}

// UsesERGrammar reports whether documents of this kind are parsed with the
// entity-relationship grammar. All other kinds use the flow grammar.
func (k DiagramKind) UsesERGrammar() bool { return k == KindER }

// Drawable reports whether documents of this kind parse into a graph that
// can be laid out and rendered. Other kinds are recognized by their header
// but their bodies are not read.
func (k DiagramKind) Drawable() bool { return k == KindFlowchart || k == KindER }

// header describes the resolved header line of a document.
type header struct {
	kind      DiagramKind
	direction string
	line      int // index into the cleaned line slice, -1 if absent
}

// DetectKind resolves the diagram kind from the first non-comment line of
// text. Text without a recognized header returns [KindUnknown].
func DetectKind(text string) DiagramKind {
	return detectHeader(cleanLines(text)).kind
}

func detectHeader(lines []string) header {
	for i, line := range lines {
		if isComment(line) {
			continue
		}
		fields := strings.Fields(line)
		kind, ok := headerKeywords[fields[0]]
		if !ok {
			return header{kind: KindUnknown, line: -1}
		}
		h := header{kind: kind, line: i}
		if kind == KindFlowchart && len(fields) > 1 {
			h.direction = strings.TrimSuffix(fields[1], ";")
		}
		return h
	}
	return header{kind: KindUnknown, line: -1}
}

// cleanLines splits text into trimmed, non-empty lines.
func cleanLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func isComment(line string) bool { return strings.HasPrefix(line, "%%") }
