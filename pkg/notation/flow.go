package notation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ref is a node reference inside a flow statement, optionally carrying an
// explicit label through a shape such as A[Label] or B{Label}.
type ref struct {
	id     string
	label  string
	shaped bool
}

// hop is the arrow between two groups of a chained statement.
type hop struct {
	label string
}

// statement is a parsed flow line: groups of refs joined by hops.
// "A & B --> C" has groups [[A B] [C]] and one hop.
type statement struct {
	groups [][]ref
	hops   []hop
}

// shapes lists opening and closing delimiters, longest openers first so
// that A((x)) is not read as A(…).
var shapes = [][2]string{
	{"(((", ")))"},
	{"((", "))"},
	{"([", "])"},
	{"[[", "]]"},
	{"[(", ")]"},
	{"{{", "}}"},
	{"[/", "/]"},
	{"[/", "\\]"},
	{"[\\", "\\]"},
	{"[\\", "/]"},
	{"[", "]"},
	{"(", ")"},
	{"{", "}"},
	{">", "]"},
}

// inlineLabelRe matches arrows carrying their label between the link
// strokes, e.g. "-- yes -->" or "-. maybe .->".
var inlineLabelRe = regexp.MustCompile(`^<?(--|==|-\.)\s+(.+?)\s+(-{2,}>|-{3,}|-{2,}[xo]|={2,}>|={3,}|\.+-+>|\.+-+)`)

type scanner struct {
	s   string
	pos int
}

func scanStatement(s string) (statement, bool) {
	sc := &scanner{s: s}
	var st statement

	g, ok := sc.group()
	if !ok {
		return st, false
	}
	st.groups = append(st.groups, g)

	for {
		sc.skipSpace()
		if sc.eof() {
			return st, true
		}
		h, ok := sc.arrow()
		if !ok {
			return st, false
		}
		sc.skipSpace()
		g, ok := sc.group()
		if !ok {
			return st, false
		}
		st.hops = append(st.hops, h)
		st.groups = append(st.groups, g)
	}
}

func (sc *scanner) eof() bool    { return sc.pos >= len(sc.s) }
func (sc *scanner) rest() string { return sc.s[sc.pos:] }

func (sc *scanner) skipSpace() {
	for !sc.eof() && (sc.s[sc.pos] == ' ' || sc.s[sc.pos] == '\t') {
		sc.pos++
	}
}

func (sc *scanner) group() ([]ref, bool) {
	r, ok := sc.ref()
	if !ok {
		return nil, false
	}
	refs := []ref{r}
	for {
		save := sc.pos
		sc.skipSpace()
		if sc.eof() || sc.s[sc.pos] != '&' {
			sc.pos = save
			return refs, true
		}
		sc.pos++
		sc.skipSpace()
		r, ok := sc.ref()
		if !ok {
			return nil, false
		}
		refs = append(refs, r)
	}
}

func (sc *scanner) ref() (ref, bool) {
	id := sc.word()
	if id == "" {
		return ref{}, false
	}
	r := ref{id: id}
	if label, ok, matched := sc.shape(); matched {
		if !ok {
			return ref{}, false
		}
		r.label, r.shaped = label, true
	}
	if strings.HasPrefix(sc.rest(), ":::") {
		sc.pos += 3
		for !sc.eof() && (isWordByte(sc.s[sc.pos]) || sc.s[sc.pos] == '-') {
			sc.pos++
		}
	}
	return r, true
}

// word consumes an identifier made of letters, digits and underscores. A
// hyphen belongs to the identifier only when another identifier character
// follows it, so A-->B still splits into A, an arrow and B.
func (sc *scanner) word() string {
	start := sc.pos
	for !sc.eof() {
		r, size := utf8.DecodeRuneInString(sc.rest())
		if r == '-' && sc.pos > start {
			next, _ := utf8.DecodeRuneInString(sc.s[sc.pos+1:])
			if isIdentRune(next) {
				sc.pos++
				continue
			}
		}
		if !isIdentRune(r) {
			break
		}
		sc.pos += size
	}
	return sc.s[start:sc.pos]
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// shape reads a shape delimiter pair at the current position. matched is
// false when no opener is present; ok is false when an opener is present
// but never closed.
func (sc *scanner) shape() (label string, ok, matched bool) {
	rest := sc.rest()
	for _, sh := range shapes {
		open, closing := sh[0], sh[1]
		if !strings.HasPrefix(rest, open) {
			continue
		}
		matched = true
		inner := rest[len(open):]
		if strings.HasPrefix(strings.TrimLeft(inner, " "), `"`) {
			trimmed := strings.TrimLeft(inner, " ")
			end := strings.IndexByte(trimmed[1:], '"')
			if end < 0 {
				continue
			}
			after := strings.TrimLeft(trimmed[end+2:], " ")
			if !strings.HasPrefix(after, closing) {
				continue
			}
			sc.pos = len(sc.s) - len(after) + len(closing)
			return unescape(trimmed[1 : end+1]), true, true
		}
		end := strings.Index(inner, closing)
		if end < 0 {
			continue
		}
		sc.pos += len(open) + end + len(closing)
		return strings.TrimSpace(inner[:end]), true, true
	}
	return "", false, matched
}

// arrow reads a link between two groups, including an optional label.
func (sc *scanner) arrow() (hop, bool) {
	if m := inlineLabelRe.FindStringSubmatch(sc.rest()); m != nil {
		sc.pos += len(m[0])
		return hop{label: strings.TrimSpace(m[2])}, true
	}

	start := sc.pos
	if !sc.eof() && sc.s[sc.pos] == '<' {
		sc.pos++
	}
	runStart := sc.pos
	for !sc.eof() && strings.IndexByte("-=.", sc.s[sc.pos]) >= 0 {
		sc.pos++
	}
	run := sc.s[runStart:sc.pos]
	if len(run) < 2 || !strings.ContainsAny(run, "-=") {
		sc.pos = start
		return hop{}, false
	}

	headed := false
	if !sc.eof() {
		switch c := sc.s[sc.pos]; {
		case c == '>':
			headed = true
		case c == 'x' || c == 'o':
			next := sc.pos + 1
			headed = next >= len(sc.s) || sc.s[next] == ' ' || sc.s[next] == '|'
		}
	}
	if headed {
		sc.pos++
	} else if len(run) < 3 {
		sc.pos = start
		return hop{}, false
	}

	h := hop{}
	save := sc.pos
	sc.skipSpace()
	if !sc.eof() && sc.s[sc.pos] == '|' {
		label, ok := sc.pipeLabel()
		if !ok {
			sc.pos = start
			return hop{}, false
		}
		h.label = label
	} else {
		sc.pos = save
	}
	return h, true
}

// pipeLabel reads |text| or |"text"| starting at a pipe.
func (sc *scanner) pipeLabel() (string, bool) {
	inner := sc.s[sc.pos+1:]
	if t := strings.TrimLeft(inner, " "); strings.HasPrefix(t, `"`) {
		end := strings.IndexByte(t[1:], '"')
		if end >= 0 {
			after := strings.TrimLeft(t[end+2:], " ")
			if strings.HasPrefix(after, "|") {
				sc.pos = len(sc.s) - len(after) + 1
				return unescape(t[1 : end+1]), true
			}
		}
	}
	end := strings.IndexByte(inner, '|')
	if end < 0 {
		return "", false
	}
	sc.pos += 1 + end + 1
	return strings.TrimSpace(inner[:end]), true
}

// splitStatements splits a line on semicolons that are outside of shape
// delimiters, pipe labels and quotes.
func splitStatements(line string) []string {
	var (
		out    []string
		depth  int
		quoted bool
		piped  bool
		start  int
	)
	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case c == '"':
			quoted = !quoted
		case quoted:
		case c == '|':
			piped = !piped
		case piped:
		case c == '[' || c == '(' || c == '{':
			depth++
		case (c == ']' || c == ')' || c == '}') && depth > 0:
			depth--
		case c == ';' && depth == 0:
			out = append(out, line[start:i])
			start = i + 1
		}
	}
	return append(out, line[start:])
}

// unescape reverses the entity escaping used for quoted labels.
func unescape(s string) string {
	s = strings.ReplaceAll(s, "#quot;", `"`)
	return strings.TrimSpace(strings.ReplaceAll(s, "#35;", "#"))
}
