package notation

import (
	"fmt"
	"strings"
)

// LineError reports the first line of a document that the grammar of its
// diagram kind cannot read. Line is 1-based and counts every line of the
// original text, including blank ones.
type LineError struct {
	Line    int
	Text    string
	Message string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Check validates text more strictly than [Parse]: where Parse silently
// skips unreadable lines, Check reports the first one. A missing or
// unknown header is an error. Only flowchart and entity-relationship
// bodies are checked line by line; other kinds pass once their header is
// recognized. Empty text is valid.
func Check(text string) error {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	kind := KindUnknown
	headerSeen := false
	inEntity := false

	for i, l := range raw {
		line := strings.TrimSpace(l)
		if line == "" || isComment(line) {
			continue
		}
		if !headerSeen {
			headerSeen = true
			k, ok := headerKeywords[strings.Fields(line)[0]]
			if !ok {
				return &LineError{Line: i + 1, Text: line, Message: "no diagram type detected"}
			}
			kind = k
			continue
		}

		switch kind {
		case KindFlowchart:
			for _, stmt := range splitStatements(line) {
				stmt = strings.TrimSpace(stmt)
				if stmt == "" || isDirective(stmt) {
					continue
				}
				if _, ok := scanStatement(stmt); !ok {
					return &LineError{Line: i + 1, Text: line, Message: fmt.Sprintf("cannot parse statement %q", stmt)}
				}
			}
		case KindER:
			switch {
			case inEntity && relationRe.MatchString(line):
				return &LineError{Line: i + 1, Text: line, Message: "relationship inside an unterminated entity block"}
			case inEntity:
				inEntity = line != "}"
			case entityOpenRe.MatchString(line):
				inEntity = !strings.HasSuffix(line, "}")
			case relationRe.MatchString(line):
			default:
				return &LineError{Line: i + 1, Text: line, Message: "expected entity block or relationship"}
			}
		}
	}
	if inEntity {
		return &LineError{Line: len(raw), Message: "unterminated entity block"}
	}
	return nil
}
