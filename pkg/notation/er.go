package notation

import (
	"regexp"
	"strings"
)

var (
	// entityOpenRe matches the opening line of an entity block: NAME {
	entityOpenRe = regexp.MustCompile(`^([\p{L}\p{N}_-]+)\s*\{\s*(\})?\s*$`)

	// relationRe matches NAME1 ||--o{ NAME2 : "label" (quotes optional).
	relationRe = regexp.MustCompile(`^([\p{L}\p{N}_-]+)\s*(\|o|\|\||\}o|\}\|)(--|\.\.)(o\||\|\||o\{|\|\{)\s*([\p{L}\p{N}_-]+)\s*:\s*(?:"([^"]*)"|(.+))$`)
)

// parseER applies the entity-relationship grammar. Every node it creates
// has kind [NodeKindEntity].
func parseER(lines []string, h header) *builder {
	b := newBuilder(NodeKindEntity)
	current := -1 // index of the entity whose block is open

	for _, line := range body(lines, h) {
		// A relationship line closes an unterminated block.
		if m := relationRe.FindStringSubmatch(line); m != nil {
			current = -1
			label := m[6]
			if label == "" {
				label = strings.TrimSpace(m[7])
			}
			b.connect(m[1], m[5], label)
			continue
		}

		if current >= 0 {
			if line == "}" {
				current = -1
				continue
			}
			b.nodes[current].Attributes = append(b.nodes[current].Attributes, line)
			continue
		}

		if m := entityOpenRe.FindStringSubmatch(line); m != nil {
			b.ensure(m[1])
			if m[2] == "" {
				current = b.index[m[1]]
			}
		}
	}
	return b
}
