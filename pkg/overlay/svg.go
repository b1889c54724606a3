package overlay

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

func classes(n *html.Node) []string {
	v, _ := attr(n, "class")
	return strings.Fields(v)
}

func isElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == tag
}

// closestGroup returns n itself when it is a <g>, else its nearest <g>
// ancestor.
func closestGroup(n *html.Node) *html.Node {
	for ; n != nil; n = n.Parent {
		if isElement(n, "g") {
			return n
		}
	}
	return nil
}

// textContent concatenates all text below n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// descendants calls fn for every element below n in document order until
// fn returns false.
func descendants(n *html.Node, fn func(*html.Node) bool) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && !fn(c) {
			return false
		}
		if !descendants(c, fn) {
			return false
		}
	}
	return true
}

var translateRe = regexp.MustCompile(`translate\(\s*([-+0-9.eE]+)(?:\s*[,\s]\s*([-+0-9.eE]+))?\s*\)`)

// translation reads the first translate() of a transform attribute.
func translation(n *html.Node) Point {
	v, _ := attr(n, "transform")
	m := translateRe.FindStringSubmatch(v)
	if m == nil {
		return Point{}
	}
	x, _ := strconv.ParseFloat(m[1], 64)
	y := 0.0
	if m[2] != "" {
		y, _ = strconv.ParseFloat(m[2], 64)
	}
	return Point{X: x, Y: y}
}

// setTranslation replaces the translate() of n's transform with p and
// keeps every other transform function after it.
func setTranslation(n *html.Node, p Point) {
	v, _ := attr(n, "transform")
	rest := strings.TrimSpace(translateRe.ReplaceAllString(v, ""))
	t := fmt.Sprintf("translate(%s, %s)", formatFloat(p.X), formatFloat(p.Y))
	if rest != "" {
		t += " " + rest
	}
	setAttr(n, "transform", t)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// style is an ordered list of CSS declarations from a style attribute.
type style [][2]string

func parseStyle(s string) style {
	var st style
	for _, decl := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if k = strings.TrimSpace(k); !ok || k == "" {
			continue
		}
		st = append(st, [2]string{k, strings.TrimSpace(v)})
	}
	return st
}

// set assigns a property; an empty value removes it.
func (st style) set(k, v string) style {
	for i, d := range st {
		if d[0] == k {
			if v == "" {
				return append(st[:i], st[i+1:]...)
			}
			st[i][1] = v
			return st
		}
	}
	if v == "" {
		return st
	}
	return append(st, [2]string{k, v})
}

func (st style) String() string {
	parts := make([]string, len(st))
	for i, d := range st {
		parts[i] = d[0] + ": " + d[1]
	}
	return strings.Join(parts, "; ")
}

// updateStyle applies props to n's style attribute, dropping the
// attribute once it is empty.
func updateStyle(n *html.Node, props ...string) {
	v, _ := attr(n, "style")
	st := parseStyle(v)
	for i := 0; i+1 < len(props); i += 2 {
		st = st.set(props[i], props[i+1])
	}
	if len(st) == 0 {
		removeAttr(n, "style")
		return
	}
	setAttr(n, "style", st.String())
}
