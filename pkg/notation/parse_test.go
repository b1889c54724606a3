package notation

import (
	"slices"
	"testing"
)

func nodeIDs(g Graph) []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

func labelOf(t *testing.T, g Graph, id string) string {
	t.Helper()
	n, ok := g.Node(id)
	if !ok {
		t.Fatalf("node %q not found in %v", id, nodeIDs(g))
	}
	return n.Label
}

func TestParse_FlowchartChain(t *testing.T) {
	g := Parse("graph TD\n  A[Start]-->B[Process]\n  B[Process]-->C[End]")

	if g.Kind != KindFlowchart {
		t.Errorf("Kind = %v, want flowchart", g.Kind)
	}
	if got, want := nodeIDs(g), []string{"A", "B", "C"}; !slices.Equal(got, want) {
		t.Fatalf("nodes = %v, want %v", got, want)
	}
	for id, want := range map[string]string{"A": "Start", "B": "Process", "C": "End"} {
		if got := labelOf(t, g, id); got != want {
			t.Errorf("label(%s) = %q, want %q", id, got, want)
		}
	}
	want := []Edge{{Source: "A", Target: "B"}, {Source: "B", Target: "C"}}
	if !slices.Equal(g.Edges, want) {
		t.Errorf("edges = %v, want %v", g.Edges, want)
	}
}

func TestParse_ERRelationship(t *testing.T) {
	g := Parse("erDiagram\n  UTENTE ||--o{ ORDINE : \"effettua\"")

	if g.Kind != KindER {
		t.Errorf("Kind = %v, want er", g.Kind)
	}
	if len(g.Nodes) != 2 {
		t.Fatalf("len(nodes) = %d, want 2", len(g.Nodes))
	}
	for _, n := range g.Nodes {
		if n.Kind != NodeKindEntity {
			t.Errorf("node %s kind = %q, want entity", n.ID, n.Kind)
		}
	}
	want := []Edge{{Source: "UTENTE", Target: "ORDINE", Label: "effettua"}}
	if !slices.Equal(g.Edges, want) {
		t.Errorf("edges = %v, want %v", g.Edges, want)
	}
}

func TestParse_EREntityBlocks(t *testing.T) {
	g := Parse(`erDiagram
    CUSTOMER ||--o{ ORDER : places
    CUSTOMER {
        int id
        string name
    }
    LINE-ITEM {
    }
    ORDER }|..|{ LINE-ITEM : "has"`)

	if got, want := nodeIDs(g), []string{"CUSTOMER", "ORDER", "LINE-ITEM"}; !slices.Equal(got, want) {
		t.Fatalf("nodes = %v, want %v", got, want)
	}
	c, _ := g.Node("CUSTOMER")
	if !slices.Equal(c.Attributes, []string{"int id", "string name"}) {
		t.Errorf("CUSTOMER attributes = %v", c.Attributes)
	}
	want := []Edge{
		{Source: "CUSTOMER", Target: "ORDER", Label: "places"},
		{Source: "ORDER", Target: "LINE-ITEM", Label: "has"},
	}
	if !slices.Equal(g.Edges, want) {
		t.Errorf("edges = %v, want %v", g.Edges, want)
	}
}

func TestParse_SynthesizesUndeclaredEndpoints(t *testing.T) {
	g := Parse("graph LR\nX-->Y\nY-->X\nX-->Z")

	if got, want := nodeIDs(g), []string{"X", "Y", "Z"}; !slices.Equal(got, want) {
		t.Fatalf("nodes = %v, want %v", got, want)
	}
	for _, id := range []string{"X", "Y", "Z"} {
		if got := labelOf(t, g, id); got != id {
			t.Errorf("label(%s) = %q, want id as label", id, got)
		}
	}
	if g.Direction != "LR" {
		t.Errorf("Direction = %q, want LR", g.Direction)
	}
}

func TestParse_LabelPrecedence(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"declaration after lazy creation", "graph TD\nA-->B\nA[Later]", "Later"},
		{"declaration before edge", "graph TD\nA[Early]\nA-->B", "Early"},
		{"last explicit wins", "graph TD\nA[One]\nA-->B\nA[Two]\nB-->A", "Two"},
		{"inline declaration wins", "graph TD\nB-->A\nA[Old]\nC-->A[New]", "New"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Parse(tt.text)
			if got := labelOf(t, g, "A"); got != tt.want {
				t.Errorf("label(A) = %q, want %q", got, tt.want)
			}
			seen := map[string]bool{}
			for _, n := range g.Nodes {
				if seen[n.ID] {
					t.Errorf("duplicate node %q", n.ID)
				}
				seen[n.ID] = true
			}
		})
	}
}

func TestParse_EdgeForms(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []Edge
	}{
		{"plain", "A-->B", []Edge{{Source: "A", Target: "B"}}},
		{"spaced", "A --> B", []Edge{{Source: "A", Target: "B"}}},
		{"open link", "A --- B", []Edge{{Source: "A", Target: "B"}}},
		{"dotted", "A -.-> B", []Edge{{Source: "A", Target: "B"}}},
		{"thick", "A ==> B", []Edge{{Source: "A", Target: "B"}}},
		{"pipe label", "A -->|Yes| B", []Edge{{Source: "A", Target: "B", Label: "Yes"}}},
		{"quoted pipe label", `A -->|"a|b"| B`, []Edge{{Source: "A", Target: "B", Label: "a|b"}}},
		{"inline label", "A -- maybe --> B", []Edge{{Source: "A", Target: "B", Label: "maybe"}}},
		{"dotted inline label", "A -. later .-> B", []Edge{{Source: "A", Target: "B", Label: "later"}}},
		{"bidirectional glyph", "A <--> B", []Edge{{Source: "A", Target: "B"}}},
		{"cross head", "A --x B", []Edge{{Source: "A", Target: "B"}}},
		{"chain", "A --> B --> C", []Edge{{Source: "A", Target: "B"}, {Source: "B", Target: "C"}}},
		{"group", "A & B --> C", []Edge{{Source: "A", Target: "C"}, {Source: "B", Target: "C"}}},
		{"class shorthand", "A:::hot --> B", []Edge{{Source: "A", Target: "B"}}},
		{"semicolons", "A-->B; B-->C", []Edge{{Source: "A", Target: "B"}, {Source: "B", Target: "C"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Parse("flowchart TD\n" + tt.line)
			if !slices.Equal(g.Edges, tt.want) {
				t.Errorf("Parse(%q) edges = %v, want %v", tt.line, g.Edges, tt.want)
			}
		})
	}
}

func TestParse_Shapes(t *testing.T) {
	tests := []struct {
		line  string
		label string
	}{
		{"A[Box]", "Box"},
		{"A(Round)", "Round"},
		{"A{Decision?}", "Decision?"},
		{"A((Circle))", "Circle"},
		{"A([Stadium])", "Stadium"},
		{"A[[Subroutine]]", "Subroutine"},
		{"A[(Database)]", "Database"},
		{"A{{Hexagon}}", "Hexagon"},
		{"A>Flag]", "Flag"},
		{"A[/Lean/]", "Lean"},
		{`A["Quoted [text]"]`, "Quoted [text]"},
		{`A["say #quot;hi#quot;"]`, `say "hi"`},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			g := Parse("graph TD\n" + tt.line)
			if got := labelOf(t, g, "A"); got != tt.label {
				t.Errorf("label = %q, want %q", got, tt.label)
			}
		})
	}
}

func TestParse_SkipsUnrecognizedLines(t *testing.T) {
	g := Parse(`graph TD
    %% a comment
    A[Start] --> B
    style A fill:#f9f
    classDef hot fill:#f00
    class B hot
    subgraph one
      C[Inside]
    end
    ??? not a statement
    D[unterminated --> E`)

	if got, want := nodeIDs(g), []string{"A", "B", "C"}; !slices.Equal(got, want) {
		t.Errorf("nodes = %v, want %v", got, want)
	}
	if len(g.Edges) != 1 {
		t.Errorf("len(edges) = %d, want 1", len(g.Edges))
	}
}

func TestParse_WithoutHeader(t *testing.T) {
	g := Parse("A-->B")
	if g.Kind != KindUnknown {
		t.Errorf("Kind = %v, want unknown", g.Kind)
	}
	if len(g.Nodes) != 2 || len(g.Edges) != 1 {
		t.Errorf("got %d nodes, %d edges; want 2, 1", len(g.Nodes), len(g.Edges))
	}
}

func TestParse_BareIDsOnlyInFlowcharts(t *testing.T) {
	if g := Parse("graph TD\nA"); len(g.Nodes) != 1 {
		t.Errorf("flowchart bare id: len(nodes) = %d, want 1", len(g.Nodes))
	}
	if g := Parse("sequenceDiagram\nautonumber"); len(g.Nodes) != 0 {
		t.Errorf("sequence bare word: len(nodes) = %d, want 0", len(g.Nodes))
	}
}

func TestParse_Empty(t *testing.T) {
	for _, text := range []string{"", "   \n\n", "graph TD", "erDiagram\n%% nothing"} {
		g := Parse(text)
		if !g.Empty() || len(g.Edges) != 0 {
			t.Errorf("Parse(%q) = %+v, want empty graph", text, g)
		}
		if g.Nodes == nil || g.Edges == nil {
			t.Errorf("Parse(%q) returned nil slices", text)
		}
	}
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		text string
		want DiagramKind
	}{
		{"graph TD\nA-->B", KindFlowchart},
		{"flowchart LR", KindFlowchart},
		{"%% comment\nerDiagram", KindER},
		{"sequenceDiagram", KindSequence},
		{"classDiagram", KindClass},
		{"stateDiagram-v2", KindState},
		{"pie title Pets", KindPie},
		{"A-->B", KindUnknown},
		{"", KindUnknown},
	}
	for _, tt := range tests {
		if got := DetectKind(tt.text); got != tt.want {
			t.Errorf("DetectKind(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestDiagramKind_TextRoundTrip(t *testing.T) {
	for kind := range kindNames {
		b, _ := kind.MarshalText()
		var got DiagramKind
		if err := got.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%s) error = %v", b, err)
		}
		if got != kind {
			t.Errorf("UnmarshalText(%s) = %v, want %v", b, got, kind)
		}
	}
}

func TestTemplates(t *testing.T) {
	all := Templates()
	if len(all) != len(templates) {
		t.Fatalf("len(Templates()) = %d, want %d", len(all), len(templates))
	}
	for _, tpl := range all {
		if tpl.Kind == KindUnknown {
			t.Errorf("template %s has unknown kind", tpl.Name)
		}
	}
	fc, ok := LookupTemplate("flowchart")
	if !ok {
		t.Fatal("LookupTemplate(flowchart) not found")
	}
	g := Parse(fc.Text)
	if len(g.Nodes) != 5 || len(g.Edges) != 5 {
		t.Errorf("flowchart template: %d nodes, %d edges; want 5, 5", len(g.Nodes), len(g.Edges))
	}
	er, _ := LookupTemplate("er")
	if g := Parse(er.Text); len(g.Nodes) != 3 || len(g.Edges) != 2 {
		t.Errorf("er template: %d nodes, %d edges; want 3, 2", len(g.Nodes), len(g.Edges))
	}
	if _, ok := LookupTemplate("nope"); ok {
		t.Error("LookupTemplate(nope) found")
	}
}

func TestEdgeIDs(t *testing.T) {
	tests := []struct {
		name  string
		edges []Edge
		want  []string
	}{
		{"distinct", []Edge{{Source: "A", Target: "B"}, {Source: "B", Target: "A"}}, []string{"eA-B", "eB-A"}},
		{"parallel", []Edge{{Source: "A", Target: "B"}, {Source: "A", Target: "B"}}, []string{"eA-B", "eA-B-1"}},
		{"dash in target", []Edge{{Source: "a", Target: "b"}, {Source: "a", Target: "b"}, {Source: "a", Target: "b-1"}}, []string{"ea-b", "ea-b-1", "ea-b-1-1"}},
		{"dash first", []Edge{{Source: "a", Target: "b-1"}, {Source: "a", Target: "b"}, {Source: "a", Target: "b"}}, []string{"ea-b-1", "ea-b", "ea-b-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AssignEdgeIDs(tt.edges); !slices.Equal(got, tt.want) {
				t.Errorf("AssignEdgeIDs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse_ERUnclosedBlock(t *testing.T) {
	g := Parse("erDiagram\n UTENTE {\n string nome\n UTENTE ||--o{ ORDINE : \"effettua\"\n ORDINE ||--|{ RIGA : \"contiene\"")

	if got, want := nodeIDs(g), []string{"UTENTE", "ORDINE", "RIGA"}; !slices.Equal(got, want) {
		t.Fatalf("nodes = %v, want %v", got, want)
	}
	u, _ := g.Node("UTENTE")
	if !slices.Equal(u.Attributes, []string{"string nome"}) {
		t.Errorf("UTENTE attributes = %v, want [string nome]", u.Attributes)
	}
	want := []Edge{
		{Source: "UTENTE", Target: "ORDINE", Label: "effettua"},
		{Source: "ORDINE", Target: "RIGA", Label: "contiene"},
	}
	if !slices.Equal(g.Edges, want) {
		t.Errorf("edges = %v, want %v", g.Edges, want)
	}
}
