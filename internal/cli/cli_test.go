package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/mermedit/internal/config"
	merrors "github.com/matzehuels/mermedit/pkg/errors"
	"github.com/matzehuels/mermedit/pkg/layout"
	"github.com/matzehuels/mermedit/pkg/notation"
)

// runCLI executes the root command with args, feeding in to standard
// input, and returns what was written to standard output. The working
// directory and XDG paths point into fresh temporary directories.
func runCLI(t *testing.T, in string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	oldOut, oldIn, oldSpin := stdout, stdin, spinnerOut
	stdout, stdin, spinnerOut = &out, strings.NewReader(in), io.Discard
	t.Cleanup(func() { stdout, stdin, spinnerOut = oldOut, oldIn, oldSpin })

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseCommand(t *testing.T) {
	out, err := runCLI(t, "graph LR\n  A[Start]-->B\n", "parse")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var g notation.Graph
	if err := json.Unmarshal([]byte(out), &g); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if g.Kind != notation.KindFlowchart {
		t.Errorf("Kind = %v, want %v", g.Kind, notation.KindFlowchart)
	}
	if g.Direction != "LR" {
		t.Errorf("Direction = %q, want %q", g.Direction, "LR")
	}
	if len(g.Nodes) != 2 || len(g.Edges) != 1 {
		t.Fatalf("got %d nodes, %d edges, want 2, 1", len(g.Nodes), len(g.Edges))
	}
	if g.Nodes[0].Label != "Start" {
		t.Errorf("Nodes[0].Label = %q, want %q", g.Nodes[0].Label, "Start")
	}
}

func TestParseCommandToFile(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "graph.json")

	out, err := runCLI(t, "graph TD\nA-->B", "parse", "-o", output)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(out, output) {
		t.Errorf("output should name %s, got %q", output, out)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("output file: %v", err)
	}
}

func TestParseCommandCheck(t *testing.T) {
	// Parse alone never fails.
	if _, err := runCLI(t, "hello world\nA-->B", "parse"); err != nil {
		t.Fatalf("parse without --check: %v", err)
	}

	_, err := runCLI(t, "hello world\nA-->B", "parse", "--check")
	if err == nil {
		t.Fatal("parse --check should fail without a diagram header")
	}
	if !merrors.Is(err, merrors.ErrCodeSyntax) {
		t.Errorf("error code = %v, want %v", merrors.GetCode(err), merrors.ErrCodeSyntax)
	}
	var le *notation.LineError
	if !errors.As(err, &le) || le.Line != 1 {
		t.Errorf("want a line error at line 1, got %v", err)
	}
}

func TestGenerateCommand(t *testing.T) {
	in := `{"nodes":[{"id":"A","label":"Start"},{"id":"B"}],"edges":[{"source":"A","target":"B"}]}`
	out, err := runCLI(t, in, "generate")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := "graph TD\n  A[Start]\n  B\n  A-->B\n"
	if out != want {
		t.Errorf("generate output = %q, want %q", out, want)
	}
}

func TestGenerateCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"malformed json", `{"nodes":`},
		{"invalid node id", `{"nodes":[{"id":"a b"}],"edges":[]}`},
		{"label with newline", `{"nodes":[{"id":"A","label":"x\ny"}],"edges":[]}`},
		{"edge to invalid id", `{"nodes":[{"id":"A"}],"edges":[{"source":"A","target":""}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.in, "generate")
			if !merrors.Is(err, merrors.ErrCodeInvalidInput) {
				t.Errorf("generate error = %v, want code %v", err, merrors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestParseGenerateRoundTrip(t *testing.T) {
	graphJSON, err := runCLI(t, "graph TD\n  A[Start]-->|go|B[End]\n", "parse")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	text, err := runCLI(t, graphJSON, "generate")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	orig := notation.Parse("graph TD\n  A[Start]-->|go|B[End]\n")
	if got := notation.Parse(text); !got.SameElements(orig) {
		t.Errorf("round trip changed the graph:\n%s", text)
	}
}

func TestTemplatesCommand(t *testing.T) {
	out, err := runCLI(t, "", "templates")
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	for _, tmpl := range notation.Templates() {
		if !strings.Contains(out, tmpl.Name) {
			t.Errorf("template list should contain %q", tmpl.Name)
		}
	}

	out, err = runCLI(t, "", "templates", "er")
	if err != nil {
		t.Fatalf("templates er: %v", err)
	}
	if !strings.HasPrefix(out, "erDiagram") {
		t.Errorf("templates er = %q, want erDiagram document", out)
	}

	_, err = runCLI(t, "", "templates", "nope")
	if !merrors.Is(err, merrors.ErrCodeTemplateNotFound) {
		t.Errorf("unknown template error = %v, want code %v", err, merrors.ErrCodeTemplateNotFound)
	}
}

func TestLayoutCommand(t *testing.T) {
	doc := writeFile(t, "flow.mmd", "graph LR\nA-->B\nB-->C\n")

	out, err := runCLI(t, "", "layout", doc, "--no-cache", "-o", "-")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}

	var res layout.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode layout: %v\n%s", err, out)
	}
	if len(res.Nodes) != 3 {
		t.Fatalf("got %d placements, want 3", len(res.Nodes))
	}
	if res.Ranks != 3 {
		t.Errorf("Ranks = %d, want 3", res.Ranks)
	}
	a, _ := res.Position("A")
	b, _ := res.Position("B")
	if a.X >= b.X {
		t.Errorf("LR layout should place A left of B, got A=%v B=%v", a, b)
	}
}

func TestLayoutCommandDirectionFlag(t *testing.T) {
	doc := writeFile(t, "flow.mmd", "graph LR\nA-->B\n")

	out, err := runCLI(t, "", "layout", doc, "--no-cache", "-o", "-", "-d", "TB")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	var res layout.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode layout: %v", err)
	}
	a, _ := res.Position("A")
	b, _ := res.Position("B")
	if a.Y >= b.Y {
		t.Errorf("--direction TB should place A above B, got A=%v B=%v", a, b)
	}

	if _, err := runCLI(t, "", "layout", doc, "-d", "XY"); err == nil {
		t.Error("layout with an invalid direction should fail")
	}
}

func TestLayoutCommandWritesDerivedPath(t *testing.T) {
	doc := writeFile(t, "flow.mmd", "graph TD\nA-->B\n")

	out, err := runCLI(t, "", "layout", doc)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	want := strings.TrimSuffix(doc, ".mmd") + ".layout.json"
	if _, err := os.Stat(want); err != nil {
		t.Errorf("layout file %s: %v", want, err)
	}
	if !strings.Contains(out, "Layout complete") {
		t.Errorf("output = %q, want success line", out)
	}
}

func TestRenderCommandRejectsFormat(t *testing.T) {
	_, err := runCLI(t, "graph TD\nA-->B", "render", "-f", "pdf")
	if err == nil {
		t.Fatal("render -f pdf should fail")
	}
	if !merrors.Is(err, merrors.ErrCodeInvalidFormat) {
		t.Errorf("error code = %v, want %v", merrors.GetCode(err), merrors.ErrCodeInvalidFormat)
	}
}

func TestConfigCommands(t *testing.T) {
	path := writeFile(t, config.FileName, "[server]\naddr = \"0.0.0.0:9000\"\n")

	out, err := runCLI(t, "", "--config", path, "config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("config path = %q, want %q", strings.TrimSpace(out), path)
	}

	out, err = runCLI(t, "", "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, `"0.0.0.0:9000"`) {
		t.Errorf("config show should contain the configured address:\n%s", out)
	}
}

func TestConfigInvalidFile(t *testing.T) {
	path := writeFile(t, config.FileName, "[server]\nport = 9000\n")

	_, err := runCLI(t, "", "--config", path, "templates")
	if !merrors.Is(err, merrors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want code %v", err, merrors.ErrCodeInvalidConfig)
	}
}

func TestConfigInit(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)

	c := New(io.Discard, LogInfo)
	var out bytes.Buffer
	oldOut := stdout
	stdout = &out
	t.Cleanup(func() { stdout = oldOut })

	cmd := c.configInitCommand()
	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("config init: %v", err)
	}
	path := filepath.Join(home, appName, config.FileName)
	if _, _, err := config.Load(path); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
	if err := cmd.RunE(cmd, nil); err == nil {
		t.Error("config init should refuse to overwrite without --force")
	}
}

func TestCacheCommands(t *testing.T) {
	cacheHome := t.TempDir()

	c := New(io.Discard, LogInfo)
	c.Config.Cache.Dir = filepath.Join(cacheHome, "entries")
	var out bytes.Buffer
	oldOut := stdout
	stdout = &out
	t.Cleanup(func() { stdout = oldOut })

	path := c.cachePathCommand()
	if err := path.RunE(path, nil); err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != c.Config.Cache.Dir {
		t.Errorf("cache path = %q, want %q", got, c.Config.Cache.Dir)
	}

	sub := filepath.Join(c.Config.Cache.Dir, "ab")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"one.json", "two.json"} {
		if err := os.WriteFile(filepath.Join(sub, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	out.Reset()
	clearCmd := c.cacheClearCommand()
	if err := clearCmd.RunE(clearCmd, nil); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out.String(), "Cleared 2") {
		t.Errorf("cache clear output = %q, want 2 entries cleared", out.String())
	}
	if entries, _ := os.ReadDir(sub); len(entries) != 0 {
		t.Errorf("cache dir still holds %d entries", len(entries))
	}
}

func TestCacheDirDefault(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	c := New(io.Discard, LogInfo)
	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/custom-cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "png", []string{"png"}},
		{"multiple formats", "svg,png", []string{"svg", "png"}},
		{"spaces and case", " SVG , png ", []string{"svg", "png"}},
		{"empty entries dropped", "svg,,", []string{"svg"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		output  string
		formats []string
		want    map[string]string
	}{
		{"derived from input", "docs/flow.mmd", "", []string{"svg"}, map[string]string{"svg": "docs/flow.svg"}},
		{"stdin input", "-", "", []string{"png"}, map[string]string{"png": "diagram.png"}},
		{"single explicit output", "flow.mmd", "out/picture.svg", []string{"svg"}, map[string]string{"svg": "out/picture.svg"}},
		{"base path", "flow.mmd", "out/picture", []string{"svg", "png"}, map[string]string{"svg": "out/picture.svg", "png": "out/picture.png"}},
		{"base path with extension", "flow.mmd", "out/picture.svg", []string{"svg", "png"}, map[string]string{"svg": "out/picture.svg", "png": "out/picture.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPaths(tt.input, tt.output, tt.formats)
			for f, want := range tt.want {
				if got[f] != want {
					t.Errorf("outputPaths()[%s] = %q, want %q", f, got[f], want)
				}
			}
		})
	}
}

func TestDerivePath(t *testing.T) {
	tests := []struct {
		input, suffix, want string
	}{
		{"flow.mmd", ".layout.json", "flow.layout.json"},
		{"dir/flow", ".svg", "dir/flow.svg"},
		{"-", ".layout.json", "diagram.layout.json"},
		{"", ".svg", "diagram.svg"},
	}
	for _, tt := range tests {
		if got := derivePath(tt.input, tt.suffix, "diagram"); got != tt.want {
			t.Errorf("derivePath(%q, %q) = %q, want %q", tt.input, tt.suffix, got, tt.want)
		}
	}
}
