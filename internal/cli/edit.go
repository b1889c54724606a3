package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	merrors "github.com/matzehuels/mermedit/pkg/errors"
	"github.com/matzehuels/mermedit/pkg/graphsync"
	"github.com/matzehuels/mermedit/pkg/layout"
	"github.com/matzehuels/mermedit/pkg/notation"
	"github.com/matzehuels/mermedit/pkg/render"
)

// moveStep is how far one arrow key moves a canvas node, in canvas pixels.
const moveStep = 20

// defaultEditPath is the file written when edit is started without one.
const defaultEditPath = "diagram.mmd"

// editCommand creates the edit command, a terminal editor with a live
// canvas.
func (c *CLI) editCommand() *cobra.Command {
	var (
		template string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "edit [document]",
		Short: "Edit a document with a live canvas in the terminal",
		Long: `Edit a document with a live canvas in the terminal.

The left pane holds the document text, the right pane the canvas laid out
from it. Text edits update the canvas after a short pause; moving or
deleting nodes on the canvas rewrites the text. The status line shows
whether the current revision renders.

A missing document starts from --template, or from a small flowchart.

Keys:
  tab          switch between text and canvas
  ctrl+s       save
  ctrl+c, esc  quit
  canvas: [ ]  select node, arrows move it, x deletes it`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultEditPath
			if len(args) == 1 {
				path = args[0]
			}
			return c.runEdit(cmd.Context(), path, template, noCache)
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "", "template for a new document (see 'templates')")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching of previews")
	_ = cmd.RegisterFlagCompletionFunc("template", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return templateNames(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (c *CLI) runEdit(ctx context.Context, path, template string, noCache bool) error {
	text, err := initialText(path, template)
	if err != nil {
		return err
	}

	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	// The editor owns the terminal. Layout fallbacks show in the status line.
	logger := log.New(io.Discard)

	previewCfg := c.Config.Render
	previewCfg.Format = render.FormatSVG
	gv := render.NewGraphviz(previewCfg, render.WithLogger(logger))
	defer gv.Close()

	keyer := c.Config.Cache.Keyer()
	renderer := render.NewCached(gv, store, keyer, render.KeyOpts(previewCfg), c.Config.Cache.TTL)

	var program *tea.Program
	debounce := graphsync.NewDebouncer(graphsync.DefaultDebounce, func(text string) {
		program.Send(textSettledMsg{text: text})
	})
	defer debounce.Stop()

	m := newEditorModel(ctx, editorDeps{
		path:     path,
		text:     text,
		sync:     graphsync.New(graphsync.WithEngine(layout.New(c.Config.Layout, layout.WithLogger(logger))), graphsync.WithLogger(logger), graphsync.WithPreservePinned(c.Config.Session.PreservePinned)),
		preview:  graphsync.NewPreview(renderer),
		debounce: debounce,
	})

	program = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := program.Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("editor: %w", err)
	}

	if em, ok := final.(editorModel); ok && em.dirty {
		printWarning("Unsaved changes to %s discarded", path)
	}
	return nil
}

// initialText returns the document at path, or the starting document for
// a new file.
func initialText(path, template string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if template != "" {
			return "", fmt.Errorf("%s exists; --template only applies to new documents", path)
		}
		text := string(data)
		return text, merrors.ValidateDocument(text)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	if template == "" {
		return notation.DefaultDocument, nil
	}
	t, ok := notation.LookupTemplate(template)
	if !ok {
		return "", merrors.New(merrors.ErrCodeTemplateNotFound, "unknown template %q", template)
	}
	return t.Text, nil
}

// =============================================================================
// Editor Model
// =============================================================================

type pane int

const (
	paneText pane = iota
	paneCanvas
)

var (
	editorBorderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	editorFocusStyle  = editorBorderStyle.BorderForeground(colorCyan)
	editorNodeStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	editorSelectStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	editorPinnedStyle = lipgloss.NewStyle().Foreground(colorGreen)
	editorErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
	editorStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	editorHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	editorMinPaneWidth = 20

	// editorMaxLines bounds the document length in the text pane.
	editorMaxLines = 999
)

// textSettledMsg carries the text once typing paused.
type textSettledMsg struct{ text string }

// previewMsg carries the outcome of a preview render.
type previewMsg struct {
	state graphsync.PreviewState
	shown bool
}

// savedMsg reports the outcome of writing the document.
type savedMsg struct {
	text string
	err  error
}

type editorDeps struct {
	path     string
	text     string
	sync     *graphsync.Controller
	preview  *graphsync.Preview
	debounce *graphsync.Debouncer
}

// editorModel is the bubbletea model of the edit command.
type editorModel struct {
	ctx      context.Context
	path     string
	editor   textarea.Model
	sync     *graphsync.Controller
	preview  *graphsync.Preview
	debounce *graphsync.Debouncer

	snap     graphsync.Snapshot
	status   graphsync.PreviewState
	focus    pane
	selected int
	width    int
	height   int

	savedText string
	dirty     bool
	message   string
	err       error
}

func newEditorModel(ctx context.Context, d editorDeps) editorModel {
	ta := textarea.New()
	ta.MaxHeight = editorMaxLines
	ta.ShowLineNumbers = true
	ta.Placeholder = notation.GeneratedHeader
	ta.SetValue(d.text)
	ta.Focus()

	return editorModel{
		ctx:       ctx,
		path:      d.path,
		editor:    ta,
		sync:      d.sync,
		preview:   d.preview,
		debounce:  d.debounce,
		savedText: d.text,
		width:     80,
		height:    24,
	}
}

func (m editorModel) Init() tea.Cmd {
	initial := m.editor.Value()
	return tea.Batch(textarea.Blink, func() tea.Msg { return textSettledMsg{text: initial} })
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case textSettledMsg:
		return m.applyText(msg.text)

	case previewMsg:
		if msg.shown {
			m.status = msg.state
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.savedText = msg.text
		m.dirty = m.editor.Value() != msg.text
		m.message = "saved " + m.path
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+s":
			if m.debounce != nil {
				m.debounce.Stop()
			}
			next, cmd := m.applyText(m.editor.Value())
			return next, tea.Batch(cmd, next.(editorModel).save())
		case "tab":
			return m.toggleFocus()
		}
		if m.focus == paneCanvas {
			return m.canvasKey(msg)
		}
	}

	if m.focus != paneText {
		return m, nil
	}
	before := m.editor.Value()
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if after := m.editor.Value(); after != before {
		m.dirty = after != m.savedText
		m.message = ""
		if m.debounce != nil {
			m.debounce.Push(after)
		}
	}
	return m, cmd
}

// applyText hands settled text to the controller and renders it when it
// produced a new revision.
func (m editorModel) applyText(text string) (tea.Model, tea.Cmd) {
	snap, changed := m.sync.SetText(m.ctx, text)
	m.snap = snap
	m.clampSelection()
	if !changed {
		return m, nil
	}
	return m, m.renderPreview(snap.Revision, snap.Text)
}

// applySnapshot shows a canvas-originated snapshot and writes its text
// into the editor without re-entering the controller.
func (m editorModel) applySnapshot(snap graphsync.Snapshot) (tea.Model, tea.Cmd) {
	changed := snap.Revision != m.snap.Revision
	m.snap = snap
	m.clampSelection()
	if !changed {
		return m, nil
	}
	m.editor.SetValue(snap.Text)
	m.dirty = snap.Text != m.savedText
	return m, m.renderPreview(snap.Revision, snap.Text)
}

func (m editorModel) renderPreview(rev uint64, text string) tea.Cmd {
	ctx, preview := m.ctx, m.preview
	return func() tea.Msg {
		state, shown := preview.Request(ctx, rev, text)
		return previewMsg{state: state, shown: shown}
	}
}

func (m editorModel) save() tea.Cmd {
	path, text := m.path, m.editor.Value()
	return func() tea.Msg {
		return savedMsg{text: text, err: writeOutput(path, []byte(text))}
	}
}

func (m editorModel) toggleFocus() (tea.Model, tea.Cmd) {
	if m.focus == paneText {
		m.focus = paneCanvas
		m.editor.Blur()
		return m, nil
	}
	m.focus = paneText
	return m, m.editor.Focus()
}

// canvasKey handles keys while the canvas has focus.
func (m editorModel) canvasKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	nodes := m.snap.Nodes
	if len(nodes) == 0 {
		return m, nil
	}
	switch msg.String() {
	case "]", "n":
		m.selected = (m.selected + 1) % len(nodes)
		return m, nil
	case "[", "p":
		m.selected = (m.selected - 1 + len(nodes)) % len(nodes)
		return m, nil
	case "x", "delete", "backspace":
		snap := m.sync.ApplyNodeChanges([]graphsync.NodeChange{{Type: graphsync.ChangeRemove, ID: nodes[m.selected].ID}})
		return m.applySnapshot(snap)
	}

	var dx, dy float64
	switch msg.String() {
	case "left", "h":
		dx = -moveStep
	case "right", "l":
		dx = moveStep
	case "up", "k":
		dy = -moveStep
	case "down", "j":
		dy = moveStep
	default:
		return m, nil
	}
	n := nodes[m.selected]
	snap, err := m.sync.MoveNode(n.ID, graphsync.Position{
		X: max(n.Position.X+dx, 0),
		Y: max(n.Position.Y+dy, 0),
	})
	if err != nil {
		m.err = err
		return m, nil
	}
	return m.applySnapshot(snap)
}

func (m *editorModel) clampSelection() {
	if m.selected >= len(m.snap.Nodes) {
		m.selected = max(len(m.snap.Nodes)-1, 0)
	}
}

// paneWidths splits the window between the text and canvas panes.
func (m editorModel) paneWidths() (text, canvas int) {
	inner := max(m.width-4, 2*editorMinPaneWidth)
	text = max(inner*2/5, editorMinPaneWidth)
	return text, max(inner-text, editorMinPaneWidth)
}

func (m editorModel) paneHeight() int { return max(m.height-4, 5) }

func (m *editorModel) resize() {
	w, _ := m.paneWidths()
	m.editor.SetWidth(w)
	m.editor.SetHeight(m.paneHeight())
}

func (m editorModel) View() string {
	textW, canvasW := m.paneWidths()
	h := m.paneHeight()

	textStyle, canvasStyle := editorBorderStyle, editorBorderStyle
	if m.focus == paneText {
		textStyle = editorFocusStyle
	} else {
		canvasStyle = editorFocusStyle
	}

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		textStyle.Width(textW).Height(h).Render(m.editor.View()),
		canvasStyle.Width(canvasW).Height(h).Render(drawCanvas(m.snap, m.selected, m.focus == paneCanvas, canvasW, h)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, panes, m.statusLine(), m.helpLine())
}

func (m editorModel) statusLine() string {
	parts := []string{
		m.path,
		fmt.Sprintf("rev %d", m.snap.Revision),
		m.snap.Kind.String(),
		fmt.Sprintf("%d nodes", len(m.snap.Nodes)),
	}
	if m.dirty {
		parts[0] += "*"
	}
	line := editorStatusStyle.Render(strings.Join(parts, " · "))

	switch {
	case m.err != nil:
		line += "  " + editorErrorStyle.Render(m.err.Error())
	case m.status.Error != "":
		line += "  " + editorErrorStyle.Render(m.status.Error)
	case len(m.status.Image) > 0:
		line += "  " + StyleSuccess.Render(fmt.Sprintf("preview ok (rev %d)", m.status.Revision))
	}
	if m.snap.Degraded {
		line += "  " + StyleWarning.Render("fallback layout")
	}
	if m.message != "" {
		line += "  " + StyleDim.Render(m.message)
	}
	return line
}

func (m editorModel) helpLine() string {
	if m.focus == paneCanvas {
		return editorHelpStyle.Render("tab text  [ ] select  arrows move  x delete  ctrl+s save  esc quit")
	}
	return editorHelpStyle.Render("tab canvas  ctrl+s save  esc quit")
}

// =============================================================================
// Canvas Drawing
// =============================================================================

// drawCanvas draws node boxes scaled into a w x h character grid, followed
// by the edge list when there is room.
func drawCanvas(snap graphsync.Snapshot, selected int, focused bool, w, h int) string {
	if len(snap.Nodes) == 0 {
		return StyleDim.Render("empty canvas")
	}

	gridH := max(h-min(len(snap.Edges), h/3)-1, 1)
	var maxX, maxY float64
	for _, n := range snap.Nodes {
		maxX = max(maxX, n.Position.X+n.Width)
		maxY = max(maxY, n.Position.Y+n.Height)
	}
	sx := float64(w-1) / max(maxX, 1)
	sy := float64(gridH-1) / max(maxY, 1)

	type cell struct {
		r     rune
		style *lipgloss.Style
	}
	grid := make([][]cell, gridH)
	for i := range grid {
		grid[i] = make([]cell, w)
		for j := range grid[i] {
			grid[i][j] = cell{r: ' '}
		}
	}

	for i, n := range snap.Nodes {
		style := &editorNodeStyle
		switch {
		case focused && i == selected:
			style = &editorSelectStyle
		case n.Pinned:
			style = &editorPinnedStyle
		}
		label := n.Label
		if label == "" {
			label = n.ID
		}
		box := []rune("[" + label + "]")
		row := min(int((n.Position.Y+n.Height/2)*sy), gridH-1)
		col := min(int(n.Position.X*sx), max(w-len(box), 0))
		for k, r := range box {
			if col+k >= w {
				break
			}
			grid[row][col+k] = cell{r: r, style: style}
		}
	}

	var b strings.Builder
	for i, row := range grid {
		if i > 0 {
			b.WriteByte('\n')
		}
		var run []rune
		var runStyle *lipgloss.Style
		flush := func() {
			if len(run) == 0 {
				return
			}
			if runStyle != nil {
				b.WriteString(runStyle.Render(string(run)))
			} else {
				b.WriteString(string(run))
			}
			run = run[:0]
		}
		for _, c := range row {
			if c.style != runStyle {
				flush()
				runStyle = c.style
			}
			run = append(run, c.r)
		}
		flush()
	}

	for i, e := range snap.Edges {
		if i >= h-gridH {
			break
		}
		b.WriteByte('\n')
		line := e.Source + " " + iconArrow + " " + e.Target
		if e.Label != "" {
			line += " (" + e.Label + ")"
		}
		b.WriteString(StyleDim.Render(line))
	}
	return b.String()
}
