package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mermedit/pkg/pipeline"
	"github.com/matzehuels/mermedit/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file (single format) or base path (several)
	formats  string // comma-separated formats
	theme    string // colour theme
	rankDir  string // rank direction written to the image
	fontSize int    // label font size
	noCache  bool
	refresh  bool
}

// renderCommand creates the render command for exporting images.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [document]",
		Short: "Render a document to SVG or PNG",
		Long: `Render a document to SVG or PNG.

The document is validated first; a syntax error names the offending line
and no file is written. Several formats can be requested at once:

  mermedit render flow.mmd -f svg,png

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			popts := c.pipelineOptions()
			popts.Formats = parseFormats(opts.formats)
			if err := pipeline.ValidateFormats(popts.Formats); err != nil {
				return err
			}
			if cmd.Flags().Changed("theme") {
				popts.Render.Theme = opts.theme
			}
			if cmd.Flags().Changed("rankdir") {
				popts.Render.RankDir = strings.ToUpper(opts.rankDir)
			}
			if cmd.Flags().Changed("font-size") {
				popts.Render.FontSize = opts.fontSize
			}
			popts.Refresh = opts.refresh
			popts.SkipLayout = true
			return c.runRender(cmd.Context(), inputArg(args), popts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (several formats)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png (comma-separated)")
	cmd.Flags().StringVar(&opts.theme, "theme", "", "colour theme: default, dark, forest, neutral")
	cmd.Flags().StringVar(&opts.rankDir, "rankdir", "", "rank direction: TB, BT, LR, RL (default: document header)")
	cmd.Flags().IntVar(&opts.fontSize, "font-size", render.DefaultFontSize, "label font size")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "render even when cached")

	return cmd
}

// runRender renders every requested format and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, input string, popts pipeline.Options, opts renderOpts) error {
	text, err := readDocument(input)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	popts.Text = text
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(popts.Formats, ", ")))
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, popts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if opts.output == stdinPath && len(popts.Formats) == 1 {
		return writeOutput(stdinPath, artifacts[popts.Formats[0]])
	}

	paths := outputPaths(input, opts.output, popts.Formats)

	printSuccess("Render complete")
	for _, format := range popts.Formats {
		path := paths[format]
		if err := writeOutput(path, artifacts[format]); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		printFile(path)
	}
	g := pipeline.Parse(ctx, text)
	printStats(len(g.Nodes), len(g.Edges), cacheHit)
	prog.done(fmt.Sprintf("Rendered %d artifacts", len(artifacts)))

	return nil
}

// outputPaths maps each format to its output file. A single format writes
// to output as given; several formats treat output as a base path.
func outputPaths(input, output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && !toStdout(output) {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if toStdout(base) {
		base = derivePath(input, "", "diagram")
	} else if ext := extOf(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// extOf returns the extension of path when it names a known format.
func extOf(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	if err := pipeline.ValidateFormat(path[i+1:]); err != nil {
		return ""
	}
	return path[i:]
}
