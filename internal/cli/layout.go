package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/mermedit/pkg/layout"
	"github.com/matzehuels/mermedit/pkg/pipeline"
)

// layoutFlags are the layout settings that can be overridden per command.
type layoutFlags struct {
	direction  string
	nodeWidth  float64
	nodeHeight float64
	nodeSep    float64
	rankSep    float64
	maxNodes   int
}

func (f *layoutFlags) register(fs *pflag.FlagSet) {
	d := layout.DefaultOptions()
	fs.StringVarP(&f.direction, "direction", "d", "", "rank direction: TB, BT, LR, RL (default: document header)")
	fs.Float64Var(&f.nodeWidth, "node-width", d.NodeWidth, "node width")
	fs.Float64Var(&f.nodeHeight, "node-height", d.NodeHeight, "node height")
	fs.Float64Var(&f.nodeSep, "node-sep", d.NodeSep, "gap between nodes of one rank")
	fs.Float64Var(&f.rankSep, "rank-sep", d.RankSep, "gap between ranks")
	fs.IntVar(&f.maxNodes, "max-nodes", d.MaxNodes, "largest graph laid out by the layered engine")
}

// apply copies the flags the user set onto opts.
func (f *layoutFlags) apply(fs *pflag.FlagSet, opts *layout.Options) error {
	if fs.Changed("direction") {
		switch d := layout.Direction(strings.ToUpper(f.direction)); d {
		case layout.TopBottom, layout.BottomTop, layout.LeftRight, layout.RightLeft:
			opts.Direction = d
		case "TD":
			opts.Direction = layout.TopBottom
		default:
			return fmt.Errorf("invalid direction: %s (must be TB, BT, LR or RL)", f.direction)
		}
	}
	if fs.Changed("node-width") {
		opts.NodeWidth = f.nodeWidth
	}
	if fs.Changed("node-height") {
		opts.NodeHeight = f.nodeHeight
	}
	if fs.Changed("node-sep") {
		opts.NodeSep = f.nodeSep
	}
	if fs.Changed("rank-sep") {
		opts.RankSep = f.rankSep
	}
	if fs.Changed("max-nodes") {
		opts.MaxNodes = f.maxNodes
	}
	return nil
}

// layoutCommand creates the layout command for computing node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [document]",
		Short: "Compute node positions for a document",
		Long: `Compute node positions for a document.

The layout command parses a document and places its nodes with the layered
layout used by the editor canvas. The output is a layout.json file holding
node centres, edge routes and the overall size.

Back edges of cycles are reversed before placement. Graphs larger than
--max-nodes fall back to a simple diagonal placement.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			if err := flags.apply(cmd.Flags(), &opts.Layout); err != nil {
				return err
			}
			opts.Refresh = refresh
			return c.runLayout(cmd.Context(), inputArg(args), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json, - for stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached")
	flags.register(cmd.Flags())

	return cmd
}

// runLayout parses the document, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	text, err := readDocument(input)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g := pipeline.Parse(ctx, text)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out %d nodes...", len(g.Nodes)))
	spinner.Start()

	res, cacheHit, err := runner.GenerateLayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}

	outputPath := output
	if outputPath == "" {
		outputPath = derivePath(input, ".layout.json", "diagram")
	}
	if err := writeOutput(outputPath, append(data, '\n')); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	if toStdout(outputPath) {
		return nil
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(g.Nodes), len(g.Edges), cacheHit)
	if res.Reversed > 0 {
		printDetail("%d back edges reversed", res.Reversed)
	}
	if res.Degraded {
		printWarning("Fallback placement used")
	}
	printNewline()
	printNextStep("Render", appName+" render "+displayInput(input))

	return nil
}

// inputArg returns the document argument, or standard input.
func inputArg(args []string) string {
	if len(args) == 0 {
		return stdinPath
	}
	return args[0]
}

func displayInput(input string) string {
	if toStdout(input) {
		return "<document>"
	}
	return input
}
