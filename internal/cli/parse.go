package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	merrors "github.com/matzehuels/mermedit/pkg/errors"
	"github.com/matzehuels/mermedit/pkg/notation"
	"github.com/matzehuels/mermedit/pkg/pipeline"
)

// parseOpts holds the command-line flags for the parse command.
type parseOpts struct {
	output string // output file path (stdout if empty)
	check  bool   // fail on the first unreadable line
}

// parseCommand creates the parse command, which prints the graph model of
// a document.
func (c *CLI) parseCommand() *cobra.Command {
	var opts parseOpts

	cmd := &cobra.Command{
		Use:   "parse [document]",
		Short: "Print the graph model of a document as JSON",
		Long: `Print the graph model of a document as JSON.

Parsing never fails: lines that cannot be read are skipped and edges to
undeclared nodes create them. Use --check to report the first unreadable
line instead.

Reads standard input when no document is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(cmd.Context(), inputArg(args), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.check, "check", false, "report the first unreadable line as an error")

	return cmd
}

func (c *CLI) runParse(ctx context.Context, input string, opts parseOpts) error {
	text, err := readDocument(input)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	if err := merrors.ValidateDocument(text); err != nil {
		return err
	}
	if opts.check {
		if err := notation.Check(text); err != nil {
			return merrors.Wrap(merrors.ErrCodeSyntax, err, "%s", displayInput(input))
		}
	}

	g := pipeline.Parse(ctx, text)
	loggerFromContext(ctx).Debug("parsed", "kind", g.Kind, "nodes", len(g.Nodes), "edges", len(g.Edges))

	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	if err := writeOutput(opts.output, append(data, '\n')); err != nil {
		return fmt.Errorf("write output %s: %w", opts.output, err)
	}
	if toStdout(opts.output) {
		return nil
	}

	printSuccess("Parsed %s diagram", g.Kind)
	printFile(opts.output)
	printDetail("%d nodes, %d edges", len(g.Nodes), len(g.Edges))
	printNewline()
	printNextStep("Generate text", appName+" generate "+opts.output)
	return nil
}
