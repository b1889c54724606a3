package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	merrors "github.com/matzehuels/mermedit/pkg/errors"
	"github.com/matzehuels/mermedit/pkg/notation"
)

// generateCommand creates the generate command, the inverse of parse.
func (c *CLI) generateCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "generate [graph.json]",
		Short: "Write document text for a graph model",
		Long: `Write document text for a graph model.

The input is JSON with "nodes" and "edges" as printed by 'parse'. The output
is a flowchart: one declaration per node and one link per edge, in input
order. Comments, shapes and styling are not preserved.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), inputArg(args), output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, input, output string) error {
	data, err := readDocument(input)
	if err != nil {
		return fmt.Errorf("read graph: %w", err)
	}

	var g notation.Graph
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		return merrors.Wrap(merrors.ErrCodeInvalidInput, err, "decode graph %s", displayInput(input))
	}
	if err := validateGraph(g); err != nil {
		return err
	}

	text := notation.Generate(g.Nodes, g.Edges)
	loggerFromContext(ctx).Debug("generated", "nodes", len(g.Nodes), "edges", len(g.Edges), "bytes", len(text))

	if err := writeOutput(output, []byte(text)); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	if toStdout(output) {
		return nil
	}

	printSuccess("Generated document")
	printFile(output)
	printNewline()
	printNextStep("Render", appName+" render "+output)
	return nil
}

// validateGraph checks that every node ID and label can be written as
// document text.
func validateGraph(g notation.Graph) error {
	for _, n := range g.Nodes {
		if err := merrors.ValidateNodeID(n.ID); err != nil {
			return err
		}
		if err := merrors.ValidateLabel(n.Label); err != nil {
			return err
		}
	}
	for _, e := range g.Edges {
		if err := merrors.ValidateNodeID(e.Source); err != nil {
			return err
		}
		if err := merrors.ValidateNodeID(e.Target); err != nil {
			return err
		}
		if err := merrors.ValidateLabel(e.Label); err != nil {
			return err
		}
	}
	return nil
}
