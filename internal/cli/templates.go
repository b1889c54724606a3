package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	merrors "github.com/matzehuels/mermedit/pkg/errors"
	"github.com/matzehuels/mermedit/pkg/notation"
)

// templatesCommand lists the built-in templates or prints one of them.
func (c *CLI) templatesCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "templates [name]",
		Short: "List built-in templates or print one",
		Long: `List built-in templates or print one.

Without arguments the templates are listed. With a name the template text
is printed, ready to be redirected into a file or passed to 'edit'.`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return templateNames(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(stdout, templateTable(notation.Templates()))
				return nil
			}
			t, ok := notation.LookupTemplate(args[0])
			if !ok {
				return merrors.New(merrors.ErrCodeTemplateNotFound, "unknown template %q (available: %s)",
					args[0], strings.Join(templateNames(), ", "))
			}
			if err := writeOutput(output, []byte(t.Text+"\n")); err != nil {
				return fmt.Errorf("write output %s: %w", output, err)
			}
			if !toStdout(output) {
				printSuccess("Wrote %s template", t.Title)
				printFile(output)
				printNewline()
				printNextStep("Edit", appName+" edit "+output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

// templateNames returns the template names in sorted order.
func templateNames() []string {
	var names []string
	for _, t := range notation.Templates() {
		names = append(names, t.Name)
	}
	return names
}

// templateTable renders templates as a bordered table.
func templateTable(templates []notation.Template) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	rows := make([][]string, len(templates))
	for i, t := range templates {
		rows[i] = []string{t.Name, t.Title, t.Kind.String(), t.Description}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("NAME", "TITLE", "KIND", "DESCRIPTION").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			switch col {
			case 0:
				return base.Foreground(colorCyan)
			case 2, 3:
				return base.Foreground(colorGray)
			}
			return base
		})
	return t.Render()
}
