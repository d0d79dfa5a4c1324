package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/regalloc/pkg/problem"
)

// maxListedMembers bounds the member list printed per class.
const maxListedMembers = 8

// geometryCommand creates the geometry command, which prints the p/q values
// of a problem's register classes.
func (c *CLI) geometryCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "geometry [problem]",
		Short: "Print register class geometry (p and q values)",
		Long: `Print register class geometry.

For each class, p is the number of registers it contains. For each pair of
classes, q(B, C) is the largest number of C registers a single B register
can block. A node of class B is trivially colorable when the sum of q(B, C)
over its neighbors' classes C is below p(B).`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProblemFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProblem(cmd, args[0])
			if err != nil {
				return fmt.Errorf("load problem %s: %w", args[0], err)
			}
			in, err := p.Build()
			if err != nil {
				return err
			}
			g := in.Geometry()
			c.Logger.Debug("built register set", "registers", g.Registers, "classes", len(g.Classes))

			out := cmd.OutOrStdout()
			if asJSON {
				return writeIndentedJSON(out, g)
			}
			printGeometry(out, g)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the geometry as JSON")

	return cmd
}

func printGeometry(w io.Writer, g *problem.Geometry) {
	fmt.Fprintln(w, StyleTitle.Render("Register classes"))
	printKeyValue(w, "registers", strconv.Itoa(g.Registers))
	printKeyValue(w, "nodes", strconv.Itoa(g.Nodes))
	printKeyValue(w, "edges", strconv.Itoa(g.Edges))
	printNewline(w)

	rows := make([][]string, len(g.Classes))
	for i, c := range g.Classes {
		rows[i] = []string{c.Name, strconv.Itoa(c.P), summarizeMembers(c.Members)}
	}
	fmt.Fprintln(w, newTable([]string{"Class", "p", "Members"}, rows, func(_, col int) lipgloss.Style {
		if col == 1 {
			return StyleHighlight
		}
		return lipgloss.NewStyle()
	}).Render())
	printNewline(w)

	fmt.Fprintln(w, StyleTitle.Render("q(row, column)"))
	headers := []string{""}
	for _, c := range g.Classes {
		headers = append(headers, c.Name)
	}
	rows = make([][]string, len(g.Q))
	for b, qs := range g.Q {
		rows[b] = []string{g.Classes[b].Name}
		for _, q := range qs {
			rows[b] = append(rows[b], strconv.Itoa(q))
		}
	}
	fmt.Fprintln(w, newTable(headers, rows, func(_, col int) lipgloss.Style {
		if col == 0 {
			return styleHeader
		}
		return StyleValue
	}).Render())
}

// summarizeMembers lists at most maxListedMembers registers.
func summarizeMembers(members []string) string {
	if len(members) <= maxListedMembers {
		return strings.Join(members, " ")
	}
	head := strings.Join(members[:maxListedMembers-1], " ")
	return fmt.Sprintf("%s … %s (%d)", head, members[len(members)-1], len(members))
}
