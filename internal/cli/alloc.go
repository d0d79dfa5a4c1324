package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/regalloc/pkg/errors"
	"github.com/matzehuels/regalloc/pkg/pipeline"
	"github.com/matzehuels/regalloc/pkg/problem"
)

// allocFormats are the formats alloc can write.
var allocFormats = []string{formatJSON, pipeline.FormatDOT, pipeline.FormatSVG, formatPDF, formatPNG}

// allocFlags holds the command-line flags for the alloc command.
type allocFlags struct {
	runFlags
	formats  string // comma-separated artifact formats
	output   string // base path for artifacts
	detailed bool   // label graph nodes with spill cost and degree
	json     bool   // print the result as JSON
}

// allocCommand creates the alloc command, which colors a problem and spills
// until it fits.
func (c *CLI) allocCommand() *cobra.Command {
	var flags allocFlags

	cmd := &cobra.Command{
		Use:   "alloc [problem]",
		Short: "Allocate registers for a problem file",
		Long: `Allocate registers for a problem file.

The problem (TOML or JSON, "-" for stdin) is simplified and colored. When
some node cannot be colored, the spill heuristic picks a node to drop and the
allocation is retried on the reduced graph, up to --max-attempts times.

Artifacts are written next to the input unless --output is given:
  json  the allocation result
  dot   the colored interference graph
  svg   the graph rendered with Graphviz
  pdf   converted from svg (requires rsvg-convert)
  png   converted from svg (requires rsvg-convert)`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProblemFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(flags.formats)
			if err := validateFormats(formats, allocFormats...); err != nil {
				return err
			}
			return c.runAlloc(cmd.Context(), cmd, args[0], &flags, formats)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "artifact format(s): json, dot, svg, pdf, png (comma-separated)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "base path for artifacts (default: input path without extension)")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "label graph nodes with spill cost and degree")
	cmd.Flags().BoolVar(&flags.json, "json", false, "print the result as JSON instead of a table")
	registerFormatCompletion(cmd, allocFormats...)

	return cmd
}

// runAlloc loads the problem, runs the pipeline and reports the result.
func (c *CLI) runAlloc(ctx context.Context, cmd *cobra.Command, input string, flags *allocFlags, formats []string) error {
	p, err := loadProblem(cmd, input)
	if err != nil {
		return fmt.Errorf("load problem %s: %w", input, err)
	}
	opts, err := flags.options(c.Logger, false, formats)
	if err != nil {
		return err
	}
	opts.Detailed = flags.detailed

	out := cmd.OutOrStdout()
	spinner := newSpinner(ctx, cmd.ErrOrStderr(), "Allocating registers...")
	opts.Hooks = spinner
	spinner.Start()
	res, err := c.newRunner(flags.noCache).Run(ctx, p, opts)
	spinner.Stop()
	if err != nil {
		reportFailure(out, err)
		return err
	}

	paths, err := writeArtifacts(ctx, res, formats, basePath(flags.output, input))
	if err != nil {
		return err
	}

	if flags.json {
		return problem.WriteResult(out, &res.Result)
	}
	printAllocation(out, p, res)
	if len(paths) > 0 {
		printNewline(out)
		for _, path := range paths {
			printFile(out, path)
		}
	}
	return nil
}

// reportFailure explains a failed run; the error itself is returned to
// cobra by the caller.
func reportFailure(w io.Writer, err error) {
	var spill *errors.SpillError
	if stderrors.As(err, &spill) {
		printError(w, "Spill required after %d attempts", spill.Attempts)
		if len(spill.Remaining) > 0 {
			printDetail(w, "unassigned: %s", strings.Join(spill.Remaining, ", "))
		}
		printNextStep(w, "Inspect the last attempt", appName+" trace --no-spill --tui <problem>")
		return
	}
	printError(w, "Allocation failed")
}

// printAllocation prints the assignment table and spill summary.
func printAllocation(w io.Writer, p *problem.Problem, res *pipeline.Result) {
	in := res.Instance
	printSuccess(w, "Allocated %d nodes", len(res.Assignments))
	printStats(w, in.Graph.Len(), in.Graph.EdgeCount(), len(res.Attempts), res.TriviallyColorable)
	printKeyValue(w, "heuristic", res.Heuristic)
	printNewline(w)

	headers := []string{"Node", "Class", "Register"}
	hw := res.HardwareRegs != nil
	if hw {
		headers = append(headers, "Hardware")
	}

	spilled := make(map[string]bool, len(res.Spilled))
	for _, name := range res.Spilled {
		spilled[name] = true
	}

	var rows [][]string
	for _, n := range p.Nodes {
		row := []string{n.Name, n.Class}
		if spilled[n.Name] {
			row = append(row, "spilled")
			if hw {
				row = append(row, "-")
			}
		} else {
			row = append(row, res.Assignments[n.Name])
			if hw {
				row = append(row, "g"+strconv.Itoa(res.HardwareRegs[n.Name]))
			}
		}
		rows = append(rows, row)
	}

	t := newTable(headers, rows, func(row, col int) lipgloss.Style {
		if row < len(p.Nodes) && spilled[p.Nodes[row].Name] {
			return StyleError
		}
		if col >= 2 {
			return StyleHighlight
		}
		return lipgloss.NewStyle()
	})
	fmt.Fprintln(w, t.Render())

	if len(res.Spilled) > 0 {
		printWarning(w, "Spilled: %s", strings.Join(res.Spilled, ", "))
	}
}

// writeArtifacts writes one file per format and returns the paths written.
func writeArtifacts(ctx context.Context, res *pipeline.Result, formats []string, base string) ([]string, error) {
	var paths []string
	for _, format := range formats {
		data, err := artifactData(ctx, res, format)
		if err != nil {
			return paths, err
		}
		path := artifactPath(base, format)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func artifactData(ctx context.Context, res *pipeline.Result, format string) ([]byte, error) {
	switch format {
	case formatJSON:
		var buf bytes.Buffer
		if err := problem.WriteResult(&buf, &res.Result); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case formatPDF, formatPNG:
		return convertSVG(ctx, res.Artifacts[pipeline.FormatSVG], format)
	default:
		return res.Artifacts[format], nil
	}
}
