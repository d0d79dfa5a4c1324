package cli

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/regalloc/pkg/problem"
)

// traceFlags holds the command-line flags for the trace command.
type traceFlags struct {
	runFlags
	noSpill bool // trace one attempt on the full graph
	tui     bool // step through the trace interactively
	json    bool // print events as JSON
}

// traceCommand creates the trace command, which shows the order in which
// nodes were simplified and colored.
func (c *CLI) traceCommand() *cobra.Command {
	var flags traceFlags

	cmd := &cobra.Command{
		Use:   "trace [problem]",
		Short: "Show the simplify and select steps of an allocation",
		Long: `Show the simplify and select steps of an allocation.

By default the problem is allocated with spilling and the final, successful
attempt is traced. With --no-spill a single attempt runs on the full graph,
which shows where select fails.

Use --tui to step through the events interactively.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProblemFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := c.collectTrace(cmd.Context(), cmd, args[0], &flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case flags.json:
				return writeIndentedJSON(out, events)
			case flags.tui:
				return runTraceTUI(cmd, events)
			}
			printTrace(out, events)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.noSpill, "no-spill", false, "trace a single attempt without spilling")
	cmd.Flags().BoolVar(&flags.tui, "tui", false, "step through the trace interactively")
	cmd.Flags().BoolVar(&flags.json, "json", false, "print events as JSON")

	return cmd
}

// collectTrace runs the allocation with tracing enabled and returns the
// events of the traced attempt.
func (c *CLI) collectTrace(ctx context.Context, cmd *cobra.Command, input string, flags *traceFlags) ([]problem.TraceEvent, error) {
	p, err := loadProblem(cmd, input)
	if err != nil {
		return nil, fmt.Errorf("load problem %s: %w", input, err)
	}

	if flags.noSpill {
		in, err := p.Build()
		if err != nil {
			return nil, err
		}
		in.Graph.EnableTrace()
		colored := in.Graph.AllocateNoSpills()
		loggerFromContext(ctx).Debug("traced single attempt", "nodes", in.Graph.Len(), "colored", colored)
		return in.TraceEvents(), nil
	}

	opts, err := flags.options(c.Logger, true, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.newRunner(flags.noCache).Run(ctx, p, opts)
	if err != nil {
		reportFailure(cmd.OutOrStdout(), err)
		return nil, err
	}
	if len(res.Spilled) > 0 {
		printWarning(cmd.ErrOrStderr(), "Traced after spilling %d nodes", len(res.Spilled))
	}
	return res.Trace, nil
}

func printTrace(w io.Writer, events []problem.TraceEvent) {
	rows := make([][]string, len(events))
	for i, e := range events {
		rows[i] = eventRow("", i, e)[1:]
	}
	fmt.Fprintln(w, newTable([]string{"#", "Kind", "Node", "Register"}, rows, func(row, _ int) lipgloss.Style {
		if row < len(events) && events[row].Kind == "fail" {
			return traceFailStyle
		}
		return lipgloss.NewStyle()
	}).Render())
	fmt.Fprint(w, printableState(replayTrace(events)))
}

func runTraceTUI(cmd *cobra.Command, events []problem.TraceEvent) error {
	if len(events) == 0 {
		printInfo(cmd.OutOrStdout(), "Trace is empty")
		return nil
	}
	p := tea.NewProgram(NewTraceModel(events),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	_, err := p.Run()
	return err
}
