package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/regalloc/pkg/pipeline"
	"github.com/matzehuels/regalloc/pkg/render"
)

// pngScale is the rasterization scale for PNG output.
const pngScale = 2.0

// renderFormats are the formats render can write.
var renderFormats = []string{pipeline.FormatDOT, pipeline.FormatSVG, formatPDF, formatPNG}

// renderFlags holds the command-line flags for the render command.
type renderFlags struct {
	formats   string // comma-separated output formats
	output    string // base path for outputs
	detailed  bool   // label nodes with spill cost and degree
	uncolored bool   // skip allocation and draw the bare graph
	noCache   bool   // bypass the artifact cache
}

// renderCommand creates the render command, which draws the interference
// graph of a single allocation attempt without spilling.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render [problem]",
		Short: "Render the interference graph of a problem",
		Long: `Render the interference graph of a problem.

Nodes are colored by the register they receive in one allocation attempt.
Nodes left without a register are drawn dashed. Unlike 'alloc', nothing is
spilled, so the picture shows exactly where coloring fails.

Use --uncolored to draw the graph before allocation.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProblemFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(flags.formats)
			if len(formats) == 0 {
				formats = []string{pipeline.FormatSVG}
			}
			if err := validateFormats(formats, renderFormats...); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cmd, args[0], &flags, formats)
		},
	}

	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): svg (default), dot, pdf, png (comma-separated)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "base path for outputs (default: input path without extension)")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "label nodes with spill cost and degree")
	cmd.Flags().BoolVar(&flags.uncolored, "uncolored", false, "draw the graph without allocating")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "do not read or write the artifact cache")
	registerFormatCompletion(cmd, renderFormats...)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, cmd *cobra.Command, input string, flags *renderFlags, formats []string) error {
	p, err := loadProblem(cmd, input)
	if err != nil {
		return fmt.Errorf("load problem %s: %w", input, err)
	}
	in, err := p.Build()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !flags.uncolored {
		if in.Graph.AllocateNoSpills() {
			printSuccess(out, "Colored %d nodes", in.Graph.Len())
		} else {
			printWarning(out, "%d of %d nodes left uncolored", len(in.Unassigned()), in.Graph.Len())
		}
	}

	prog := newProgress(loggerFromContext(ctx))
	base := basePath(flags.output, input)
	dot := render.ToDOT(in, render.Options{Detailed: flags.detailed})
	var svg []byte
	for _, format := range formats {
		var data []byte
		switch format {
		case pipeline.FormatDOT:
			data = []byte(dot)
		default:
			if svg == nil {
				if svg, err = c.newRunner(flags.noCache).RenderSVG(ctx, dot, nil); err != nil {
					return err
				}
			}
			data, err = convertSVG(ctx, svg, format)
			if err != nil {
				return err
			}
		}
		path := artifactPath(base, format)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(out, path)
	}
	prog.done(fmt.Sprintf("Rendered %d nodes", in.Graph.Len()))
	return nil
}

// convertSVG returns svg in the requested format.
func convertSVG(ctx context.Context, svg []byte, format string) ([]byte, error) {
	switch format {
	case formatPDF:
		return render.ToPDF(ctx, svg)
	case formatPNG:
		return render.ToPNG(ctx, svg, pngScale)
	}
	return svg, nil
}
