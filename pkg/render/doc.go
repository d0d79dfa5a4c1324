// Package render draws allocation results as Graphviz diagrams.
//
// # Overview
//
// This package turns a built [problem.Instance] into an undirected
// interference graph:
//
//   - One node per value, labeled with its name, class and register
//   - One edge per interference
//   - Fill colors keyed by register, so values sharing a register share a color
//
// Values that never received a register are drawn dashed, and spilled values
// can be listed as detached nodes.
//
// # Output Formats
//
// [ToDOT] produces Graphviz DOT text. [RenderSVG] lays the DOT out with the
// embedded Graphviz from github.com/goccy/go-graphviz, and [ToPDF] and
// [ToPNG] convert SVG using the external rsvg-convert tool (from librsvg).
//
//	dot := render.ToDOT(inst, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [problem.Instance]: github.com/matzehuels/regalloc/pkg/problem.Instance
package render
