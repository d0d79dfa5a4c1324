package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/regalloc/pkg/problem"
	"github.com/matzehuels/regalloc/pkg/ra"
	"github.com/matzehuels/regalloc/pkg/regset"
)

// Options configures interference graph rendering.
type Options struct {
	// Detailed adds spill cost and degree to node labels.
	Detailed bool

	// Spilled lists values removed from the problem before the final
	// attempt. They are drawn as detached nodes.
	Spilled []string
}

// palette holds fill colors, indexed by register number modulo its length.
var palette = []string{
	"#8dd3c7", "#ffffb3", "#bebada", "#fb8072", "#80b1d3", "#fdb462",
	"#b3de69", "#fccde5", "#d9d9d9", "#bc80bd", "#ccebc5", "#ffed6f",
}

// ToDOT converts an instance to Graphviz DOT format. The graph may be
// rendered before or after allocation; unassigned values are drawn dashed.
// The result can be passed to [RenderSVG].
func ToDOT(in *problem.Instance, opts Options) string {
	g := in.Graph

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=ellipse, style=filled, fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	for i, name := range in.NodeNames {
		n := ra.Node(i)
		attrs := fmtAttrs(in, n, fmtLabel(in, n, opts.Detailed))
		fmt.Fprintf(&buf, "  %q [%s];\n", name, strings.Join(attrs, ", "))
	}
	for _, name := range opts.Spilled {
		fmt.Fprintf(&buf, "  %q [label=%q, style=\"dashed\", color=red, fontcolor=red];\n", name, name+"\nspilled")
	}

	buf.WriteString("\n")
	for i := range in.NodeNames {
		for _, j := range g.Neighbors(ra.Node(i)) {
			if int(j) > i {
				fmt.Fprintf(&buf, "  %q -- %q;\n", in.NodeNames[i], in.NodeNames[j])
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(in *problem.Instance, n ra.Node, detailed bool) string {
	parts := []string{in.NodeNames[n], in.ClassName(n)}
	if r := in.Graph.NodeReg(n); r != regset.NoReg {
		parts = append(parts, in.RegName(r))
	}
	if detailed {
		parts = append(parts,
			fmt.Sprintf("cost: %g", in.Graph.SpillCost(n)),
			fmt.Sprintf("degree: %d", in.Graph.Degree(n)))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(in *problem.Instance, n ra.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	r := in.Graph.NodeReg(n)
	if r == regset.NoReg {
		return append(attrs, "style=\"filled,dashed\"", "fillcolor=white")
	}
	key := int(r)
	if in.Layout != nil {
		key = in.Layout.HardwareReg(r)
	}
	return append(attrs, fmt.Sprintf("fillcolor=%q", palette[key%len(palette)]))
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with
// [ToPDF] or [ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz <svg> header with one whose
// viewBox starts at the origin and whose size matches the viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
