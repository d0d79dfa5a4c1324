package problem

import (
	"fmt"

	"github.com/matzehuels/regalloc/pkg/layout"
	"github.com/matzehuels/regalloc/pkg/ra"
	"github.com/matzehuels/regalloc/pkg/regset"
)

const alignedPairClassName = "aligned2"

func sizeClassName(size int) string { return fmt.Sprintf("size%d", size) }

// Instance is a problem lowered onto a finalized register set and a fresh
// interference graph. Node i of the graph is Nodes[i] of the problem.
type Instance struct {
	Set    *regset.Set
	Graph  *ra.Graph
	Layout *layout.Layout // nil unless the problem uses a layout

	RegNames   []string
	ClassNames []string
	NodeNames  []string

	nodeIndex map[string]ra.Node
}

// Build validates p and constructs a new [Instance]. Every call returns an
// independent graph, so a failed allocation can be retried on a fresh one.
func (p *Problem) Build() (*Instance, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	in := &Instance{nodeIndex: make(map[string]ra.Node, len(p.Nodes))}
	classes := make(map[string]regset.Class)
	if p.Layout != nil {
		l, err := p.Layout.Contiguous().Build()
		if err != nil {
			return nil, err
		}
		in.Set, in.Layout = l.Set, l
		for _, size := range l.Sizes() {
			c, _ := l.ClassForSize(size)
			classes[sizeClassName(size)] = c
			in.ClassNames = append(in.ClassNames, sizeClassName(size))
		}
		if c, ok := l.AlignedPairClass(); ok {
			classes[alignedPairClassName] = c
			in.ClassNames = append(in.ClassNames, alignedPairClassName)
		}
		in.RegNames = make([]string, l.Set.Count())
		for r := range in.RegNames {
			in.RegNames[r] = l.Name(regset.Reg(r))
		}
	} else {
		in.RegNames = p.registerNames()
		regs, err := newRegTable(in.RegNames)
		if err != nil {
			return nil, err
		}
		set := regset.New(len(in.RegNames))
		for _, pair := range p.Conflicts {
			a, _ := regs.lookup(pair[0])
			b, _ := regs.lookup(pair[1])
			set.AddConflict(a, b)
		}
		for _, spec := range p.Classes {
			c := set.AllocClass()
			members, err := spec.resolve(regs)
			if err != nil {
				return nil, err
			}
			for _, r := range members {
				set.ClassAddReg(c, r)
			}
			classes[spec.Name] = c
			in.ClassNames = append(in.ClassNames, spec.Name)
		}
		set.Finalize()
		in.Set = set
	}

	g := ra.NewGraph(in.Set, len(p.Nodes))
	in.NodeNames = make([]string, len(p.Nodes))
	for i, n := range p.Nodes {
		node := ra.Node(i)
		g.SetNodeClass(node, classes[n.Class])
		g.SetSpillCost(node, n.Cost())
		in.NodeNames[i] = n.Name
		in.nodeIndex[n.Name] = node
	}
	for _, pair := range p.Interferences {
		g.AddInterference(in.nodeIndex[pair[0]], in.nodeIndex[pair[1]])
	}
	in.Graph = g
	return in, nil
}

// Node returns the graph node for a node name.
func (in *Instance) Node(name string) (ra.Node, bool) {
	n, ok := in.nodeIndex[name]
	return n, ok
}

// RegName returns the display name of r, or "-" for [regset.NoReg].
func (in *Instance) RegName(r regset.Reg) string {
	if r == regset.NoReg {
		return "-"
	}
	return in.RegNames[r]
}

// ClassName returns the name of the class node n was declared with.
func (in *Instance) ClassName(n ra.Node) string {
	return in.ClassNames[in.Graph.Class(n)]
}

// Assignments maps every node that holds a register to that register's name.
func (in *Instance) Assignments() map[string]string {
	out := make(map[string]string, len(in.NodeNames))
	for i, name := range in.NodeNames {
		if r := in.Graph.NodeReg(ra.Node(i)); r != regset.NoReg {
			out[name] = in.RegNames[r]
		}
	}
	return out
}

// HardwareRegs maps colored nodes to hardware register numbers. It returns
// nil for problems without a layout.
func (in *Instance) HardwareRegs() map[string]int {
	if in.Layout == nil {
		return nil
	}
	out := make(map[string]int, len(in.NodeNames))
	for i, name := range in.NodeNames {
		if r := in.Graph.NodeReg(ra.Node(i)); r != regset.NoReg {
			out[name] = in.Layout.HardwareReg(r)
		}
	}
	return out
}

// Unassigned lists nodes that hold no register, in node order.
func (in *Instance) Unassigned() []string {
	var out []string
	for i, name := range in.NodeNames {
		if in.Graph.NodeReg(ra.Node(i)) == regset.NoReg {
			out = append(out, name)
		}
	}
	return out
}

// TraceEvents converts the graph's recorded trace to named events.
func (in *Instance) TraceEvents() []TraceEvent {
	events := in.Graph.Trace()
	out := make([]TraceEvent, len(events))
	for i, e := range events {
		out[i] = TraceEvent{Kind: e.Kind.String(), Node: in.NodeNames[e.Node]}
		if e.Reg != regset.NoReg {
			out[i].Reg = in.RegNames[e.Reg]
		}
	}
	return out
}

// Geometry reports the class geometry of the instance's register set.
func (in *Instance) Geometry() *Geometry {
	g := &Geometry{
		Registers: in.Set.Count(),
		Nodes:     in.Graph.Len(),
		Edges:     in.Graph.EdgeCount(),
		Q:         in.Set.Geometry(),
	}
	for c, name := range in.ClassNames {
		report := ClassReport{Name: name, P: in.Set.P(regset.Class(c))}
		for r := range in.Set.Regs(regset.Class(c)) {
			report.Members = append(report.Members, in.RegName(r))
		}
		g.Classes = append(g.Classes, report)
	}
	return g
}
