package ra

import (
	"fmt"

	"github.com/matzehuels/regalloc/pkg/regset"
)

// Select pops the stack and assigns each node the lowest-numbered register
// of its class that conflicts with no already colored neighbor. Nodes pushed
// last are colored first, so optimistically pushed nodes get their pick
// before the ones Simplify proved safe.
//
// Select returns false as soon as a node has no usable register; spilling
// is then required. Registers already assigned stay in place and the graph
// must not be allocated again.
//
// Every node must be on the stack: straight after Simplify only when it
// returned true, otherwise after OptimisticColor.
func (g *Graph) Select() bool {
	switch g.phase {
	case PhaseSimplifying:
		if len(g.stack) != len(g.nodes) {
			panic(fmt.Sprintf("ra: Select with %d of %d nodes stacked; call OptimisticColor first", len(g.stack), len(g.nodes)))
		}
		g.phase = PhaseSelecting
	case PhaseOptimistic:
		g.phase = PhaseSelecting
	default:
		panic(fmt.Sprintf("ra: Select during phase %s", g.phase))
	}

	for len(g.stack) > 0 {
		n := g.stack[len(g.stack)-1]
		r, ok := g.pickReg(n)
		if !ok {
			g.phase = PhaseFailed
			g.record(Event{Kind: EventFailed, Node: n, Reg: NoReg})
			return false
		}
		nd := &g.nodes[n]
		nd.reg = r
		nd.inStack = false
		nd.state = StateColored
		g.stack = g.stack[:len(g.stack)-1]
		g.record(Event{Kind: EventAssigned, Node: n, Reg: r})
	}
	g.phase = PhaseDone
	return true
}

// pickReg returns the first register of n's class not ruled out by a colored
// neighbor.
func (g *Graph) pickReg(n Node) (regset.Reg, bool) {
	for r := range g.set.Regs(g.nodes[n].class) {
		if !g.blocked(n, r) {
			return r, true
		}
	}
	return NoReg, false
}

func (g *Graph) blocked(n Node, r regset.Reg) bool {
	for j := range g.neighbors(n) {
		nj := &g.nodes[j]
		if nj.inStack || nj.reg == NoReg {
			continue
		}
		if g.set.Conflicting(r, nj.reg) {
			return true
		}
	}
	return false
}

// AllocateNoSpills runs Simplify, OptimisticColor when Simplify could not
// remove every node, and Select. It returns the result of Select.
func (g *Graph) AllocateNoSpills() bool {
	if !g.Simplify() {
		g.OptimisticColor()
	}
	return g.Select()
}
