package ra

import (
	"fmt"
	"iter"

	"github.com/bits-and-blooms/bitset"

	"github.com/matzehuels/regalloc/pkg/regset"
)

// Node is a dense node index in the range [0, Graph.Len()).
type Node int

// NoNode is returned when no node qualifies, e.g. by BestSpillCandidate.
const NoNode Node = -1

// NoReg is the register of a node that has not been colored.
const NoReg = regset.NoReg

// NodeState tracks a node through allocation.
type NodeState int

const (
	// StateUnplaced nodes have not been pushed on the stack.
	StateUnplaced NodeState = iota
	// StateSimplified nodes passed the pq test and are guaranteed a register.
	StateSimplified
	// StateOptimistic nodes were pushed without passing the pq test.
	StateOptimistic
	// StateColored nodes hold a register.
	StateColored
)

func (s NodeState) String() string {
	switch s {
	case StateUnplaced:
		return "unplaced"
	case StateSimplified:
		return "simplified"
	case StateOptimistic:
		return "optimistic"
	case StateColored:
		return "colored"
	}
	return fmt.Sprintf("NodeState(%d)", int(s))
}

// Phase is the lifecycle stage of a Graph. Phases only move forward.
type Phase int

const (
	PhaseBuilding Phase = iota
	PhaseSimplifying
	PhaseOptimistic
	PhaseSelecting
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseBuilding:
		return "building"
	case PhaseSimplifying:
		return "simplifying"
	case PhaseOptimistic:
		return "optimistic"
	case PhaseSelecting:
		return "selecting"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

type node struct {
	class    regset.Class
	hasClass bool
	adj      *bitset.BitSet // always contains the node itself
	reg      regset.Reg
	inStack  bool
	state    NodeState
	cost     float64
}

// Graph is an interference graph for one compilation unit.
//
// A Graph borrows a finalized register set and never modifies it. It owns
// its nodes and the simplification stack. The zero value is not usable -
// create graphs with NewGraph.
type Graph struct {
	set       *regset.Set
	nodes     []node
	stack     []Node
	phase     Phase
	redundant int

	heuristic SpillHeuristic

	tracing bool
	trace   []Event
}

// NewGraph creates a graph of count nodes against set. Every node starts
// without a class, adjacent only to itself, uncolored and not spillable.
//
// NewGraph panics if set has not been finalized.
func NewGraph(set *regset.Set, count int) *Graph {
	if !set.Finalized() {
		panic("ra: NewGraph with a register set that is not finalized")
	}
	if count < 0 {
		panic(fmt.Sprintf("ra: negative node count %d", count))
	}
	g := &Graph{set: set, nodes: make([]node, count)}
	for i := range g.nodes {
		adj := bitset.New(uint(count))
		adj.Set(uint(i))
		g.nodes[i] = node{adj: adj, reg: NoReg}
	}
	return g
}

// Set returns the register set the graph allocates from.
func (g *Graph) Set() *regset.Set { return g.set }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Phase returns the current lifecycle phase.
func (g *Graph) Phase() Phase { return g.phase }

// SetNodeClass fixes the register class of n. It must be called exactly once
// per node, before any interference touching n is added.
func (g *Graph) SetNodeClass(n Node, c regset.Class) {
	g.mustBuild("SetNodeClass")
	g.checkNode(n)
	if c < 0 || int(c) >= g.set.ClassCount() {
		panic(fmt.Sprintf("ra: class %d out of range [0,%d)", c, g.set.ClassCount()))
	}
	nd := &g.nodes[n]
	if nd.hasClass {
		panic(fmt.Sprintf("ra: node %d already has class %d", n, nd.class))
	}
	if nd.adj.Count() > 1 {
		panic(fmt.Sprintf("ra: node %d has interferences before its class was set", n))
	}
	nd.class = c
	nd.hasClass = true
}

// Class returns the register class of n.
func (g *Graph) Class(n Node) regset.Class {
	g.checkNode(n)
	return g.nodes[n].class
}

// AddInterference records that a and b must receive non-conflicting
// registers. The relation is symmetric; adding an edge twice changes
// nothing except the RedundantEdges counter. A self edge is always present
// and adding one is a no-op.
func (g *Graph) AddInterference(a, b Node) {
	g.mustBuild("AddInterference")
	g.checkNode(a)
	g.checkNode(b)
	if !g.nodes[a].hasClass || !g.nodes[b].hasClass {
		panic(fmt.Sprintf("ra: interference %d-%d added before node classes were set", a, b))
	}
	if a == b {
		return
	}
	if g.nodes[a].adj.Test(uint(b)) {
		g.redundant++
		return
	}
	g.nodes[a].adj.Set(uint(b))
	g.nodes[b].adj.Set(uint(a))
}

// Interferes reports whether a and b interfere. Every node interferes with
// itself.
func (g *Graph) Interferes(a, b Node) bool {
	g.checkNode(a)
	g.checkNode(b)
	return g.nodes[a].adj.Test(uint(b))
}

// Neighbors returns the nodes interfering with n in ascending order,
// excluding n itself.
func (g *Graph) Neighbors(n Node) []Node {
	g.checkNode(n)
	out := make([]Node, 0, g.Degree(n))
	for j := range g.neighbors(n) {
		out = append(out, j)
	}
	return out
}

// Degree returns the number of nodes interfering with n, excluding n.
func (g *Graph) Degree(n Node) int {
	g.checkNode(n)
	return int(g.nodes[n].adj.Count()) - 1
}

// EdgeCount returns the number of distinct interference edges.
func (g *Graph) EdgeCount() int {
	total := 0
	for i := range g.nodes {
		total += g.Degree(Node(i))
	}
	return total / 2
}

// RedundantEdges returns how many AddInterference calls repeated an
// existing edge. It is a diagnostic only.
func (g *Graph) RedundantEdges() int { return g.redundant }

// State returns the allocation state of n.
func (g *Graph) State(n Node) NodeState {
	g.checkNode(n)
	return g.nodes[n].state
}

// NodeReg returns the register assigned to n, or NoReg if n is not colored.
func (g *Graph) NodeReg(n Node) regset.Reg {
	g.checkNode(n)
	return g.nodes[n].reg
}

// Stack returns a copy of the simplification stack, bottom first.
func (g *Graph) Stack() []Node { return append([]Node(nil), g.stack...) }

// neighbors iterates over the nodes adjacent to n in ascending order,
// skipping n itself.
func (g *Graph) neighbors(n Node) iter.Seq[Node] {
	adj := g.nodes[n].adj
	return func(yield func(Node) bool) {
		for i, ok := adj.NextSet(0); ok; i, ok = adj.NextSet(i + 1) {
			if Node(i) == n {
				continue
			}
			if !yield(Node(i)) {
				return
			}
		}
	}
}

func (g *Graph) push(n Node, state NodeState) {
	g.stack = append(g.stack, n)
	g.nodes[n].inStack = true
	g.nodes[n].state = state
	if state == StateSimplified {
		g.record(Event{Kind: EventSimplified, Node: n, Reg: NoReg})
	} else {
		g.record(Event{Kind: EventOptimistic, Node: n, Reg: NoReg})
	}
}

func (g *Graph) mustBuild(op string) {
	if g.phase != PhaseBuilding {
		panic(fmt.Sprintf("ra: %s during phase %s", op, g.phase))
	}
}

func (g *Graph) checkNode(n Node) {
	if n < 0 || int(n) >= len(g.nodes) {
		panic(fmt.Sprintf("ra: node %d out of range [0,%d)", n, len(g.nodes)))
	}
}
