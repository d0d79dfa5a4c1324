package ra

import "fmt"

// pqTest reports whether n is colorable regardless of how its remaining
// neighbors end up colored: the q(B, C) contributions of all neighbors still
// in the graph must add up to less than p(B).
func (g *Graph) pqTest(n Node) bool {
	b := g.nodes[n].class
	p := g.set.P(b)
	sum := 0
	for j := range g.neighbors(n) {
		if g.nodes[j].inStack {
			continue
		}
		sum += g.set.Q(b, g.nodes[j].class)
		if sum >= p {
			return false
		}
	}
	return sum < p
}

// Simplify pushes every node that passes the pq test onto the stack,
// repeating full passes (highest node index first) until a pass removes
// nothing. A node removed early in a pass no longer counts against the
// nodes tested after it.
//
// Simplify returns true iff every node ended up on the stack, in which case
// Select is guaranteed to succeed.
func (g *Graph) Simplify() bool {
	switch g.phase {
	case PhaseBuilding:
		g.checkClasses()
		g.phase = PhaseSimplifying
	case PhaseSimplifying:
	default:
		panic(fmt.Sprintf("ra: Simplify during phase %s", g.phase))
	}

	for progress := true; progress; {
		progress = false
		for i := len(g.nodes) - 1; i >= 0; i-- {
			n := Node(i)
			if g.nodes[n].inStack {
				continue
			}
			if g.pqTest(n) {
				g.push(n, StateSimplified)
				progress = true
			}
		}
	}
	return len(g.stack) == len(g.nodes)
}

// OptimisticColor pushes every node Simplify could not remove, lowest index
// first, without testing it. Coloring may still fail in Select.
func (g *Graph) OptimisticColor() {
	if g.phase != PhaseSimplifying {
		panic(fmt.Sprintf("ra: OptimisticColor during phase %s", g.phase))
	}
	g.phase = PhaseOptimistic
	for i := range g.nodes {
		if g.nodes[i].inStack {
			continue
		}
		g.push(Node(i), StateOptimistic)
	}
}

func (g *Graph) checkClasses() {
	for i := range g.nodes {
		if !g.nodes[i].hasClass {
			panic(fmt.Sprintf("ra: node %d has no class", i))
		}
	}
}
