package ra

import (
	"fmt"
	"strings"
)

// SpillHeuristic selects how SpillBenefit estimates the interference relieved
// by spilling a node.
type SpillHeuristic int

const (
	// FirstNeighbor looks only at the lowest-indexed neighbor:
	// q(B, C) / p(B) for that neighbor's class C. This is the default.
	// Neighbors are taken in ascending node index, not in the order the
	// interferences were added, so the chosen neighbor can differ from an
	// allocator that keeps insertion-ordered adjacency lists.
	FirstNeighbor SpillHeuristic = iota

	// SumNeighbors adds q(B, C) / p(B) over every neighbor, the estimate
	// Runeson and Nyström derive for the general case.
	SumNeighbors
)

// Heuristic names accepted by ParseSpillHeuristic.
const (
	HeuristicFirstNeighbor = "first-neighbor"
	HeuristicSumNeighbors  = "sum-neighbors"
)

// String returns the name accepted by ParseSpillHeuristic.
func (h SpillHeuristic) String() string {
	switch h {
	case FirstNeighbor:
		return HeuristicFirstNeighbor
	case SumNeighbors:
		return HeuristicSumNeighbors
	}
	return fmt.Sprintf("SpillHeuristic(%d)", int(h))
}

// ParseSpillHeuristic converts a heuristic name into a SpillHeuristic.
// Matching is case-insensitive.
func ParseSpillHeuristic(s string) (SpillHeuristic, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case HeuristicFirstNeighbor:
		return FirstNeighbor, nil
	case HeuristicSumNeighbors:
		return SumNeighbors, nil
	}
	return FirstNeighbor, fmt.Errorf("unknown spill heuristic %q (want %s or %s)",
		s, HeuristicFirstNeighbor, HeuristicSumNeighbors)
}

// SetSpillHeuristic chooses the benefit estimate used by SpillBenefit and
// BestSpillCandidate.
func (g *Graph) SetSpillHeuristic(h SpillHeuristic) { g.heuristic = h }

// SpillHeuristic returns the heuristic in use.
func (g *Graph) SpillHeuristic() SpillHeuristic { return g.heuristic }

// SetSpillCost records the estimated cost of spilling n. A cost <= 0 marks n
// as not spillable.
func (g *Graph) SetSpillCost(n Node, cost float64) {
	g.checkNode(n)
	g.nodes[n].cost = cost
}

// SpillCost returns the spill cost recorded for n, 0 if none was set.
func (g *Graph) SpillCost(n Node) float64 {
	g.checkNode(n)
	return g.nodes[n].cost
}

// SpillBenefit estimates how much interference spilling n would relieve.
// A node without neighbors, or of an empty class, has no benefit.
//
// Neighbors are visited in ascending node index regardless of the order
// AddInterference saw them; with FirstNeighbor only the lowest index counts.
func (g *Graph) SpillBenefit(n Node) float64 {
	g.checkNode(n)
	b := g.nodes[n].class
	p := g.set.P(b)
	if p == 0 {
		return 0
	}

	benefit := 0.0
	for j := range g.neighbors(n) {
		benefit += float64(g.set.Q(b, g.nodes[j].class)) / float64(p)
		if g.heuristic == FirstNeighbor {
			break
		}
	}
	return benefit
}

// BestSpillCandidate recommends the spillable node with the highest
// benefit/cost ratio. Only nodes with a positive cost and a positive ratio
// qualify; ties go to the lowest index. It returns NoNode and false when no
// node qualifies.
func (g *Graph) BestSpillCandidate() (Node, bool) {
	best, bestRatio := NoNode, 0.0
	for i := range g.nodes {
		n := Node(i)
		cost := g.nodes[n].cost
		if cost <= 0 {
			continue
		}
		if ratio := g.SpillBenefit(n) / cost; ratio > bestRatio {
			best, bestRatio = n, ratio
		}
	}
	return best, best != NoNode
}
