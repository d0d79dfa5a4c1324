// Package ra colors an interference graph with physical registers drawn from
// a finalized [regset.Set].
//
// # Overview
//
// Each node of a [Graph] is a program value that needs a register. Nodes are
// tagged with a register class and connected by interference edges; two
// interfering nodes must end up in registers that do not conflict. The
// allocator follows the Runeson–Nyström generalization of Chaitin-style
// coloring, which stays sound when classes overlap and registers alias:
//
//  1. [Graph.Simplify] repeatedly removes nodes that are colorable no matter
//     how their neighbors are colored, pushing them on a stack.
//  2. [Graph.OptimisticColor] pushes whatever is left, betting that a free
//     register will still turn up.
//  3. [Graph.Select] pops the stack and gives each node the lowest-numbered
//     register of its class that conflicts with no colored neighbor.
//
// [Graph.AllocateNoSpills] runs the three steps in order.
//
// # The pq test
//
// For a node n of class B, Simplify sums q(B, C) over all remaining
// neighbors of class C. q(B, C) bounds how many B registers one C neighbor
// can take away, so when the sum is below p(B) at least one register of B
// is guaranteed to survive. The test is sufficient, not necessary: a graph
// that fails it may still be colorable, which is what the optimistic step
// exploits.
//
// # Spilling
//
// When Select fails the graph is left as is and the caller consults the
// spill advisor. [Graph.BestSpillCandidate] ranks nodes with a positive
// spill cost by benefit/cost and recommends one. Rewriting the program and
// building a smaller graph is up to the caller; a failed graph is not
// reused.
//
// # Usage
//
//	g := ra.NewGraph(set, 3)
//	for n := range 3 {
//	    g.SetNodeClass(ra.Node(n), scalar)
//	}
//	g.AddInterference(0, 1)
//	g.AddInterference(1, 2)
//	if !g.AllocateNoSpills() {
//	    victim, ok := g.BestSpillCandidate()
//	    // ...
//	}
//	reg := g.NodeReg(1)
//
// # Concurrency
//
// A Graph is not safe for concurrent use. Separate graphs built against the
// same finalized register set may be allocated in parallel.
package ra
