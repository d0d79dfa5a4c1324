package ra

import (
	"testing"

	"github.com/matzehuels/regalloc/pkg/regset"
)

// flatSet builds a finalized set of n mutually independent registers in a
// single class.
func flatSet(t *testing.T, n int) (*regset.Set, regset.Class) {
	t.Helper()
	s := regset.New(n)
	c := s.AllocClass()
	for r := range n {
		s.ClassAddReg(c, regset.Reg(r))
	}
	s.Finalize()
	return s, c
}

// pairSet builds four scalar registers 0..3 and two pair registers 4 and 5
// aliasing {0,1} and {2,3}.
func pairSet(t *testing.T) (s *regset.Set, scalar, pair regset.Class) {
	t.Helper()
	s = regset.New(6)
	s.AddConflict(4, 0)
	s.AddConflict(4, 1)
	s.AddConflict(5, 2)
	s.AddConflict(5, 3)
	scalar = s.AllocClass()
	for r := regset.Reg(0); r < 4; r++ {
		s.ClassAddReg(scalar, r)
	}
	pair = s.AllocClass()
	s.ClassAddReg(pair, 4)
	s.ClassAddReg(pair, 5)
	s.Finalize()
	return s, scalar, pair
}

// clique builds a graph of n mutually interfering nodes of class c.
func clique(set *regset.Set, c regset.Class, n int) *Graph {
	g := NewGraph(set, n)
	for i := range n {
		g.SetNodeClass(Node(i), c)
	}
	for i := range n {
		for j := i + 1; j < n; j++ {
			g.AddInterference(Node(i), Node(j))
		}
	}
	return g
}

// checkColoring fails the test if any colored node holds a register outside
// its class or conflicting with a colored neighbor.
func checkColoring(t *testing.T, g *Graph) {
	t.Helper()
	set := g.Set()
	for i := range g.Len() {
		n := Node(i)
		r := g.NodeReg(n)
		if r == NoReg {
			continue
		}
		if !set.Contains(g.Class(n), r) {
			t.Errorf("node %d got register %d outside class %d", n, r, g.Class(n))
		}
		for _, j := range g.Neighbors(n) {
			rj := g.NodeReg(j)
			if rj != NoReg && set.Conflicting(r, rj) {
				t.Errorf("nodes %d and %d interfere but got conflicting registers %d and %d", n, j, r, rj)
			}
		}
	}
}
