package ra

import (
	"slices"
	"testing"

	"github.com/matzehuels/regalloc/pkg/regset"
)

func TestNewGraph(t *testing.T) {
	set, _ := flatSet(t, 2)
	g := NewGraph(set, 3)

	if g.Len() != 3 {
		t.Errorf("Len() = %d, want 3", g.Len())
	}
	if g.Phase() != PhaseBuilding {
		t.Errorf("Phase() = %v, want %v", g.Phase(), PhaseBuilding)
	}
	for i := range 3 {
		n := Node(i)
		if !g.Interferes(n, n) {
			t.Errorf("node %d should be self-adjacent", n)
		}
		if g.NodeReg(n) != NoReg {
			t.Errorf("NodeReg(%d) = %d, want NoReg", n, g.NodeReg(n))
		}
		if g.State(n) != StateUnplaced {
			t.Errorf("State(%d) = %v, want %v", n, g.State(n), StateUnplaced)
		}
		if g.SpillCost(n) != 0 {
			t.Errorf("SpillCost(%d) = %v, want 0", n, g.SpillCost(n))
		}
	}
}

func TestAddInterference(t *testing.T) {
	set, c := flatSet(t, 2)
	g := NewGraph(set, 4)
	for i := range 4 {
		g.SetNodeClass(Node(i), c)
	}

	g.AddInterference(0, 2)
	g.AddInterference(3, 0)

	if !g.Interferes(0, 2) || !g.Interferes(2, 0) {
		t.Error("interference should be symmetric")
	}
	if g.Interferes(1, 2) {
		t.Error("Interferes(1, 2) = true, want false")
	}
	if got := g.Neighbors(0); !slices.Equal(got, []Node{2, 3}) {
		t.Errorf("Neighbors(0) = %v, want [2 3]", got)
	}
	if g.Degree(0) != 2 {
		t.Errorf("Degree(0) = %d, want 2", g.Degree(0))
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
}

func TestAddInterferenceIdempotent(t *testing.T) {
	set, c := flatSet(t, 2)
	g := NewGraph(set, 2)
	g.SetNodeClass(0, c)
	g.SetNodeClass(1, c)

	g.AddInterference(0, 1)
	g.AddInterference(1, 0)
	g.AddInterference(0, 1)
	g.AddInterference(1, 1)

	if g.Degree(0) != 1 || g.Degree(1) != 1 {
		t.Errorf("degrees = %d, %d, want 1, 1", g.Degree(0), g.Degree(1))
	}
	if g.RedundantEdges() != 2 {
		t.Errorf("RedundantEdges() = %d, want 2", g.RedundantEdges())
	}
}

func TestGraphMisusePanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func(t *testing.T)
	}{
		{"unfinalized set", func(t *testing.T) {
			NewGraph(regset.New(1), 1)
		}},
		{"class set twice", func(t *testing.T) {
			set, c := flatSet(t, 1)
			g := NewGraph(set, 1)
			g.SetNodeClass(0, c)
			g.SetNodeClass(0, c)
		}},
		{"edge before class", func(t *testing.T) {
			set, c := flatSet(t, 1)
			g := NewGraph(set, 2)
			g.SetNodeClass(0, c)
			g.AddInterference(0, 1)
		}},
		{"unknown class", func(t *testing.T) {
			set, _ := flatSet(t, 1)
			NewGraph(set, 1).SetNodeClass(0, 5)
		}},
		{"edge after simplify", func(t *testing.T) {
			set, c := flatSet(t, 2)
			g := clique(set, c, 2)
			g.Simplify()
			g.AddInterference(0, 1)
		}},
		{"simplify without class", func(t *testing.T) {
			set, _ := flatSet(t, 1)
			NewGraph(set, 1).Simplify()
		}},
		{"optimistic before simplify", func(t *testing.T) {
			set, c := flatSet(t, 1)
			clique(set, c, 1).OptimisticColor()
		}},
		{"select before simplify", func(t *testing.T) {
			set, c := flatSet(t, 1)
			clique(set, c, 1).Select()
		}},
		{"select after failed simplify", func(t *testing.T) {
			set, c := flatSet(t, 2)
			g := clique(set, c, 3)
			if g.Simplify() {
				t.Fatal("Simplify() = true on a 3-clique over 2 registers")
			}
			g.Select()
		}},
		{"select twice", func(t *testing.T) {
			set, c := flatSet(t, 1)
			g := clique(set, c, 1)
			g.AllocateNoSpills()
			g.Select()
		}},
		{"node out of range", func(t *testing.T) {
			set, _ := flatSet(t, 1)
			NewGraph(set, 1).NodeReg(1)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn(t)
		})
	}
}

func TestStringers(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{StateOptimistic.String(), "optimistic"},
		{PhaseFailed.String(), "failed"},
		{EventAssigned.String(), "assign"},
		{FirstNeighbor.String(), "first-neighbor"},
		{NodeState(42).String(), "NodeState(42)"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}
