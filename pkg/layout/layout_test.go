package layout

import (
	"testing"

	"github.com/matzehuels/regalloc/pkg/errors"
	"github.com/matzehuels/regalloc/pkg/ra"
	"github.com/matzehuels/regalloc/pkg/regset"
)

func mustBuild(t *testing.T, c Contiguous) *Layout {
	t.Helper()
	l, err := c.Build()
	if err != nil {
		t.Fatalf("Build(%+v) error = %v", c, err)
	}
	return l
}

func TestBuildRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		in   Contiguous
	}{
		{"no base registers", Contiguous{Base: 0, Sizes: []int{1}}},
		{"no sizes", Contiguous{Base: 8}},
		{"zero size", Contiguous{Base: 8, Sizes: []int{0}}},
		{"size equals base", Contiguous{Base: 4, Sizes: []int{1, 4}}},
		{"duplicate size", Contiguous{Base: 8, Sizes: []int{1, 2, 1}}},
		{"pairs without size 2", Contiguous{Base: 8, Sizes: []int{1, 4}, AlignedPairs: true}},
		{"negative offset", Contiguous{Base: 8, Sizes: []int{1}, Offset: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.Build()
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Build() error = %v, want %s", err, errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestBuildGeometry(t *testing.T) {
	l := mustBuild(t, Contiguous{Base: 4, Sizes: []int{1, 2}})
	scalar, _ := l.ClassForSize(1)
	pair, _ := l.ClassForSize(2)

	if got := l.Set.Count(); got != 7 {
		t.Fatalf("Count() = %d, want 7", got)
	}
	if got := l.Set.P(scalar); got != 4 {
		t.Errorf("p(scalar) = %d, want 4", got)
	}
	if got := l.Set.P(pair); got != 3 {
		t.Errorf("p(pair) = %d, want 3", got)
	}

	tests := []struct {
		b, c regset.Class
		want int
	}{
		{scalar, scalar, 1},
		{scalar, pair, 2},
		{pair, scalar, 2},
		{pair, pair, 3},
	}
	for _, tt := range tests {
		if got := l.Set.Q(tt.b, tt.c); got != tt.want {
			t.Errorf("q(%d, %d) = %d, want %d", tt.b, tt.c, got, tt.want)
		}
	}
}

func TestRunsConflictIffOverlapping(t *testing.T) {
	l := mustBuild(t, Contiguous{Base: 10, Sizes: []int{1, 2, 4}, Offset: 3})

	for a := range regset.Reg(l.Set.Count()) {
		for b := range regset.Reg(l.Set.Count()) {
			aLo, bLo := l.HardwareReg(a), l.HardwareReg(b)
			aHi, bHi := aLo+l.RunSize(a), bLo+l.RunSize(b)
			overlap := aLo < bHi && bLo < aHi
			if got := l.Set.Conflicting(a, b); got != overlap {
				t.Errorf("Conflicting(%s, %s) = %v, want %v", l.Name(a), l.Name(b), got, overlap)
			}
		}
	}
}

func TestAlignedPairs(t *testing.T) {
	for _, offset := range []int{0, 1, 16, 17} {
		l := mustBuild(t, Contiguous{Base: 8, Sizes: []int{1, 2}, AlignedPairs: true, Offset: offset})
		aligned, ok := l.AlignedPairClass()
		if !ok {
			t.Fatalf("offset %d: AlignedPairClass() missing", offset)
		}
		if got := l.Set.P(aligned); got != 3 {
			t.Errorf("offset %d: p(aligned) = %d, want 3", offset, got)
		}
		pair, _ := l.ClassForSize(2)
		for r := range l.Set.Regs(aligned) {
			if hw := l.HardwareReg(r); hw%2 != 0 {
				t.Errorf("offset %d: aligned pair %s starts on odd register", offset, l.Name(r))
			}
			if !l.Set.Contains(pair, r) {
				t.Errorf("offset %d: aligned pair %d not in the pair class", offset, r)
			}
		}
	}
}

func TestNoAlignedPairClassByDefault(t *testing.T) {
	l := mustBuild(t, Contiguous{Base: 8, Sizes: []int{1, 2}})
	if _, ok := l.AlignedPairClass(); ok {
		t.Error("AlignedPairClass() present without AlignedPairs")
	}
	if _, ok := l.ClassForSize(4); ok {
		t.Error("ClassForSize(4) found a class that was never requested")
	}
}

func TestNames(t *testing.T) {
	l := mustBuild(t, Contiguous{Base: 4, Sizes: []int{1, 2}, Offset: 2})
	tests := []struct {
		reg  regset.Reg
		want string
	}{
		{0, "g2"},
		{3, "g5"},
		{4, "g2-g3"},
		{6, "g4-g5"},
		{regset.NoReg, "-"},
	}
	for _, tt := range tests {
		if got := l.Name(tt.reg); got != tt.want {
			t.Errorf("Name(%d) = %q, want %q", tt.reg, got, tt.want)
		}
	}
	if got := l.HardwareReg(regset.NoReg); got != -1 {
		t.Errorf("HardwareReg(NoReg) = %d, want -1", got)
	}
}

func TestAllocateMixedSizes(t *testing.T) {
	l := mustBuild(t, Contiguous{Base: 4, Sizes: []int{1, 2}})
	scalar, _ := l.ClassForSize(1)
	pair, _ := l.ClassForSize(2)

	g := ra.NewGraph(l.Set, 3)
	g.SetNodeClass(0, pair)
	g.SetNodeClass(1, scalar)
	g.SetNodeClass(2, scalar)
	g.AddInterference(0, 1)
	g.AddInterference(0, 2)
	g.AddInterference(1, 2)

	if !g.AllocateNoSpills() {
		t.Fatal("AllocateNoSpills() = false, want true")
	}
	want := []string{"g0-g1", "g2", "g3"}
	for n, w := range want {
		if got := l.Name(g.NodeReg(ra.Node(n))); got != w {
			t.Errorf("node %d = %s, want %s", n, got, w)
		}
	}
}
