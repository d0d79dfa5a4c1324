// Package layout builds register sets for register files whose values occupy
// runs of contiguous base registers.
//
// A GPU-style register file of N base registers, where a value may need 1, 2
// or 4 consecutive registers, is modeled with one class per run size. Class
// members are the possible starting positions of a run, and two runs conflict
// whenever their base ranges overlap. The resulting [regset.Set] is finalized
// and ready for an allocation graph.
//
// # Usage
//
//	l, err := layout.Contiguous{Base: 16, Sizes: []int{1, 2, 4}}.Build()
//	if err != nil {
//	    return err
//	}
//	vec2, _ := l.ClassForSize(2)
//	g := ra.NewGraph(l.Set, n)
//	g.SetNodeClass(0, vec2)
//
// After allocation, [Layout.HardwareReg] maps an allocated register back to
// the first base register of its run.
package layout

import (
	"fmt"
	"slices"

	"github.com/matzehuels/regalloc/pkg/errors"
	"github.com/matzehuels/regalloc/pkg/regset"
)

// Contiguous describes a register file of Base base registers.
type Contiguous struct {
	// Base is the number of base registers in the file.
	Base int
	// Sizes lists the run sizes to build a class for. Each size must be
	// positive, unique and smaller than Base.
	Sizes []int
	// AlignedPairs adds a class of even-aligned pair runs. It requires
	// size 2 in Sizes.
	AlignedPairs bool
	// Offset is the hardware number of base register 0. Pair alignment is
	// computed on hardware numbers.
	Offset int
}

// Layout is a finalized register set together with its run geometry.
type Layout struct {
	Set *regset.Set

	sizes     []int
	classes   []regset.Class
	classBase []regset.Reg
	pairClass regset.Class
	hasPairs  bool
	offset    int
}

// Build validates the description and constructs the register set.
func (c Contiguous) Build() (*Layout, error) {
	if c.Base <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout needs at least one base register, got %d", c.Base)
	}
	if len(c.Sizes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout needs at least one run size")
	}
	if c.Offset < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout offset must not be negative, got %d", c.Offset)
	}
	for i, s := range c.Sizes {
		if s <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "run size must be positive, got %d", s)
		}
		if s >= c.Base {
			return nil, errors.New(errors.ErrCodeInvalidInput, "run size %d too large for %d base registers", s, c.Base)
		}
		if slices.Contains(c.Sizes[:i], s) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate run size %d", s)
		}
	}
	pairIdx := slices.Index(c.Sizes, 2)
	if c.AlignedPairs && pairIdx < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "aligned pairs require run size 2")
	}

	l := &Layout{
		sizes:     slices.Clone(c.Sizes),
		classes:   make([]regset.Class, len(c.Sizes)),
		classBase: make([]regset.Reg, len(c.Sizes)),
		offset:    c.Offset,
	}

	total := 0
	for i, s := range c.Sizes {
		l.classBase[i] = regset.Reg(total)
		total += runCount(c.Base, s)
	}

	set := regset.New(total)
	for i, s := range c.Sizes {
		l.classes[i] = set.AllocClass()
		for r := range runCount(c.Base, s) {
			set.ClassAddReg(l.classes[i], l.classBase[i]+regset.Reg(r))
		}

		// Overlapping runs conflict, including runs of the same size.
		for j := 0; j <= i; j++ {
			t := c.Sizes[j]
			for r := range runCount(c.Base, s) {
				lo := max(0, r-(t-1))
				hi := min(runCount(c.Base, t), r+s)
				for o := lo; o < hi; o++ {
					set.AddConflict(l.classBase[i]+regset.Reg(r), l.classBase[j]+regset.Reg(o))
				}
			}
		}
	}

	if c.AlignedPairs {
		l.pairClass = set.AllocClass()
		l.hasPairs = true
		start := c.Offset & 1
		for i := range (c.Base - 1) / 2 {
			set.ClassAddReg(l.pairClass, l.classBase[pairIdx]+regset.Reg(i*2+start))
		}
	}

	set.Finalize()
	l.Set = set
	return l, nil
}

func runCount(base, size int) int { return base - (size - 1) }

// Sizes returns the run sizes in class order.
func (l *Layout) Sizes() []int { return slices.Clone(l.sizes) }

// ClassForSize returns the class holding runs of the given size.
func (l *Layout) ClassForSize(size int) (regset.Class, bool) {
	i := slices.Index(l.sizes, size)
	if i < 0 {
		return 0, false
	}
	return l.classes[i], true
}

// AlignedPairClass returns the aligned pair class, if one was requested.
func (l *Layout) AlignedPairClass() (regset.Class, bool) {
	return l.pairClass, l.hasPairs
}

// run locates the size class of r and its position within that class.
func (l *Layout) run(r regset.Reg) (size, pos int) {
	for i := len(l.sizes) - 1; i >= 0; i-- {
		if r >= l.classBase[i] {
			return l.sizes[i], int(r - l.classBase[i])
		}
	}
	panic(fmt.Sprintf("layout: register %d out of range", r))
}

// HardwareReg returns the hardware number of the first base register of the
// run r stands for. It returns -1 for [regset.NoReg].
func (l *Layout) HardwareReg(r regset.Reg) int {
	if r == regset.NoReg {
		return -1
	}
	if int(r) >= l.Set.Count() || r < 0 {
		panic(fmt.Sprintf("layout: register %d out of range", r))
	}
	_, pos := l.run(r)
	return l.offset + pos
}

// RunSize returns the number of base registers covered by r.
func (l *Layout) RunSize(r regset.Reg) int {
	if int(r) >= l.Set.Count() || r < 0 {
		panic(fmt.Sprintf("layout: register %d out of range", r))
	}
	size, _ := l.run(r)
	return size
}

// Name renders r as "g<n>" for single registers and "g<n>-g<m>" for longer
// runs, using hardware numbers.
func (l *Layout) Name(r regset.Reg) string {
	if r == regset.NoReg {
		return "-"
	}
	hw := l.HardwareReg(r)
	if size := l.RunSize(r); size > 1 {
		return fmt.Sprintf("g%d-g%d", hw, hw+size-1)
	}
	return fmt.Sprintf("g%d", hw)
}
