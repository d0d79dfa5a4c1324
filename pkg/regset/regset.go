package regset

import (
	"fmt"
	"iter"
	"slices"

	"github.com/bits-and-blooms/bitset"
)

// Reg is a dense physical register index in the range [0, Set.Count()).
type Reg int

// Class is a dense register class index in the range [0, Set.ClassCount()).
type Class int

// NoReg marks a register result that has not been assigned.
const NoReg Reg = -1

// register holds the conflict relation for one physical register. The list
// preserves declaration order for iteration; the bit set answers membership.
type register struct {
	conflictList []Reg
	conflicts    *bitset.BitSet
}

// class is a membership set over registers together with its size p.
type class struct {
	members *bitset.BitSet
	p       int
}

// Set is a register file: registers, their pairwise conflicts and the named
// classes values are allocated from.
//
// The zero value is not usable - create sets with New.
type Set struct {
	regs      []register
	classes   []class
	q         [][]int
	finalized bool
}

// New creates a register file with count registers. Each register starts out
// conflicting only with itself.
func New(count int) *Set {
	if count < 0 {
		panic(fmt.Sprintf("regset: negative register count %d", count))
	}
	s := &Set{regs: make([]register, count)}
	for i := range s.regs {
		conflicts := bitset.New(uint(count))
		conflicts.Set(uint(i))
		s.regs[i] = register{
			conflictList: []Reg{Reg(i)},
			conflicts:    conflicts,
		}
	}
	return s
}

// Count returns the number of registers in the file.
func (s *Set) Count() int { return len(s.regs) }

// ClassCount returns the number of classes allocated so far.
func (s *Set) ClassCount() int { return len(s.classes) }

// Finalized reports whether Finalize has run.
func (s *Set) Finalized() bool { return s.finalized }

// AddConflict makes a and b mutually conflicting. Adding a conflict that
// already exists, including a register with itself, is a no-op.
func (s *Set) AddConflict(a, b Reg) {
	s.mustBuild("AddConflict")
	s.checkReg(a)
	s.checkReg(b)
	s.addOneWay(a, b)
	s.addOneWay(b, a)
}

func (s *Set) addOneWay(from, to Reg) {
	r := &s.regs[from]
	if r.conflicts.Test(uint(to)) {
		return
	}
	r.conflicts.Set(uint(to))
	r.conflictList = append(r.conflictList, to)
}

// Conflicting reports whether a and b conflict. A register always conflicts
// with itself.
func (s *Set) Conflicting(a, b Reg) bool {
	s.checkReg(a)
	s.checkReg(b)
	return s.regs[a].conflicts.Test(uint(b))
}

// Conflicts returns the registers r conflicts with, r itself first, in
// declaration order. The returned slice is a copy.
func (s *Set) Conflicts(r Reg) []Reg {
	s.checkReg(r)
	return slices.Clone(s.regs[r].conflictList)
}

// AllocClass returns a new, empty class.
func (s *Set) AllocClass() Class {
	s.mustBuild("AllocClass")
	s.classes = append(s.classes, class{members: bitset.New(uint(len(s.regs)))})
	return Class(len(s.classes) - 1)
}

// ClassAddReg makes r a member of c. Adding the same register twice does not
// count it twice.
func (s *Set) ClassAddReg(c Class, r Reg) {
	s.mustBuild("ClassAddReg")
	s.checkClass(c)
	s.checkReg(r)
	cl := &s.classes[c]
	if cl.members.Test(uint(r)) {
		return
	}
	cl.members.Set(uint(r))
	cl.p++
}

// Contains reports whether r is a member of c.
func (s *Set) Contains(c Class, r Reg) bool {
	s.checkClass(c)
	s.checkReg(r)
	return s.classes[c].members.Test(uint(r))
}

// Members returns the registers of c in ascending order.
func (s *Set) Members(c Class) []Reg {
	s.checkClass(c)
	members := make([]Reg, 0, s.classes[c].p)
	for r := range s.Regs(c) {
		members = append(members, r)
	}
	return members
}

// Regs iterates over the registers of c in ascending order without
// allocating.
func (s *Set) Regs(c Class) iter.Seq[Reg] {
	s.checkClass(c)
	m := s.classes[c].members
	return func(yield func(Reg) bool) {
		for i, ok := m.NextSet(0); ok; i, ok = m.NextSet(i + 1) {
			if !yield(Reg(i)) {
				return
			}
		}
	}
}

// P returns the number of registers in class c.
func (s *Set) P(c Class) int {
	s.checkClass(c)
	return s.classes[c].p
}

func (s *Set) mustBuild(op string) {
	if s.finalized {
		panic("regset: " + op + " after Finalize")
	}
}

func (s *Set) checkReg(r Reg) {
	if r < 0 || int(r) >= len(s.regs) {
		panic(fmt.Sprintf("regset: register %d out of range [0,%d)", r, len(s.regs)))
	}
}

func (s *Set) checkClass(c Class) {
	if c < 0 || int(c) >= len(s.classes) {
		panic(fmt.Sprintf("regset: class %d out of range [0,%d)", c, len(s.classes)))
	}
}
