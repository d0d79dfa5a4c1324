// Package regset models a physical register file whose registers may alias
// each other across register classes.
//
// # Overview
//
// GPU and DSP register files are rarely a flat array of interchangeable
// registers. A single hardware register may be addressable as a scalar, as
// half of a pair, or as part of a four-wide vector, and choosing one of those
// views makes the overlapping ones unusable. This package describes such a
// file as a set of registers plus a symmetric conflict relation, and groups
// registers into (possibly overlapping) classes that a program value may be
// allocated from.
//
// # Building a Set
//
// Create a set with [New], declare conflicts with [Set.AddConflict], allocate
// classes with [Set.AllocClass] and populate them with [Set.ClassAddReg]:
//
//	s := regset.New(4)
//	s.AddConflict(0, 2)
//	scalar := s.AllocClass()
//	s.ClassAddReg(scalar, 0)
//	s.ClassAddReg(scalar, 1)
//	s.Finalize()
//
// Every register always conflicts with itself, and conflicts are symmetric.
//
// # Class Geometry
//
// [Set.Finalize] precomputes, for every ordered class pair (B, C), the value
// q(B, C): the largest number of B registers that a single C register can
// conflict with. Together with p(B), the class size, this is what makes the
// simplification test in package ra sound for irregular register files.
// Finalize runs once; afterwards the set is immutable.
//
// # Misuse
//
// Out-of-range indices, finalizing twice and mutating a finalized set are
// programmer errors and panic. None of them are reported as error values.
//
// # Concurrency
//
// A Set is not safe for concurrent mutation. Once finalized it is read-only
// and may be shared by any number of goroutines, each allocating its own
// interference graph against it.
package regset
