// Package problem reads register allocation problems from TOML or JSON and
// turns them into a register set plus an interference graph.
//
// # Overview
//
// A problem file names a register file, the classes a value may be allocated
// from, the values to allocate (nodes) and which of them are live at the same
// time (interferences). The same schema is accepted in both formats, so a
// problem can be written by hand in TOML or produced by a compiler in JSON.
//
// # TOML Format
//
//	registers = 4
//	conflicts = [["r0", "r1"]]
//	interferences = [["a", "b"]]
//
//	[[classes]]
//	name = "gpr"
//	range = "r0-r3"
//
//	[[nodes]]
//	name = "a"
//	class = "gpr"
//
//	[[nodes]]
//	name = "b"
//	class = "gpr"
//	spill_cost = 4.0
//
// Top-level keys must come before the first table, as usual in TOML.
//
// # Registers
//
// The register file is given either as a count ("registers = 8", named r0
// through r7) or as explicit names ("register_names = ["al", "ah", "ax"]").
// Conflicts are pairs of register names; a bare decimal index is accepted
// wherever a name is. Every register conflicts with itself.
//
// # Classes
//
// Each class has a unique name and either a member list or an inclusive
// range such as "r0-r7". Members are deduplicated.
//
// # Layouts
//
// Instead of registers, conflicts and classes, a problem may describe a file
// of contiguous runs:
//
//	[layout]
//	base = 16
//	sizes = [1, 2, 4]
//	aligned_pairs = true
//
// The classes are then named "size1", "size2", "size4" and "aligned2", and
// registers are named by hardware number ("g3", "g4-g5").
//
// # Nodes
//
// Nodes carry a name, a class and an optional spill cost. The cost defaults
// to 1; a cost of zero or less keeps the node from ever being spilled.
//
// # Building
//
// [Problem.Validate] checks names and references and reports coded errors
// from [github.com/matzehuels/regalloc/pkg/errors]. [Problem.Build] returns
// an [Instance] with a finalized register set and a fresh graph. Problems
// are plain values: [Problem.Without] derives a smaller problem for the next
// spill attempt without touching the original.
package problem
