// Package pkg provides the libraries behind regalloc, a graph-coloring
// register allocator for register files with aliased classes.
//
// # Overview
//
// Real register files overlap: an x86 AX contains AL and AH, an ARM D0
// covers S0 and S1, and a 64-bit pair on a GPU occupies two 32-bit slots.
// regalloc colors interference graphs over such files using the p/q test,
// which decides whether a node can always be colored no matter how its
// neighbors are colored. The pkg directory is organized into three areas:
//
//  1. Core allocation: [regset], [ra] and [layout]
//  2. Problems and results: [problem] and [render]
//  3. Infrastructure: [pipeline], [cache], [api], [observability], [errors]
//     and [buildinfo]
//
// # Architecture
//
// The typical data flow through regalloc:
//
//	Problem file (TOML or JSON)
//	         ↓
//	    [problem] package (decode, validate, build)
//	         ↓
//	    [regset] package (register set + p/q geometry)
//	         ↓
//	    [ra] package (simplify → optimistic push → select)
//	         ↓
//	    [pipeline] package (spill and retry until colored)
//	         ↓
//	    JSON result, DOT, SVG/PDF/PNG
//
// # Quick Start
//
// Allocate a problem file, spilling as needed:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/regalloc/pkg/cache"
//	    "github.com/matzehuels/regalloc/pkg/pipeline"
//	    "github.com/matzehuels/regalloc/pkg/problem"
//	)
//
//	prob, _ := problem.Load("examples/triangle.toml")
//	runner := pipeline.NewRunner(cache.NewMemoryCache(0), nil)
//	res, _ := runner.Run(context.Background(), prob, pipeline.Options{})
//	fmt.Println(res.Assignments, res.Spilled)
//
// Or drive the allocator directly:
//
//	set := regset.New(2)
//	gpr := set.AllocClass()
//	set.ClassAddReg(gpr, 0)
//	set.ClassAddReg(gpr, 1)
//	set.Finalize()
//
//	g := ra.NewGraph(set, 2)
//	g.SetNodeClass(0, gpr)
//	g.SetNodeClass(1, gpr)
//	g.AddInterference(0, 1)
//	ok := g.AllocateNoSpills()
//
// # Main Packages
//
// ## Core
//
// [regset] - Registers, conflicts between them, and classes. Finalize
// computes p for every class and q for every pair of classes.
//
// [ra] - The interference graph and the allocator: Simplify removes nodes
// that pass the p/q test, OptimisticColor pushes the rest, and Select pops
// the stack assigning the lowest free register. Spill candidates are ranked
// by a pluggable benefit heuristic.
//
// [layout] - Builds register sets for files of contiguous runs of 1, 2, 4
// or more base registers, optionally with an aligned-pair class.
//
// ## Problems and Results
//
// [problem] - Problem files, their validation and lowering, and the result
// schema shared by the CLI and the API.
//
// [render] - Colored interference graphs in DOT, SVG via Graphviz, and
// conversion to PDF and PNG.
//
// ## Infrastructure
//
// [pipeline] - The allocate → spill → retry loop used by the CLI and the
// API, so both log, trace and report hooks the same way.
//
// [cache] - Memory and file caches for rendered artifacts.
//
// [api] - The HTTP service behind "regalloc serve".
//
// [observability] - Hooks for run, attempt and spill events.
//
// [errors] - Error codes and the structured spill error.
//
// [buildinfo] - Version, commit and build date set at link time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/ra/...       # Specific package
//	go test -run Example ./... # Examples only
//
// [regset]: https://pkg.go.dev/github.com/matzehuels/regalloc/pkg/regset
// [ra]: https://pkg.go.dev/github.com/matzehuels/regalloc/pkg/ra
// [layout]: https://pkg.go.dev/github.com/matzehuels/regalloc/pkg/layout
// [problem]: https://pkg.go.dev/github.com/matzehuels/regalloc/pkg/problem
// [render]: https://pkg.go.dev/github.com/matzehuels/regalloc/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/regalloc/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/regalloc/pkg/cache
// [api]: https://pkg.go.dev/github.com/matzehuels/regalloc/pkg/api
// [observability]: https://pkg.go.dev/github.com/matzehuels/regalloc/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/regalloc/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/regalloc/pkg/buildinfo
package pkg
