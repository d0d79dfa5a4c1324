// Package pipeline runs register allocation end to end, retrying with spills
// until a coloring is found.
//
// This package implements the allocate → spill → retry loop shared by the
// CLI and the HTTP service. By centralizing it, both entry points log,
// report hooks and shape results the same way.
//
// # Architecture
//
// Each attempt runs three stages on a freshly built instance:
//
//  1. Build: Lower the problem onto a register set and interference graph
//  2. Allocate: Simplify, optimistically push the rest, then select
//  3. Spill: On failure, remove the best spill candidate and try again
//
// A run stops with a result once an attempt colors every node, or with a
// SPILL_REQUIRED error when no node is worth spilling or the attempt limit
// is reached. Optionally the final graph is rendered to DOT or SVG; rendered
// SVG is cached by the hash of its DOT source.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(0), logger)
//	res, err := runner.Run(ctx, prob, pipeline.Options{
//	    Heuristic: "sum-neighbors",
//	    Formats:   []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Assignments, res.Spilled)
//	svg := res.Artifacts["svg"]
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/regalloc/pkg/errors"
	"github.com/matzehuels/regalloc/pkg/observability"
	"github.com/matzehuels/regalloc/pkg/problem"
	"github.com/matzehuels/regalloc/pkg/ra"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultMaxAttempts bounds the number of allocate/spill rounds.
	DefaultMaxAttempts = 16

	// DefaultHeuristic is the spill benefit heuristic used when none is set.
	DefaultHeuristic = ra.HeuristicFirstNeighbor

	// artifactTTL is how long a rendered SVG stays cached.
	artifactTTL = 7 * 24 * time.Hour
)

// Format constants for rendered artifacts.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// ValidFormats is the set of supported artifact formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
}

// =============================================================================
// Options
// =============================================================================

// Options configures an allocation run.
// This struct supports JSON serialization for API requests.
type Options struct {
	MaxAttempts int      `json:"max_attempts,omitempty"`
	Heuristic   string   `json:"heuristic,omitempty"`
	Trace       bool     `json:"trace,omitempty"`   // Record simplify/select events of the final attempt
	Formats     []string `json:"formats,omitempty"` // Artifacts to render from the final graph
	Detailed    bool     `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger              `json:"-"`
	Hooks  observability.AllocHooks `json:"-"` // Receives run events instead of observability.Alloc()

	heuristic ra.SpillHeuristic
	validated bool
}

// Result contains the outputs of a run.
type Result struct {
	problem.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte `json:"-"`

	// Instance is the graph of the final attempt.
	Instance *problem.Instance `json:"-"`
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid artifact format: %q (must be one of: dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.MaxAttempts < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_attempts must not be negative, got %d", o.MaxAttempts)
	}
	if o.MaxAttempts == 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.Heuristic == "" {
		o.Heuristic = DefaultHeuristic
	}
	h, err := ra.ParseSpillHeuristic(o.Heuristic)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "heuristic")
	}
	o.heuristic = h
	o.Heuristic = h.String()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.Formats = slices.Compact(slices.Sorted(slices.Values(o.Formats)))
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// WantsFormat reports whether the options request the given artifact.
func (o *Options) WantsFormat(format string) bool {
	return slices.Contains(o.Formats, format)
}
