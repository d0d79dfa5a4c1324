package problem

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Result is the outcome of an allocation run, suitable for JSON output.
type Result struct {
	RunID              string            `json:"run_id"`
	Success            bool              `json:"success"`
	Heuristic          string            `json:"heuristic"`
	Assignments        map[string]string `json:"assignments"`
	HardwareRegs       map[string]int    `json:"hardware_regs,omitempty"`
	Spilled            []string          `json:"spilled"`
	TriviallyColorable bool              `json:"trivially_colorable"`
	Attempts           []Attempt         `json:"attempts"`
	Duration           time.Duration     `json:"duration_ns"`
	Trace              []TraceEvent      `json:"trace,omitempty"`
}

// Attempt records one pass of simplify and select over a (possibly reduced)
// problem.
type Attempt struct {
	Nodes    int           `json:"nodes"`
	Edges    int           `json:"edges"`
	Colored  bool          `json:"colored"`
	Trivial  bool          `json:"trivial"`
	Spill    string        `json:"spill,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// TraceEvent is a named form of an allocator trace event.
type TraceEvent struct {
	Kind string `json:"kind"`
	Node string `json:"node"`
	Reg  string `json:"reg,omitempty"`
}

// WriteResult encodes r as indented JSON.
func WriteResult(w io.Writer, r *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadResult decodes a JSON result written by [WriteResult].
func ReadResult(r io.Reader) (*Result, error) {
	var out Result
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}

// Geometry describes the register classes of a built problem: each class's
// p value and members, and the q matrix indexed by class.
type Geometry struct {
	Registers int           `json:"registers"`
	Nodes     int           `json:"nodes"`
	Edges     int           `json:"edges"`
	Classes   []ClassReport `json:"classes"`
	Q         [][]int       `json:"q"`
}

// ClassReport summarizes one register class.
type ClassReport struct {
	Name    string   `json:"name"`
	P       int      `json:"p"`
	Members []string `json:"members"`
}
