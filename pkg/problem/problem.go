package problem

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/regalloc/pkg/errors"
	"github.com/matzehuels/regalloc/pkg/layout"
)

// DefaultSpillCost is the cost given to nodes that do not set one.
const DefaultSpillCost = 1.0

// Problem is a decoded allocation problem.
type Problem struct {
	Registers     int         `toml:"registers,omitempty" json:"registers,omitempty"`
	RegisterNames []string    `toml:"register_names,omitempty" json:"register_names,omitempty"`
	Conflicts     [][]string  `toml:"conflicts,omitempty" json:"conflicts,omitempty"`
	Interferences [][]string  `toml:"interferences,omitempty" json:"interferences,omitempty"`
	Layout        *LayoutSpec `toml:"layout,omitempty" json:"layout,omitempty"`
	Classes       []ClassSpec `toml:"classes,omitempty" json:"classes,omitempty"`
	Nodes         []NodeSpec  `toml:"nodes" json:"nodes"`
}

// LayoutSpec mirrors [layout.Contiguous] in problem files.
type LayoutSpec struct {
	Base         int   `toml:"base" json:"base"`
	Sizes        []int `toml:"sizes" json:"sizes"`
	AlignedPairs bool  `toml:"aligned_pairs,omitempty" json:"aligned_pairs,omitempty"`
	Offset       int   `toml:"offset,omitempty" json:"offset,omitempty"`
}

// Contiguous converts the spec to a layout description.
func (s LayoutSpec) Contiguous() layout.Contiguous {
	return layout.Contiguous{
		Base:         s.Base,
		Sizes:        slices.Clone(s.Sizes),
		AlignedPairs: s.AlignedPairs,
		Offset:       s.Offset,
	}
}

// ClassSpec declares a register class by member list or inclusive range.
type ClassSpec struct {
	Name    string   `toml:"name" json:"name"`
	Members []string `toml:"members,omitempty" json:"members,omitempty"`
	Range   string   `toml:"range,omitempty" json:"range,omitempty"`
}

// NodeSpec declares a value to allocate.
type NodeSpec struct {
	Name      string   `toml:"name" json:"name"`
	Class     string   `toml:"class" json:"class"`
	SpillCost *float64 `toml:"spill_cost,omitempty" json:"spill_cost,omitempty"`
}

// Cost returns the node's spill cost, applying [DefaultSpillCost].
func (n NodeSpec) Cost() float64 {
	if n.SpillCost == nil {
		return DefaultSpillCost
	}
	return *n.SpillCost
}

// Decode reads a problem in the given format ("toml" or "json"). An empty
// format is detected from the first non-blank byte: '{' selects JSON.
//
// Unknown keys are rejected in both formats. The decoded problem is
// validated before it is returned.
func Decode(r io.Reader, format string) (*Problem, error) {
	if err := errors.ValidateFormat(format); err != nil {
		return nil, err
	}
	br := bufio.NewReader(r)
	if format == "" {
		format = sniff(br)
	}

	var p Problem
	switch strings.ToLower(format) {
	case "json":
		dec := json.NewDecoder(br)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
		}
	default:
		md, err := toml.NewDecoder(br).Decode(&p)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown key %q", undecoded[0].String())
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func sniff(br *bufio.Reader) string {
	for i := 1; ; i++ {
		buf, _ := br.Peek(i)
		if len(buf) < i {
			return "toml"
		}
		switch buf[i-1] {
		case ' ', '\t', '\r', '\n':
			continue
		case '{':
			return "json"
		}
		return "toml"
	}
}

// Load reads a problem file. The format follows the file extension, falling
// back to content detection for other extensions.
func Load(path string) (*Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	format, ferr := errors.FormatFromPath(path)
	if ferr != nil {
		format = ""
	}
	p, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Encode writes the problem in the given format.
func (p *Problem) Encode(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	case "toml", "":
		if err := toml.NewEncoder(w).Encode(p); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want toml or json)", format)
}

// Clone returns a deep copy of p.
func (p *Problem) Clone() *Problem {
	out := &Problem{
		Registers:     p.Registers,
		RegisterNames: slices.Clone(p.RegisterNames),
		Conflicts:     clonePairs(p.Conflicts),
		Interferences: clonePairs(p.Interferences),
		Classes:       make([]ClassSpec, len(p.Classes)),
		Nodes:         make([]NodeSpec, len(p.Nodes)),
	}
	if p.Layout != nil {
		l := *p.Layout
		l.Sizes = slices.Clone(l.Sizes)
		out.Layout = &l
	}
	for i, c := range p.Classes {
		c.Members = slices.Clone(c.Members)
		out.Classes[i] = c
	}
	for i, n := range p.Nodes {
		if n.SpillCost != nil {
			cost := *n.SpillCost
			n.SpillCost = &cost
		}
		out.Nodes[i] = n
	}
	return out
}

func clonePairs(in [][]string) [][]string {
	if in == nil {
		return nil
	}
	out := make([][]string, len(in))
	for i, pair := range in {
		out[i] = slices.Clone(pair)
	}
	return out
}

// Without returns a copy of p with the named nodes and every interference
// touching them removed. Unknown names are ignored.
func (p *Problem) Without(nodes ...string) *Problem {
	out := p.Clone()
	out.Nodes = slices.DeleteFunc(out.Nodes, func(n NodeSpec) bool {
		return slices.Contains(nodes, n.Name)
	})
	out.Interferences = slices.DeleteFunc(out.Interferences, func(pair []string) bool {
		return slices.ContainsFunc(pair, func(name string) bool { return slices.Contains(nodes, name) })
	})
	return out
}
