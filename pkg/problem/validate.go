package problem

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/regalloc/pkg/errors"
	"github.com/matzehuels/regalloc/pkg/regset"
)

// Limits on problem size. Register sets and interference graphs keep a bit
// matrix, so memory grows with the square of these counts.
const (
	MaxRegisters = 4096
	MaxNodes     = 16384
)

// regTable resolves register references against the declared file.
type regTable struct {
	names []string
	index map[string]regset.Reg
}

func newRegTable(names []string) (regTable, error) {
	t := regTable{names: names, index: make(map[string]regset.Reg, len(names))}
	for i, name := range names {
		if err := errors.ValidateName("register", name); err != nil {
			return t, err
		}
		if _, dup := t.index[name]; dup {
			return t, errors.New(errors.ErrCodeInvalidInput, "duplicate register %q", name)
		}
		t.index[name] = regset.Reg(i)
	}
	return t, nil
}

// lookup accepts a register name or a decimal index.
func (t regTable) lookup(ref string) (regset.Reg, error) {
	if r, ok := t.index[ref]; ok {
		return r, nil
	}
	if i, err := strconv.Atoi(ref); err == nil && i >= 0 && i < len(t.names) {
		return regset.Reg(i), nil
	}
	return regset.NoReg, errors.New(errors.ErrCodeInvalidInput, "unknown register %q", ref)
}

// expand resolves an inclusive "lo-hi" range. Register names may themselves
// contain dashes, so every split point is tried.
func (t regTable) expand(rng string) ([]regset.Reg, error) {
	for i := strings.IndexByte(rng, '-'); i >= 0; {
		lo, errLo := t.lookup(rng[:i])
		hi, errHi := t.lookup(rng[i+1:])
		if errLo == nil && errHi == nil {
			if lo > hi {
				return nil, errors.New(errors.ErrCodeInvalidInput, "empty register range %q", rng)
			}
			out := make([]regset.Reg, 0, hi-lo+1)
			for r := lo; r <= hi; r++ {
				out = append(out, r)
			}
			return out, nil
		}
		next := strings.IndexByte(rng[i+1:], '-')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "invalid register range %q (want \"first-last\")", rng)
}

func (p *Problem) registerNames() []string {
	if len(p.RegisterNames) > 0 {
		return p.RegisterNames
	}
	names := make([]string, p.Registers)
	for i := range names {
		names[i] = "r" + strconv.Itoa(i)
	}
	return names
}

// Validate checks the problem for structural errors: missing or ambiguous
// register declarations, invalid or duplicate names, empty classes and
// references to unknown registers, classes or nodes.
func (p *Problem) Validate() error {
	classNames, err := p.validateRegisters()
	if err != nil {
		return err
	}
	return p.validateNodes(classNames)
}

// validateRegisters checks the register file and classes and returns the
// set of class names nodes may reference.
func (p *Problem) validateRegisters() (map[string]bool, error) {
	if p.Layout != nil {
		if p.Registers != 0 || len(p.RegisterNames) > 0 || len(p.Conflicts) > 0 || len(p.Classes) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "layout cannot be combined with registers, conflicts or classes")
		}
		if n := p.Layout.registerCount(); n > MaxRegisters {
			return nil, errors.New(errors.ErrCodeInvalidInput, "layout has %d registers, limit is %d", n, MaxRegisters)
		}
		l, err := p.Layout.Contiguous().Build()
		if err != nil {
			return nil, err
		}
		names := make(map[string]bool)
		for _, size := range l.Sizes() {
			names[sizeClassName(size)] = true
		}
		if _, ok := l.AlignedPairClass(); ok {
			names[alignedPairClassName] = true
		}
		return names, nil
	}

	switch {
	case p.Registers < 0:
		return nil, errors.New(errors.ErrCodeInvalidInput, "register count must not be negative, got %d", p.Registers)
	case p.Registers > 0 && len(p.RegisterNames) > 0:
		return nil, errors.New(errors.ErrCodeInvalidInput, "set either registers or register_names, not both")
	case p.Registers == 0 && len(p.RegisterNames) == 0:
		return nil, errors.New(errors.ErrCodeInvalidInput, "problem declares no registers")
	case p.Registers > MaxRegisters || len(p.RegisterNames) > MaxRegisters:
		return nil, errors.New(errors.ErrCodeInvalidInput, "problem declares %d registers, limit is %d",
			max(p.Registers, len(p.RegisterNames)), MaxRegisters)
	}

	regs, err := newRegTable(p.registerNames())
	if err != nil {
		return nil, err
	}
	for _, pair := range p.Conflicts {
		if len(pair) != 2 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "conflict %v must name exactly two registers", pair)
		}
		for _, ref := range pair {
			if _, err := regs.lookup(ref); err != nil {
				return nil, fmt.Errorf("conflict %v: %w", pair, err)
			}
		}
	}

	if len(p.Classes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "problem declares no classes")
	}
	names := make(map[string]bool, len(p.Classes))
	for _, c := range p.Classes {
		if err := errors.ValidateName("class", c.Name); err != nil {
			return nil, err
		}
		if names[c.Name] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate class %q", c.Name)
		}
		names[c.Name] = true
		members, err := c.resolve(regs)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", c.Name, err)
		}
		if len(members) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "class %q has no registers", c.Name)
		}
	}
	return names, nil
}

// registerCount returns how many registers the layout would build, counting
// only the run sizes Build accepts.
func (s *LayoutSpec) registerCount() int {
	if s.Base > MaxRegisters {
		return s.Base
	}
	total := 0
	for _, size := range s.Sizes {
		if size > 0 && size < s.Base {
			total += s.Base - (size - 1)
		}
	}
	return total
}

func (p *Problem) validateNodes(classNames map[string]bool) error {
	if len(p.Nodes) > MaxNodes {
		return errors.New(errors.ErrCodeInvalidInput, "problem declares %d nodes, limit is %d", len(p.Nodes), MaxNodes)
	}
	seen := make(map[string]bool, len(p.Nodes))
	for _, n := range p.Nodes {
		if err := errors.ValidateName("node", n.Name); err != nil {
			return err
		}
		if seen[n.Name] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate node %q", n.Name)
		}
		seen[n.Name] = true
		if !classNames[n.Class] {
			return errors.New(errors.ErrCodeInvalidInput, "node %q: unknown class %q", n.Name, n.Class)
		}
	}
	for _, pair := range p.Interferences {
		if len(pair) != 2 {
			return errors.New(errors.ErrCodeInvalidInput, "interference %v must name exactly two nodes", pair)
		}
		for _, name := range pair {
			if !seen[name] {
				return errors.New(errors.ErrCodeInvalidInput, "interference %v: unknown node %q", pair, name)
			}
		}
	}
	return nil
}

// resolve returns the class members in declaration order.
func (c ClassSpec) resolve(regs regTable) ([]regset.Reg, error) {
	switch {
	case c.Range != "" && len(c.Members) > 0:
		return nil, errors.New(errors.ErrCodeInvalidInput, "set either members or range, not both")
	case c.Range != "":
		return regs.expand(c.Range)
	}
	out := make([]regset.Reg, 0, len(c.Members))
	for _, ref := range c.Members {
		r, err := regs.lookup(ref)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
