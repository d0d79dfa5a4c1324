package ra

import (
	"fmt"

	"github.com/matzehuels/regalloc/pkg/regset"
)

// EventKind identifies a step recorded in an allocation trace.
type EventKind int

const (
	EventSimplified EventKind = iota // pushed by Simplify
	EventOptimistic                  // pushed by OptimisticColor
	EventAssigned                    // colored by Select
	EventFailed                      // Select found no register
)

func (k EventKind) String() string {
	switch k {
	case EventSimplified:
		return "simplify"
	case EventOptimistic:
		return "optimistic"
	case EventAssigned:
		return "assign"
	case EventFailed:
		return "fail"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is one step of an allocation. Reg is NoReg except for EventAssigned.
type Event struct {
	Kind EventKind
	Node Node
	Reg  regset.Reg
}

// EnableTrace starts recording allocation events. Tracing has no effect on
// the coloring.
func (g *Graph) EnableTrace() { g.tracing = true }

// Trace returns a copy of the events recorded so far.
func (g *Graph) Trace() []Event { return append([]Event(nil), g.trace...) }

func (g *Graph) record(e Event) {
	if g.tracing {
		g.trace = append(g.trace, e)
	}
}
