package mil

import "fmt"

// StoreFault reports a contract violation in the term store: binding a
// cell that was not a self-referencing Ref, or dereferencing past the
// end of the arena. These are programming errors, not proof-search
// failures — callers recover from a StoreFault panic only to attach
// diagnostic context; they never retry the operation.
type StoreFault struct {
	Op      string
	Addr    int
	Cell    Cell
	Message string
}

func (e *StoreFault) Error() string {
	return fmt.Sprintf("mil: store fault during %s at %d (%s): %s", e.Op, e.Addr, e.Cell, e.Message)
}

func storeFault(op string, addr int, cell Cell, format string, args ...interface{}) {
	panic(&StoreFault{Op: op, Addr: addr, Cell: cell, Message: fmt.Sprintf(format, args...)})
}

// ProofFault reports a contract violation inside the proof engine: a
// goal containing a raw Arg cell reaching the unifier, or popping an
// empty hypothesis during backtrack.
type ProofFault struct {
	Op      string
	Message string
}

func (e *ProofFault) Error() string {
	return fmt.Sprintf("mil: proof fault during %s: %s", e.Op, e.Message)
}

func proofFault(op, format string, args ...interface{}) {
	panic(&ProofFault{Op: op, Message: fmt.Sprintf(format, args...)})
}
