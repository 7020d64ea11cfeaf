package mil

import (
	"fmt"
	"math"
)

// Tag identifies the kind of value stored in a Cell. The tag set is
// closed: every cell in the store is exactly one of these.
type Tag uint8

const (
	// Ref is a first-order variable. Payload is the cell's own
	// absolute store index when unbound, or the bound target's index.
	Ref Tag = iota
	// Arg is a clause-template first-order variable. Payload is an
	// argument slot (0..63). Only appears in clause storage and in
	// rebuilt clause templates.
	Arg
	// ArgA is a universally-quantified clause-template variable (a
	// meta-rule "∀" slot). Same representation as Arg, flagged
	// separately so the builder knows to treat it identically to Arg
	// when rebuilding (the distinction matters to the parser, not to
	// the builder).
	ArgA
	// Func is a functor cell. Payload is the arity n; the next n+1
	// cells are the functor symbol followed by n argument cells.
	Func
	// Str is an indirection to a Func cell. Payload is the functor's
	// store index.
	Str
	// Lis is a cons cell. Payload indexes a pair of cells (head, tail).
	Lis
	// Con is an interned constant symbol id.
	Con
	// Int is a signed integer immediate.
	Int
	// Flt is a floating point immediate (bit-reinterpreted in payload).
	Flt
)

func (t Tag) String() string {
	switch t {
	case Ref:
		return "Ref"
	case Arg:
		return "Arg"
	case ArgA:
		return "ArgA"
	case Func:
		return "Func"
	case Str:
		return "Str"
	case Lis:
		return "Lis"
	case Con:
		return "Con"
	case Int:
		return "Int"
	case Flt:
		return "Flt"
	default:
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
}

// ConPtr is the sentinel payload used by the distinguished empty-list
// cell: a Lis cell whose payload is ConPtr denotes '[]'.
const ConPtr = ^uint(0)

// floatBits and floatFromBits reinterpret a float64 as the uint payload
// a Flt cell stores, and back. Store.PushFloat uses the former;
// Store.writeTerm uses the latter.
func floatBits(f float64) uint {
	return uint(math.Float64bits(f))
}

func floatFromBits(payload uint) float64 {
	return math.Float64frombits(uint64(payload))
}

// Cell is one slot of the term store arena: a tag plus an unsigned
// payload whose interpretation depends on the tag (see Tag's doc
// comments).
type Cell struct {
	Tag     Tag
	Payload uint
}

// IsEmptyList reports whether this cell is the distinguished empty-list
// sentinel (Lis, ConPtr).
func (c Cell) IsEmptyList() bool {
	return c.Tag == Lis && c.Payload == ConPtr
}

// String renders a single cell for diagnostics. It does not resolve
// functor symbols or follow chains; use Store.TermString for a
// pretty-printed term.
func (c Cell) String() string {
	if c.IsEmptyList() {
		return "Lis(nil)"
	}
	return fmt.Sprintf("%s(%d)", c.Tag, c.Payload)
}
