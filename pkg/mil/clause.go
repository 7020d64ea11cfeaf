package mil

import "strings"

// ClauseKind distinguishes the four roles a clause plays through
// resolution: a first-order program/background fact or
// rule, a literal appearing in a clause body, a second-order meta-rule
// template, or a clause currently sitting in the hypothesis stack.
type ClauseKind uint8

const (
	// ClauseProgram is a first-order background-theory clause.
	ClauseProgram ClauseKind = iota
	// ClauseBody is a literal inside another clause's body, not a
	// standalone resolvable unit on its own.
	ClauseBody
	// ClauseMeta is a second-order meta-rule template: its head and
	// possibly its body literals carry Arg/ArgA predicate or argument
	// positions that must be instantiated via unification.
	ClauseMeta
	// ClauseHypothesis is a clause currently pushed onto the
	// hypothesis stack, either learned or invented during this proof.
	ClauseHypothesis
)

func (k ClauseKind) String() string {
	switch k {
	case ClauseProgram:
		return "program"
	case ClauseBody:
		return "body"
	case ClauseMeta:
		return "meta"
	case ClauseHypothesis:
		return "hypothesis"
	default:
		return "unknown"
	}
}

// MaxMetaVars bounds the number of distinct Arg/ArgA slots a single
// clause template may reference, matching the substitution's 64-entry
// arg-register file.
const MaxMetaVars = 64

// Clause is a stored rule: a head literal address followed by zero or
// more body literal addresses, all living in the same term store. Head
// and Body elements are store addresses of Func/Str cells (or Con, for
// a nullary literal).
type Clause struct {
	Kind ClauseKind
	Head int
	Body []int

	// MetaVars records, as a bitmask, which of the 64 possible Arg/ArgA
	// slots this clause's template actually references. A clause with
	// MetaVars == 0 is purely first-order and never needs a
	// substitution to resolve against.
	MetaVars uint64
}

// NewClause builds a Clause, computing MetaVars from the literals by
// scanning their store representation through store.
func NewClause(store *Store, kind ClauseKind, head int, body ...int) Clause {
	c := Clause{Kind: kind, Head: head, Body: append([]int(nil), body...)}
	c.MetaVars = scanMetaVars(store, head)
	for _, b := range body {
		c.MetaVars |= scanMetaVars(store, b)
	}
	return c
}

// HasMetaVar reports whether slot (0..63) is referenced by this clause.
func (c Clause) HasMetaVar(slot uint) bool {
	if slot >= MaxMetaVars {
		return false
	}
	return c.MetaVars&(1<<slot) != 0
}

// Literals returns head followed by the body literals, the order
// "final resolution" walks a clause in.
func (c Clause) Literals() []int {
	out := make([]int, 0, 1+len(c.Body))
	out = append(out, c.Head)
	out = append(out, c.Body...)
	return out
}

// String renders the clause for diagnostics using store to resolve
// symbols and follow chains.
func (c Clause) String(store *Store) string {
	var b strings.Builder
	b.WriteString(store.TermString(c.Head))
	if len(c.Body) > 0 {
		b.WriteString(" :- ")
		for i, lit := range c.Body {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(store.TermString(lit))
		}
	}
	return b.String()
}

// scanMetaVars walks the term rooted at addr (without dereferencing
// through bindings, since clause templates are scanned before any
// substitution exists) and records every Arg/ArgA slot it touches.
func scanMetaVars(store *Store, addr int) uint64 {
	var mask uint64
	var walk func(addr int)
	walk = func(addr int) {
		c := store.Cell(addr)
		switch c.Tag {
		case Arg, ArgA:
			if c.Payload < MaxMetaVars {
				mask |= 1 << c.Payload
			}
		case Ref:
			if int(c.Payload) != addr {
				walk(int(c.Payload)) // follow a template's Ref indirection to the real subterm
			}
		case Str:
			walk(int(c.Payload))
		case Func:
			arity := int(c.Payload)
			walk(addr + 1) // the functor symbol position, second-order for an invented predicate
			for i := 0; i < arity; i++ {
				walk(addr + 2 + i)
			}
		case Lis:
			if c.IsEmptyList() {
				return
			}
			pair := int(c.Payload)
			walk(pair)
			walk(pair + 1)
		}
	}
	walk(addr)
	return mask
}
