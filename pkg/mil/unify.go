package mil

// Unifier performs second-order unification between a goal (a fully
// first-order term already resolved by the builder) and a clause
// template, whose Arg/ArgA slots are resolved through a
// Substitution rather than bound directly in the store.
//
// Every store binding and substitution binding it applies is recorded
// so the proof engine can undo exactly this unification's effects on
// backtrack, without disturbing bindings made earlier in the
// derivation.
type Unifier struct {
	store *Store
	sub   *Substitution
	trail []Binding
}

// NewUnifier creates a Unifier over store and sub. sub may be nil for
// plain first-order unification (e.g. unifying a candidate hypothesis
// head's argument against another fully concrete term).
func NewUnifier(store *Store, sub *Substitution) *Unifier {
	return &Unifier{store: store, sub: sub}
}

// Mark captures this unifier's current extent (store trail length and,
// if a substitution is attached, its binding-list length) for later
// UndoTo.
func (u *Unifier) Mark() (trailMark, subMark int) {
	trailMark = len(u.trail)
	if u.sub != nil {
		subMark = u.sub.Mark()
	}
	return trailMark, subMark
}

// UndoTo reverses every store and substitution binding applied since
// mark, in LIFO order.
func (u *Unifier) UndoTo(trailMark, subMark int) {
	if trailMark < 0 || trailMark > len(u.trail) {
		proofFault("Unifier.UndoTo", "trail mark %d out of range (len=%d)", trailMark, len(u.trail))
	}
	undone := u.trail[trailMark:]
	u.store.Unbind(undone)
	u.trail = u.trail[:trailMark]
	if u.sub != nil {
		u.sub.UnbindTo(subMark)
	}
}

// Trail returns every store binding applied by this unifier since its
// creation (or since the caller last truncated it via UndoTo).
func (u *Unifier) Trail() []Binding {
	return append([]Binding(nil), u.trail...)
}

// UnifyGoal unifies goalAddr (which must resolve to a fully
// first-order term — a raw Arg/ArgA cell reaching this position is a
// builder contract violation, not a normal failure) against
// templateAddr (which may carry meta-variable slots bound through this
// Unifier's Substitution).
func (u *Unifier) UnifyGoal(goalAddr, templateAddr int) bool {
	if isRawMetaVar(u.store, goalAddr) {
		proofFault("Unifier.UnifyGoal", "goal side resolved to a raw Arg/ArgA cell at %d", goalAddr)
	}
	return u.unify(goalAddr, templateAddr)
}

// Unify performs plain first-order unification between two terms,
// neither of which is expected to carry meta-variable slots. It is the
// same recursive machinery as UnifyGoal but skips the goal-side
// contract check, for callers that already know both sides are
// concrete (e.g. comparing two hypothesis clause heads).
func (u *Unifier) Unify(a, b int) bool {
	return u.unify(a, b)
}

func isRawMetaVar(store *Store, addr int) bool {
	c := store.Cell(addr)
	return c.Tag == Arg || c.Tag == ArgA
}

// resolve follows Ref/Str chains through the store and then, if the
// result is a meta-variable slot with a substitution binding, follows
// that binding back into the store and resolves again. It returns the
// final address and its cell.
func (u *Unifier) resolve(addr int) (int, Cell) {
	for {
		addr = u.store.Deref(addr)
		c := u.store.Cell(addr)
		if (c.Tag == Arg || c.Tag == ArgA) && u.sub != nil {
			if bound, ok := u.sub.Lookup(c.Payload); ok {
				addr = bound
				continue
			}
		}
		return addr, c
	}
}

func (u *Unifier) unify(a, b int) bool {
	addrA, cellA := u.resolve(a)
	addrB, cellB := u.resolve(b)

	if addrA == addrB {
		return true
	}

	// Either side an unbound store variable: bind it to the other.
	if cellA.Tag == Ref && int(cellA.Payload) == addrA {
		return u.bindStore(addrA, addrB)
	}
	if cellB.Tag == Ref && int(cellB.Payload) == addrB {
		return u.bindStore(addrB, addrA)
	}

	// Either side an unbound meta-variable slot: bind the substitution.
	if (cellA.Tag == Arg || cellA.Tag == ArgA) && u.sub != nil {
		return u.bindSlot(cellA.Payload, addrA, addrB)
	}
	if (cellB.Tag == Arg || cellB.Tag == ArgA) && u.sub != nil {
		return u.bindSlot(cellB.Payload, addrB, addrA)
	}

	if cellA.Tag != cellB.Tag {
		// A Str on one side and a bare Func on the other both name a
		// compound term; resolve already chases Str to its Func, so a
		// genuine tag mismatch here is a real clash.
		return false
	}

	switch cellA.Tag {
	case Con:
		return cellA.Payload == cellB.Payload
	case Int:
		return cellA.Payload == cellB.Payload
	case Flt:
		return cellA.Payload == cellB.Payload
	case Func:
		if cellA.Payload != cellB.Payload {
			return false // arity mismatch
		}
		// The functor symbol position is itself unified like any other
		// subterm rather than compared as a raw payload, so a
		// second-order predicate variable in either template's head
		// (predicate invention) unifies the same way an
		// ordinary argument would.
		if !u.unify(addrA+1, addrB+1) {
			return false
		}
		arity := int(cellA.Payload)
		for i := 0; i < arity; i++ {
			if !u.unify(addrA+2+i, addrB+2+i) {
				return false
			}
		}
		return true
	case Lis:
		emptyA := cellA.IsEmptyList()
		emptyB := cellB.IsEmptyList()
		if emptyA && emptyB {
			return true
		}
		if emptyA != emptyB {
			return false
		}
		pairA := int(cellA.Payload)
		pairB := int(cellB.Payload)
		return u.unify(pairA, pairB) && u.unify(pairA+1, pairB+1)
	default:
		proofFault("Unifier.unify", "unexpected resolved tag %s at %d/%d", cellA.Tag, addrA, addrB)
		return false
	}
}

func (u *Unifier) bindStore(src, tgt int) bool {
	u.store.Bind([]Binding{{Src: src, Tgt: tgt}})
	u.trail = append(u.trail, Binding{Src: src, Tgt: tgt})
	return true
}

func (u *Unifier) bindSlot(slot uint, src, tgt int) bool {
	u.sub.Bind(slot, src, tgt)
	return true
}
