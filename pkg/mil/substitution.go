package mil

// unsetSlot marks an arg-register file entry that has not yet been
// bound to a store address.
const unsetSlot = -1

// Substitution is the reversible second-order binding used while a
// meta-rule template is matched against a goal. It has two parts:
//
//   - a fixed 64-entry arg-register file, one slot per possible
//     Arg/ArgA index in a clause template, each holding either
//     unsetSlot or the store address the slot is bound to;
//   - an ordered binding list recording every (slot, src, tgt) binding
//     in the order it was made. The term store itself is not touched.
//
// The binding list gives exact LIFO undo: UnbindTo walks it in reverse
// and clears the corresponding register-file slot, mirroring the
// store's own bind/unbind discipline one level up.
type Substitution struct {
	regs     [MaxMetaVars]int
	bindings []substBinding
}

type substBinding struct {
	Slot uint
	Src  int
	Tgt  int
}

// NewSubstitution returns an empty substitution with every slot unset.
func NewSubstitution() *Substitution {
	s := &Substitution{}
	for i := range s.regs {
		s.regs[i] = unsetSlot
	}
	return s
}

// Lookup returns the store address bound to slot and true, or
// (0, false) if slot is unbound.
func (s *Substitution) Lookup(slot uint) (int, bool) {
	if slot >= MaxMetaVars {
		proofFault("Substitution.Lookup", "slot %d out of range", slot)
	}
	v := s.regs[slot]
	if v == unsetSlot {
		return 0, false
	}
	return v, true
}

// IsBound reports whether slot currently has a binding.
func (s *Substitution) IsBound(slot uint) bool {
	_, ok := s.Lookup(slot)
	return ok
}

// Bind records that slot is now bound to the term at addr; src, the
// store address the slot was read from, is kept in the binding list
// alongside it. It is
// a contract violation to bind an already-bound slot without first
// unbinding it: second-order unification never rebinds a
// meta-variable mid-derivation.
func (s *Substitution) Bind(slot uint, src, addr int) {
	if slot >= MaxMetaVars {
		proofFault("Substitution.Bind", "slot %d out of range", slot)
	}
	if s.regs[slot] != unsetSlot {
		proofFault("Substitution.Bind", "slot %d already bound", slot)
	}
	s.regs[slot] = addr
	s.bindings = append(s.bindings, substBinding{Slot: slot, Src: src, Tgt: addr})
}

// Mark records a position in the binding list (its current length),
// to be passed back to UnbindTo later. Unifier.Mark uses it to capture
// a substitution's extent without copying it.
func (s *Substitution) Mark() int {
	return len(s.bindings)
}

// UnbindTo reverses every binding applied since mark, in LIFO order,
// clearing the corresponding register-file slots.
func (s *Substitution) UnbindTo(mark int) {
	if mark < 0 || mark > len(s.bindings) {
		proofFault("Substitution.UnbindTo", "mark %d out of range (len=%d)", mark, len(s.bindings))
	}
	for i := len(s.bindings) - 1; i >= mark; i-- {
		b := s.bindings[i]
		s.regs[b.Slot] = unsetSlot
	}
	s.bindings = s.bindings[:mark]
}

// Bindings returns the bindings applied since mark, in application
// order, for callers that need to know which slots were newly
// resolved.
func (s *Substitution) Bindings(mark int) []substBinding {
	return append([]substBinding(nil), s.bindings[mark:]...)
}

// Len reports how many bindings are currently recorded.
func (s *Substitution) Len() int {
	return len(s.bindings)
}
