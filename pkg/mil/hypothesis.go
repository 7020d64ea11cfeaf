package mil

// Constraint is a disequality recorded against a hypothesis clause: the
// terms at Left and Right (the clause's head predicate and one other
// meta-variable slot) must never resolve to the same term, or the clause
// could be proved by reusing its own head.
type Constraint struct {
	Left  int
	Right int
}

// HypothesisFrame pairs one learned or invented clause with the
// disequality constraints accumulated against it over the course of a
// derivation.
type HypothesisFrame struct {
	Clause      Clause
	Constraints []Constraint
}

// Hypothesis is the push-down stack of clauses a proof is allowed to
// resolve against in addition to the fixed background theory: one
// frame per clause learned or invented so far in this derivation, each
// carrying its own constraint set.
//
// Constraints are checked only at final resolution — once a full proof
// has been found and every binding in it is maximally resolved — never
// incrementally as they are added. Checking a constraint against the
// substitution's state at the moment it is recorded is unsound: later
// goals in the same derivation can bind variables the constraint's
// terms depend on, so a constraint that looks satisfied when added can
// be silently violated by the time the proof actually completes.
// Deferring every check to CheckFinal, after the derivation stops
// adding bindings, avoids that.
type Hypothesis struct {
	frames []HypothesisFrame
}

// NewHypothesis returns an empty hypothesis.
func NewHypothesis() *Hypothesis {
	return &Hypothesis{}
}

// Push adds clause as a new top frame with no constraints yet.
func (h *Hypothesis) Push(clause Clause) {
	h.frames = append(h.frames, HypothesisFrame{Clause: clause})
}

// Pop removes and returns the top frame. It is a contract violation to
// pop an empty hypothesis (the proof engine only ever pops frames it
// itself pushed, in LIFO order while undoing a derivation).
func (h *Hypothesis) Pop() HypothesisFrame {
	if len(h.frames) == 0 {
		proofFault("Hypothesis.Pop", "pop on empty hypothesis stack")
	}
	top := h.frames[len(h.frames)-1]
	h.frames = h.frames[:len(h.frames)-1]
	return top
}

// Len reports the number of clauses currently in the hypothesis.
func (h *Hypothesis) Len() int {
	return len(h.frames)
}

// Peek returns the top frame without removing it, and false if the
// hypothesis is empty.
func (h *Hypothesis) Peek() (HypothesisFrame, bool) {
	if len(h.frames) == 0 {
		return HypothesisFrame{}, false
	}
	return h.frames[len(h.frames)-1], true
}

// AddConstraint records a new disequality constraint against the frame
// at depth (0 = bottom of stack, Len()-1 = top). The proof engine calls
// this the moment a clause is pushed onto the hypothesis, comparing the
// clause's head predicate against every other meta-variable slot the
// matched template resolved — catching, for instance, a clause whose
// body turns out to be satisfied only by reusing the very fact the
// clause itself just asserted.
func (h *Hypothesis) AddConstraint(depth int, c Constraint) {
	if depth < 0 || depth >= len(h.frames) {
		proofFault("Hypothesis.AddConstraint", "depth %d out of range (len=%d)", depth, len(h.frames))
	}
	h.frames[depth].Constraints = append(h.frames[depth].Constraints, c)
}

// Clauses returns every clause currently in the hypothesis, bottom to
// top, for use as additional first-order resolvable clauses alongside
// the fixed background theory.
func (h *Hypothesis) Clauses() []Clause {
	out := make([]Clause, len(h.frames))
	for i, f := range h.frames {
		out[i] = f.Clause
	}
	return out
}

// CheckFinal verifies every frame's constraints hold given store's
// current bindings (which must be maximally resolved: called once a
// full proof is found, before accepting it, never mid-derivation). A
// constraint fails if its Left and Right terms reach the same final
// resolution: both dereference to the same cell, or to atomic cells
// (Con, Int, Flt) with equal tag and payload. An unbound variable
// matches only itself. CheckFinal only reads the store.
func (h *Hypothesis) CheckFinal(store *Store) bool {
	for _, f := range h.frames {
		for _, c := range f.Constraints {
			l, r := store.Deref(c.Left), store.Deref(c.Right)
			cl, cr := store.Cell(l), store.Cell(r)
			atomic := cl.Tag == Con || cl.Tag == Int || cl.Tag == Flt
			if l == r || (atomic && cl.Tag == cr.Tag && cl.Payload == cr.Payload) {
				return false
			}
		}
	}
	return true
}
