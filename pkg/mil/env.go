package mil

// ChoiceKind distinguishes the three ways a goal can be resolved at one
// choice point: against a builtin predicate, against a stored clause
// (background theory, meta-rule, or hypothesis), or by inventing a
// fresh predicate symbol.
type ChoiceKind uint8

const (
	// ChoiceBuiltin resolves the goal via a registered builtin.
	ChoiceBuiltin ChoiceKind = iota
	// ChoiceClause resolves the goal against ClauseIndex's clause.
	ChoiceClause
	// ChoiceInvent resolves the goal against a meta-rule whose head
	// predicate position is second-order. A fresh predicate symbol is
	// minted (predicate invention) only when the goal's own predicate
	// position is also still unbound; against a concrete goal it is
	// ordinary second-order unification.
	ChoiceInvent
)

// Choice is one untried alternative recorded at a choice point.
type Choice struct {
	Kind ChoiceKind
	// ClauseIndex indexes the engine's combined background/meta-rule/
	// hypothesis clause list when Kind == ChoiceClause or
	// ChoiceInvent, or is the 0-based alternative number to pass to
	// BuiltinFunc.Apply when Kind == ChoiceBuiltin.
	ClauseIndex int
	Builtin     string
}

// Env is one frame of the proof engine's explicit choice-point stack.
// Each Env corresponds to resolving exactly one goal: it records the
// goal, its depth, what remains to be tried, and what the current
// choice spliced in. ProofEngine keeps the undo state (store trail,
// query-region length, hypothesis length) in its own internal frame
// alongside each Env; the mark fields below are not set by ProofEngine.
type Env struct {
	// Goal is the store address of the literal being resolved.
	Goal int
	// Depth is this goal's distance from the root query, used to
	// enforce max_depth.
	Depth int

	// Choices are the untried alternatives for Goal, in the order they
	// will be attempted; ChoiceIdx is the index of the next one.
	Choices   []Choice
	ChoiceIdx int

	// TrailMark/SubMark are slots for the unifier's extent (Unifier.Mark)
	// before this Env's current choice was applied.
	TrailMark int
	SubMark   int

	// HypMark is a slot for Hypothesis.Len() before this Env pushed
	// anything.
	HypMark int

	// QueryMark is a slot for the store's length before this Env's
	// current choice built any new terms.
	QueryMark int

	// Children holds the body literals spliced in by the clause this
	// Env is currently committed to, each to be resolved (in order,
	// depth-first) before this Env is considered proved.
	Children []int

	// NewClause records whether the current choice pushed a fresh
	// clause onto the hypothesis (a ChoiceClause or ChoiceInvent
	// alternative drawn from a meta-rule rather than the fixed
	// background theory).
	NewClause bool
	// InventedPred records whether the current choice minted a fresh
	// predicate symbol via predicate invention.
	InventedPred bool
}

// HasMoreChoices reports whether this Env has an untried alternative
// left.
func (e *Env) HasMoreChoices() bool {
	return e.ChoiceIdx < len(e.Choices)
}

// NextChoice returns the next untried alternative and advances past
// it. Callers must check HasMoreChoices first.
func (e *Env) NextChoice() Choice {
	c := e.Choices[e.ChoiceIdx]
	e.ChoiceIdx++
	return c
}
