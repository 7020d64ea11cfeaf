package mil

import "github.com/hashicorp/go-hclog"

// frame is the proof engine's internal bookkeeping for one Env: the
// goals remaining after Goal (the continuation to resume with if Goal
// is retried against its next choice), and everything needed to undo
// this Env's current choice exactly.
type frame struct {
	env       *Env
	remaining []int

	// trail and queryBefore reclaim the current choice's store
	// footprint: trail is unbound in full, then the query region is
	// truncated back to queryBefore, discarding every cell the choice
	// allocated regardless of whether trail also mentions it.
	trail       []Binding
	queryBefore int

	// hypBefore is Hypothesis.Len() before the current choice (if any)
	// pushed a learned clause.
	hypBefore int

	// invented counts predicate symbols minted by the current choice,
	// for undoing the engine's running invented-predicate count.
	invented int
}

// ProofEngine runs an iterative, explicit-stack depth-first search for
// proofs of a goal against a fixed background theory, a set of
// second-order meta-rule templates, and a growing hypothesis of
// learned/invented clauses. Each call to Next advances the
// search to the next solution; backtracking undoes store bindings,
// store allocations, and hypothesis pushes exactly, in LIFO order.
type ProofEngine struct {
	store  *Store
	preds  *StaticPredicateTable
	hyp    *Hypothesis
	config Config
	log    hclog.Logger

	background []Clause
	metaRules  []Clause
	openMeta   []int // indices into metaRules whose head predicate position is second-order

	frames  []*frame
	goals   []int
	started bool

	invented uint32
}

// NewProofEngine creates a proof engine over store, resolving goals
// against background (fixed first-order clauses), metaRules (the
// second-order templates available for learning/predicate invention),
// and preds (builtins plus the dynamic clause index the engine keeps in
// sync as the hypothesis grows).
func NewProofEngine(store *Store, preds *StaticPredicateTable, background, metaRules []Clause, config Config) *ProofEngine {
	e := &ProofEngine{
		store:      store,
		preds:      preds,
		hyp:        NewHypothesis(),
		config:     config,
		log:        NewLogger(config.Debug),
		background: background,
		metaRules:  metaRules,
	}
	for i, c := range background {
		if sym, ok := concreteHeadSymbol(store, c.Head); ok {
			preds.RegisterClause(sym, i)
		}
	}
	base := len(background)
	for i, c := range metaRules {
		if sym, ok := concreteHeadSymbol(store, c.Head); ok {
			preds.RegisterClause(sym, base+i)
		} else {
			e.openMeta = append(e.openMeta, i)
		}
	}
	return e
}

// Store returns the term store this engine resolves goals in.
func (e *ProofEngine) Store() *Store { return e.store }

// Hypothesis returns the engine's current hypothesis stack.
func (e *ProofEngine) Hypothesis() *Hypothesis { return e.hyp }

func concreteHeadSymbol(store *Store, head int) (uint, bool) {
	c := store.Cell(head)
	var funcAddr int
	switch c.Tag {
	case Con:
		return c.Payload, true
	case Func:
		funcAddr = head
	case Str:
		funcAddr = int(c.Payload)
	default:
		return 0, false
	}
	// The symbol position is a Ref indirection cell (Store.PushCompound),
	// so a concrete predicate reads through one more Deref than the
	// functor cell itself.
	sym := store.Cell(store.Deref(funcAddr + 1))
	return sym.Payload, sym.Tag == Con
}

// headPredicateSlot reports the Arg/ArgA slot number occupying a clause
// template's head predicate position, and false if that position is
// already a fixed predicate (an ordinary first-order clause or a
// meta-rule whose head predicate isn't itself second-order).
func headPredicateSlot(store *Store, head int) (uint, bool) {
	c := store.Cell(head)
	var funcAddr int
	switch c.Tag {
	case Func:
		funcAddr = head
	case Str:
		funcAddr = int(c.Payload)
	default:
		return 0, false
	}
	// Like concreteHeadSymbol, read through the symbol position's Ref
	// indirection (TemplateBuilder.Func) to the slot cell itself.
	sym := store.Cell(store.Deref(funcAddr + 1))
	if sym.Tag == Arg || sym.Tag == ArgA {
		return sym.Payload, true
	}
	return 0, false
}

// predicateSlotAddr returns the resolved store address a built
// literal's functor symbol position currently points at, following the
// PushCompound Ref indirection, or -1 if addr isn't a callable term at
// all.
func predicateSlotAddr(store *Store, addr int) int {
	addr = store.Deref(addr)
	c := store.Cell(addr)
	var funcAddr int
	switch c.Tag {
	case Func:
		funcAddr = addr
	case Str:
		funcAddr = int(c.Payload)
	default:
		return -1
	}
	return store.Deref(funcAddr + 1)
}

// isOpenGoal reports whether addr's own predicate position is still an
// unbound store variable — a body literal built from a meta-rule's
// predicate slot that nothing has pinned down to a concrete symbol yet.
func isOpenGoal(store *Store, addr int) bool {
	slot := predicateSlotAddr(store, addr)
	if slot < 0 {
		return false
	}
	c := store.Cell(slot)
	return c.Tag == Ref && int(c.Payload) == slot
}

func headArity(store *Store, head int) int {
	c := store.Cell(head)
	switch c.Tag {
	case Func:
		return int(c.Payload)
	case Str:
		return int(store.Cell(int(c.Payload)).Payload)
	default:
		return 0
	}
}

func goalSymbolArity(store *Store, goal int) (uint, int) {
	addr := store.Deref(goal)
	c := store.Cell(addr)
	if c.Tag == Con {
		return c.Payload, 0
	}
	return store.StrSymbolArity(addr)
}

func goalArgs(store *Store, goal int) []int {
	addr := store.Deref(goal)
	c := store.Cell(addr)
	switch c.Tag {
	case Con:
		return nil
	case Str:
		return store.FuncArgs(int(c.Payload))
	case Func:
		return store.FuncArgs(addr)
	default:
		proofFault("goalArgs", "goal at %d is not a callable term (%s)", addr, c.Tag)
		return nil
	}
}

// Next advances the search to the next proof of the original goal,
// returning true and leaving the store's bindings as that proof's
// witness, or false once every alternative has been exhausted. Calling
// Next again after a true result backtracks from the accepted solution
// to search for a further one (the "next solution" contract, spec
// §4.5).
func (e *ProofEngine) Next(goal int) bool {
	if !e.started {
		e.started = true
		e.goals = []int{goal}
	} else if !e.backtrack() {
		return false
	}

	for {
		if len(e.goals) == 0 {
			if e.hyp.CheckFinal(e.store) {
				return true
			}
			if !e.backtrack() {
				return false
			}
			continue
		}

		cur := e.goals[0]
		rest := e.goals[1:]
		depth := len(e.frames)
		if uint32(depth) > e.config.MaxDepth {
			if !e.backtrack() {
				return false
			}
			continue
		}

		choices := e.populateChoices(cur)
		env := &Env{Goal: cur, Depth: depth, Choices: choices}
		fr := &frame{env: env, remaining: rest}
		e.frames = append(e.frames, fr)

		if !e.advance(fr) {
			e.frames = e.frames[:len(e.frames)-1]
			if !e.backtrack() {
				return false
			}
		}
	}
}

// populateChoices lists every alternative available for resolving cur,
// in the order they will be tried. If cur names a registered builtin,
// the builtin's alternatives are the only choices. Otherwise they are
// the matching stored clauses (background, meta-rule, or hypothesis),
// then any open (second-order-headed) meta-rule whose arity matches,
// as a predicate-invention fallback.
//
// cur itself may be open — a body literal built from an unresolved
// meta-rule predicate slot (e.g. chain's Q or R) rather than a concrete
// goal — in which case symbol identity carries no information at all
// and every stored clause of matching arity is a candidate.
func (e *ProofEngine) populateChoices(cur int) []Choice {
	if isOpenGoal(e.store, cur) {
		return e.populateOpenChoices(cur)
	}

	sym, arity := goalSymbolArity(e.store, cur)

	if bf, ok := e.preds.Builtin(sym, arity); ok {
		n := bf.Alternatives(e.store, goalArgs(e.store, cur))
		choices := make([]Choice, n)
		for i := range choices {
			choices[i] = Choice{Kind: ChoiceBuiltin, ClauseIndex: i}
		}
		return choices
	}

	var choices []Choice
	for _, idx := range e.preds.Clauses(sym, arity) {
		choices = append(choices, Choice{Kind: ChoiceClause, ClauseIndex: idx})
	}
	base := len(e.background)
	for _, mi := range e.openMeta {
		if headArity(e.store, e.metaRules[mi].Head) == arity {
			choices = append(choices, Choice{Kind: ChoiceInvent, ClauseIndex: base + mi})
		}
	}
	return choices
}

// populateOpenChoices enumerates every background, meta-rule (with an
// already-concrete head), and hypothesis clause whose arity matches
// cur's, ignoring predicate symbol identity entirely: committing one of
// these lets ordinary first-order unification bind cur's open
// predicate Ref to that candidate's concrete symbol.
func (e *ProofEngine) populateOpenChoices(cur int) []Choice {
	arity := headArity(e.store, e.store.Deref(cur))

	var choices []Choice
	for i, c := range e.background {
		if headArity(e.store, c.Head) == arity {
			choices = append(choices, Choice{Kind: ChoiceClause, ClauseIndex: i})
		}
	}
	base := len(e.background)
	for i, c := range e.metaRules {
		if _, ok := concreteHeadSymbol(e.store, c.Head); !ok {
			continue
		}
		if headArity(e.store, c.Head) == arity {
			choices = append(choices, Choice{Kind: ChoiceClause, ClauseIndex: base + i})
		}
	}
	hbase := base + len(e.metaRules)
	for i, c := range e.hyp.Clauses() {
		if headArity(e.store, c.Head) == arity {
			choices = append(choices, Choice{Kind: ChoiceClause, ClauseIndex: hbase + i})
		}
	}
	for _, mi := range e.openMeta {
		if headArity(e.store, e.metaRules[mi].Head) == arity {
			choices = append(choices, Choice{Kind: ChoiceInvent, ClauseIndex: base + mi})
		}
	}
	return choices
}

func (e *ProofEngine) clauseAt(idx int) Clause {
	if idx < len(e.background) {
		return e.background[idx]
	}
	idx -= len(e.background)
	if idx < len(e.metaRules) {
		return e.metaRules[idx]
	}
	idx -= len(e.metaRules)
	return e.hyp.Clauses()[idx]
}

// advance tries fr's untried choices in order, committing the first
// one that succeeds (updating e.goals and e.frames' bookkeeping) and
// returning true, or returning false once every choice at fr has
// failed.
func (e *ProofEngine) advance(fr *frame) bool {
	for fr.env.HasMoreChoices() {
		choice := fr.env.NextChoice()
		traceTry(e.log, fr.env.Depth, e.store.TermString(fr.env.Goal), choice)

		fr.queryBefore = e.store.Len()
		fr.hypBefore = e.hyp.Len()
		fr.trail = nil
		fr.invented = 0

		children, ok := e.commit(fr, choice)
		if !ok {
			e.undoFrame(fr)
			continue
		}

		e.goals = append(append([]int(nil), children...), fr.remaining...)
		fr.env.Children = children
		fr.env.NewClause = e.hyp.Len() > fr.hypBefore
		fr.env.InventedPred = fr.invented > 0
		traceMatch(e.log, fr.env.Depth, e.store.TermString(fr.env.Goal), e.clauseKindLabel(choice))
		return true
	}
	return false
}

func (e *ProofEngine) clauseKindLabel(choice Choice) string {
	switch choice.Kind {
	case ChoiceBuiltin:
		return "builtin"
	case ChoiceInvent:
		return "invent"
	default:
		return e.clauseAt(choice.ClauseIndex).Kind.String()
	}
}

// commit attempts one choice against fr.env.Goal, returning the body
// literals it would splice in next and whether it succeeded.
func (e *ProofEngine) commit(fr *frame, choice Choice) ([]int, bool) {
	switch choice.Kind {
	case ChoiceBuiltin:
		sym, arity := goalSymbolArity(e.store, fr.env.Goal)
		bf, ok := e.preds.Builtin(sym, arity)
		if !ok {
			return nil, false
		}
		trail, ok := bf.Apply(e.store, goalArgs(e.store, fr.env.Goal), choice.ClauseIndex)
		if !ok {
			return nil, false
		}
		fr.trail = trail
		return nil, true

	case ChoiceClause, ChoiceInvent:
		tmpl := e.clauseAt(choice.ClauseIndex)
		sub := NewSubstitution()

		// BuildHypothesisClause rebuilds the whole template — head and
		// every body literal — as one activation, so a meta-variable
		// slot shared between the head and a body literal (or between
		// two body literals) comes out identified with the same store
		// address everywhere it occurs. This is the same entry point
		// used when a clause is later replayed out of the hypothesis;
		// commit never maintains its own divergent build logic.
		built := BuildHypothesisClause(e.store, sub, tmpl.Kind, tmpl)
		headCopy := built.Head
		children := built.Body

		u := NewUnifier(e.store, sub)

		// Predicate invention is a proof-engine decision, not a builder
		// one: it only ever fires here, and only when matching an open
		// meta-rule head against a goal whose own predicate position is
		// also still unresolved — the one case where plain unification
		// of the rebuilt head against the goal would leave both sides
		// open forever instead of fixing a concrete symbol.
		if choice.Kind == ChoiceInvent && isOpenGoal(e.store, fr.env.Goal) {
			if e.invented >= e.config.MaxPred {
				return nil, false
			}
			slot := predicateSlotAddr(e.store, headCopy)
			id, _ := e.store.Symbols().Fresh("pred")
			conAddr := e.store.PushConst(id)
			u.bindStore(slot, conAddr)
			e.invented++
			fr.invented = 1
		}

		if !u.Unify(headCopy, fr.env.Goal) {
			fr.trail = u.Trail()
			return nil, false
		}
		fr.trail = u.Trail()

		if tmpl.Kind == ClauseMeta {
			if uint32(e.hyp.Len()) >= e.config.MaxClause {
				return nil, false
			}
			learned := Clause{Kind: ClauseHypothesis, Head: headCopy, Body: append([]int(nil), children...), MetaVars: built.MetaVars}
			e.hyp.Push(learned)
			depth := e.hyp.Len() - 1
			e.collectDisequalityConstraints(tmpl, sub, depth)
			if sym, ok := concreteHeadSymbol(e.store, headCopy); ok {
				idx := len(e.background) + len(e.metaRules) + depth
				e.preds.RegisterClause(sym, idx)
			}
		}
		return children, true

	default:
		proofFault("ProofEngine.commit", "unknown choice kind %d", choice.Kind)
		return nil, false
	}
}

// collectDisequalityConstraints records, against the hypothesis frame
// at depth, one disequality constraint between the just-pushed clause's
// head predicate and every OTHER meta-variable slot tmpl references
// that sub has since resolved — typically each body literal's own
// predicate slot. It deliberately never compares two body slots against
// each other: a meta-rule like chain legitimately resolves two distinct
// body predicate slots to the same background symbol (both Q and R
// unify to "parent"), and that is not over-generalisation. What would
// be is a clause whose body resolves a predicate slot back to its own
// head symbol — e.g. identity's single body literal satisfied by
// reusing the very fact the clause just asserted, a self-referential,
// vacuous proof — which is exactly what comparing every other slot
// against the head slot catches.
func (e *ProofEngine) collectDisequalityConstraints(tmpl Clause, sub *Substitution, depth int) {
	headSlot, ok := headPredicateSlot(e.store, tmpl.Head)
	if !ok {
		return
	}
	headAddr, ok := sub.Lookup(headSlot)
	if !ok {
		return
	}
	for slot := uint(0); slot < MaxMetaVars; slot++ {
		if slot == headSlot || !tmpl.HasMetaVar(slot) {
			continue
		}
		otherAddr, ok := sub.Lookup(slot)
		if !ok {
			continue
		}
		e.hyp.AddConstraint(depth, Constraint{Left: headAddr, Right: otherAddr})
	}
}

// undoFrame reverses the effects of fr's most recently attempted (and
// failed) choice, without popping fr itself: callers use this between
// attempts at the same frame, and backtrack uses it once more when the
// frame's last choice is abandoned entirely.
func (e *ProofEngine) undoFrame(fr *frame) {
	e.store.Unbind(fr.trail)
	e.store.Truncate(fr.queryBefore)
	for e.hyp.Len() > fr.hypBefore {
		e.hyp.Pop()
	}
	e.invented -= uint32(fr.invented)
	fr.trail = nil
	fr.invented = 0
}

// Abandon undoes every frame currently on the stack without searching
// for further alternatives, restoring the store, substitution, and
// hypothesis to the state they had before this engine made any
// bindings at all. Callers that only want to know whether a proof
// exists, and are about to discard the engine either way, use this
// instead of draining Next() to exhaustion so a found solution doesn't
// leave dangling bindings behind on the shared store.
func (e *ProofEngine) Abandon() {
	for len(e.frames) > 0 {
		fr := e.frames[len(e.frames)-1]
		e.undoFrame(fr)
		e.frames = e.frames[:len(e.frames)-1]
	}
	e.goals = nil
}

// backtrack undoes frames from the top of the stack until it finds one
// with an untried choice remaining, resumes the search from there, and
// reports whether it found such a frame at all.
func (e *ProofEngine) backtrack() bool {
	drained := 0
	for len(e.frames) > 0 {
		fr := e.frames[len(e.frames)-1]
		e.undoFrame(fr)
		if fr.env.HasMoreChoices() {
			if e.advance(fr) {
				traceUndo(e.log, fr.env.Depth, drained)
				return true
			}
		}
		e.frames = e.frames[:len(e.frames)-1]
		drained++
	}
	traceUndo(e.log, 0, drained)
	return false
}
