package mil

// Builder rebuilds a clause template under a substitution, producing
// a fresh, fully concrete copy in the query region. Two identity
// concerns drive its design:
//
//   - every occurrence of the same Arg/ArgA slot across the template
//     must resolve to the same store address, whether that address
//     was already fixed by an earlier unification against this
//     Substitution or is being minted here for the first time;
//   - every occurrence of the same first-order template Ref (an
//     ordinary clause variable, not a meta-variable) must likewise be
//     renamed apart to one fresh store variable per clause activation,
//     shared across the head and every body literal built from it.
//
// A Builder's fresh-Ref map is therefore scoped to one clause
// activation: construct one Builder, then call Build once for the
// head and once per body literal so sharing is preserved across all of
// them.
type Builder struct {
	store *Store
	sub   *Substitution
	fresh map[int]int
}

// NewBuilder creates a Builder over store and sub, scoped to a single
// clause activation.
func NewBuilder(store *Store, sub *Substitution) *Builder {
	return &Builder{store: store, sub: sub, fresh: make(map[int]int)}
}

// Build rebuilds the term rooted at templateAddr into a fresh, fully
// concrete copy in the query region, consulting (and where necessary
// extending) this Builder's substitution and fresh-variable map so
// that shared template variables and meta-variable slots come out
// identified with one store address apiece.
func (b *Builder) Build(templateAddr int) int {
	c := b.store.Cell(templateAddr)
	switch c.Tag {
	case Arg, ArgA:
		if addr, ok := b.sub.Lookup(c.Payload); ok {
			return addr
		}
		addr := b.store.PushRef()
		b.sub.Bind(c.Payload, templateAddr, addr)
		return addr
	case Ref:
		if int(c.Payload) != templateAddr {
			return b.Build(int(c.Payload)) // already bound in the template store; follow it
		}
		if addr, ok := b.fresh[templateAddr]; ok {
			return addr
		}
		addr := b.store.PushRef()
		b.fresh[templateAddr] = addr
		return addr
	case Con, Int, Flt:
		return b.store.Push(c)
	case Str:
		return b.store.PushStr(b.buildFunc(int(c.Payload)))
	case Func:
		return b.buildFunc(templateAddr)
	case Lis:
		if c.IsEmptyList() {
			return b.store.PushEmptyList()
		}
		pair := int(c.Payload)
		newHead := b.Build(pair)
		newTail := b.Build(pair + 1)
		return b.store.PushList(newHead, newTail)
	default:
		storeFault("Builder.Build", templateAddr, c, "unexpected tag in clause template")
		return -1
	}
}

// buildFunc rebuilds a compound term's functor cell. The symbol
// position is built through the very same Build dispatch as any
// argument: a fixed Con copies straight through, a meta-variable slot
// resolves through sub if something has already pinned this predicate
// down, and otherwise it comes out as an ordinary fresh, unbound Ref —
// left open for whatever later unifies against it to resolve. Nothing
// here ever invents a predicate; predicate invention, when it happens
// at all, is a proof-engine decision made before a clause is built,
// not a builder one.
func (b *Builder) buildFunc(funcAddr int) int {
	c := b.store.Cell(funcAddr)
	if c.Tag != Func {
		storeFault("Builder.buildFunc", funcAddr, c, "expected Func cell")
	}
	arity := int(c.Payload)

	sym := b.Build(funcAddr + 1)
	args := make([]int, arity)
	for i := 0; i < arity; i++ {
		args[i] = b.Build(funcAddr + 2 + i)
	}
	return b.store.PushCompound(sym, args)
}

// BuildGoal rebuilds a single literal template (typically a meta-rule
// body literal about to become the next goal) under sub, in its own
// activation scope.
func BuildGoal(store *Store, sub *Substitution, templateAddr int) int {
	return NewBuilder(store, sub).Build(templateAddr)
}

// BuildHypothesisClause rebuilds an entire clause template — head and
// every body literal — as one activation, so shared template variables
// and meta-variable slots come out identified consistently across the
// whole clause. The returned Clause's addresses live in store's query
// region and are safe to push onto the hypothesis stack.
func BuildHypothesisClause(store *Store, sub *Substitution, kind ClauseKind, tmpl Clause) Clause {
	b := NewBuilder(store, sub)
	head := b.Build(tmpl.Head)
	body := make([]int, len(tmpl.Body))
	for i, lit := range tmpl.Body {
		body[i] = b.Build(lit)
	}
	return NewClause(store, kind, head, body...)
}
