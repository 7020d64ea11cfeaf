package mil

// TemplateBuilder constructs clause templates directly in a
// ProgramRegion before it is frozen: background facts/rules and
// second-order meta-rules alike are built this way, since both live in
// the same immutable, shared region once resolution starts (spec
// §4.1, §6.3's "background theory built via direct API calls"). This
// is the one place the module constructs terms without going through
// Store/Builder, because program-region cells are never bound or
// truncated the way query-region cells are — they are written once,
// before Freeze, and read many times after.
type TemplateBuilder struct {
	p *ProgramRegion
}

// NewTemplateBuilder creates a TemplateBuilder over p. p must not yet
// be frozen.
func NewTemplateBuilder(p *ProgramRegion) *TemplateBuilder {
	return &TemplateBuilder{p: p}
}

// Con pushes an interned constant symbol.
func (t *TemplateBuilder) Con(symbol uint) int {
	return t.p.Push(Cell{Tag: Con, Payload: symbol})
}

// Int pushes a signed integer immediate.
func (t *TemplateBuilder) Int(v int) int {
	return t.p.Push(Cell{Tag: Int, Payload: uint(uint64(int64(v)))})
}

// Float pushes a floating point immediate.
func (t *TemplateBuilder) Float(v float64) int {
	return t.p.Push(Cell{Tag: Flt, Payload: floatBits(v)})
}

// Arg pushes an existentially-quantified meta-variable slot.
func (t *TemplateBuilder) Arg(slot uint) int {
	return t.p.Push(Cell{Tag: Arg, Payload: slot})
}

// ArgA pushes a universally-quantified meta-variable slot.
func (t *TemplateBuilder) ArgA(slot uint) int {
	return t.p.Push(Cell{Tag: ArgA, Payload: slot})
}

// Var pushes a fresh, self-referencing first-order template variable.
// Every later reference to the same address (passed as an argument to
// Func, or used directly as a literal) shares this variable's identity
// once the Builder renames it apart per clause activation.
func (t *TemplateBuilder) Var() int {
	addr := t.p.Len()
	return t.p.Push(Cell{Tag: Ref, Payload: uint(addr)})
}

// EmptyList pushes the distinguished empty-list sentinel.
func (t *TemplateBuilder) EmptyList() int {
	return t.p.Push(Cell{Tag: Lis, Payload: ConPtr})
}

// List pushes a cons cell over previously built head/tail addresses.
func (t *TemplateBuilder) List(head, tail int) int {
	pairAddr := t.p.Len()
	t.p.Push(Cell{Tag: Lis, Payload: 0})
	t.p.cells[pairAddr].Payload = uint(pairAddr + 1)
	t.p.Push(Cell{Tag: Ref, Payload: uint(head)})
	t.p.Push(Cell{Tag: Ref, Payload: uint(tail)})
	return pairAddr
}

// Func builds a functor cell over a previously built symbol position
// (a Con for a fixed predicate name, or an Arg/ArgA slot for a
// second-order predicate position) and previously built
// argument addresses. Each position is stored as a Ref indirection to
// the address actually holding that subterm, so the same subterm
// address can be shared across multiple Func positions (e.g. the same
// first-order variable appearing in two argument slots).
func (t *TemplateBuilder) Func(symAddr int, argAddrs ...int) int {
	funcAddr := t.p.Len()
	t.p.Push(Cell{Tag: Func, Payload: uint(len(argAddrs))})
	t.p.Push(Cell{Tag: Ref, Payload: uint(symAddr)})
	for _, a := range argAddrs {
		t.p.Push(Cell{Tag: Ref, Payload: uint(a)})
	}
	return funcAddr
}

// Str wraps funcAddr in an indirection cell, the representation used
// wherever a compound term occupies an argument position rather than a
// top-level literal.
func (t *TemplateBuilder) Str(funcAddr int) int {
	return t.p.Push(Cell{Tag: Str, Payload: uint(funcAddr)})
}
