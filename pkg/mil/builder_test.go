package mil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freshProgram returns an unfrozen ProgramRegion suitable for building
// clause templates with TemplateBuilder, plus a matching query Store.
func freshProgram() (*ProgramRegion, *SymbolTable) {
	syms := NewSymbolTable()
	return NewProgramRegion(syms), syms
}

func TestBuilderSharesVariableAcrossHeadAndBody(t *testing.T) {
	program, syms := freshProgram()
	tm := NewTemplateBuilder(program)

	parentSym := syms.Intern("parent")
	likesSym := syms.Intern("likes")
	x := tm.Var()
	y := tm.Var()
	head := tm.Func(tm.Con(likesSym), x, y)
	body := tm.Func(tm.Con(parentSym), x, y)
	program.Freeze()

	store := NewStore(program)
	sub := NewSubstitution()
	b := NewBuilder(store, sub)

	newHead := b.Build(head)
	newBody := b.Build(body)

	headArgs := store.FuncArgs(newHead)
	bodyArgs := store.FuncArgs(newBody)
	assert.Equal(t, store.Deref(headArgs[0]), store.Deref(bodyArgs[0]))
	assert.Equal(t, store.Deref(headArgs[1]), store.Deref(bodyArgs[1]))
}

func TestBuilderMintsFreshRefPerActivation(t *testing.T) {
	program, syms := freshProgram()
	tm := NewTemplateBuilder(program)
	sym := syms.Intern("p")
	x := tm.Var()
	head := tm.Func(tm.Con(sym), x)
	program.Freeze()

	store := NewStore(program)

	b1 := NewBuilder(store, NewSubstitution())
	first := b1.Build(head)

	b2 := NewBuilder(store, NewSubstitution())
	second := b2.Build(head)

	assert.NotEqual(t, store.Deref(store.FuncArgs(first)[0]), store.Deref(store.FuncArgs(second)[0]))
}

func TestBuilderResolvesBoundMetaVarSlot(t *testing.T) {
	program, syms := freshProgram()
	tm := NewTemplateBuilder(program)
	x, y := tm.Var(), tm.Var()
	head := tm.Func(tm.Arg(0), x, y)
	body := tm.Func(tm.Arg(1), x, y)
	program.Freeze()

	store := NewStore(program)
	sub := NewSubstitution()

	parentSym := syms.Intern("parent")
	parentCon := store.PushConst(parentSym)
	sub.Bind(0, -1, parentCon)

	b := NewBuilder(store, sub)
	newHead := b.Build(head)

	sym, arity := store.StrSymbolArity(newHead)
	assert.Equal(t, parentSym, sym)
	assert.Equal(t, 2, arity)

	_ = body
}

func TestBuilderLeavesUnboundSymbolSlotOpen(t *testing.T) {
	program, _ := freshProgram()
	tm := NewTemplateBuilder(program)
	x, y := tm.Var(), tm.Var()
	head := tm.Func(tm.Arg(0), x, y)
	program.Freeze()

	store := NewStore(program)
	sub := NewSubstitution()
	b := NewBuilder(store, sub)

	newHead := b.Build(head)

	bound, ok := sub.Lookup(0)
	require.True(t, ok)
	resolved := store.Cell(store.Deref(bound))
	assert.Equal(t, Ref, resolved.Tag)
	assert.Equal(t, uint(store.Deref(bound)), resolved.Payload, "an unresolved predicate slot builds to an ordinary self-referencing, unbound Ref")

	symAddr := store.Cell(newHead + 1)
	assert.Equal(t, Ref, symAddr.Tag, "the symbol position indirects to the slot's address rather than naming an invented predicate")
}

func TestBuildHypothesisClausePreservesSharing(t *testing.T) {
	program, syms := freshProgram()
	tm := NewTemplateBuilder(program)
	sym := syms.Intern("ancestor")
	x, y, z := tm.Var(), tm.Var(), tm.Var()
	head := tm.Func(tm.Con(sym), x, z)
	body1 := tm.Func(tm.Con(sym), x, y)
	body2 := tm.Func(tm.Con(sym), y, z)
	tmpl := Clause{Kind: ClauseProgram, Head: head, Body: []int{body1, body2}}
	program.Freeze()

	store := NewStore(program)
	sub := NewSubstitution()
	clause := BuildHypothesisClause(store, sub, ClauseHypothesis, tmpl)

	headArgs := store.FuncArgs(clause.Head)
	body1Args := store.FuncArgs(clause.Body[0])
	body2Args := store.FuncArgs(clause.Body[1])

	assert.Equal(t, store.Deref(headArgs[0]), store.Deref(body1Args[0]))
	assert.Equal(t, store.Deref(body1Args[1]), store.Deref(body2Args[0]))
	assert.Equal(t, store.Deref(headArgs[1]), store.Deref(body2Args[1]))
}
