package mil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProofEngineProvesBackgroundFact(t *testing.T) {
	program, syms := freshProgram()
	tm := NewTemplateBuilder(program)
	parentSym := syms.Intern("parent")
	tomSym := syms.Intern("tom")
	bobSym := syms.Intern("bob")
	head := tm.Func(tm.Con(parentSym), tm.Con(tomSym), tm.Con(bobSym))
	background := []Clause{{Kind: ClauseProgram, Head: head}}
	program.Freeze()

	store := NewStore(program)
	preds := NewStaticPredicateTable(syms)
	config := NewConfig()
	engine := NewProofEngine(store, preds, background, nil, config)

	goalFunc, goalArgs := store.PushFunc(parentSym, 2)
	store.Bind([]Binding{{Src: goalArgs[0], Tgt: store.PushConst(tomSym)}, {Src: goalArgs[1], Tgt: store.PushConst(bobSym)}})

	assert.True(t, engine.Next(goalFunc))
	assert.False(t, engine.Next(goalFunc))
}

func TestProofEngineLearnsChainViaMetaRule(t *testing.T) {
	program, syms := freshProgram()
	tm := NewTemplateBuilder(program)
	parentSym := syms.Intern("parent")
	fact := func(a, b string) Clause {
		head := tm.Func(tm.Con(parentSym), tm.Con(syms.Intern(a)), tm.Con(syms.Intern(b)))
		return Clause{Kind: ClauseProgram, Head: head}
	}
	background := []Clause{fact("tom", "bob"), fact("bob", "ann")}

	x, y, z := tm.Var(), tm.Var(), tm.Var()
	chainHead := tm.Func(tm.Arg(0), x, y)
	bodyQ := tm.Func(tm.Arg(1), x, z)
	bodyR := tm.Func(tm.Arg(2), z, y)
	chain := Clause{Kind: ClauseMeta, Head: chainHead, Body: []int{bodyQ, bodyR}}
	program.Freeze()

	store := NewStore(program)
	preds := NewStaticPredicateTable(syms)
	config := NewConfig(WithMaxPred(4), WithMaxClause(8))
	engine := NewProofEngine(store, preds, background, []Clause{chain}, config)

	ancestorSym := syms.Intern("ancestor")
	goalFunc, goalArgs := store.PushFunc(ancestorSym, 2)
	store.Bind([]Binding{
		{Src: goalArgs[0], Tgt: store.PushConst(syms.Intern("tom"))},
		{Src: goalArgs[1], Tgt: store.PushConst(syms.Intern("ann"))},
	})

	require.True(t, engine.Next(goalFunc))
	clauses := engine.Hypothesis().Clauses()
	require.Len(t, clauses, 1)
	assert.Equal(t, ClauseHypothesis, clauses[0].Kind)
}

func TestProofEngineArithmeticBuiltin(t *testing.T) {
	program, syms := freshProgram()
	program.Freeze()
	store := NewStore(program)
	preds := NewStaticPredicateTable(syms)
	engine := NewProofEngine(store, preds, nil, nil, NewConfig())

	isSym := syms.Intern("is")
	plusSym := syms.Intern("+")
	v := store.PushRef()
	plusFunc, plusArgs := store.PushFunc(plusSym, 2)
	store.Bind([]Binding{{Src: plusArgs[0], Tgt: store.PushInt(2)}, {Src: plusArgs[1], Tgt: store.PushInt(3)}})
	plusStr := store.PushStr(plusFunc)

	isFunc, isArgs := store.PushFunc(isSym, 2)
	store.Bind([]Binding{{Src: isArgs[0], Tgt: v}, {Src: isArgs[1], Tgt: plusStr}})

	require.True(t, engine.Next(isFunc))
	assert.Equal(t, 5, func() int {
		c := store.Cell(store.Deref(v))
		return int(int64(c.Payload))
	}())
}

func TestProofEngineMemberBuiltinEnumeratesAlternatives(t *testing.T) {
	program, syms := freshProgram()
	program.Freeze()
	store := NewStore(program)
	preds := NewStaticPredicateTable(syms)
	engine := NewProofEngine(store, preds, nil, nil, NewConfig())

	memberSym := syms.Intern("member")
	a := store.PushConst(syms.Intern("a"))
	b := store.PushConst(syms.Intern("b"))
	empty := store.PushEmptyList()
	list := store.PushList(a, store.PushList(b, empty))

	v := store.PushRef()
	memberFunc, memberArgs := store.PushFunc(memberSym, 2)
	store.Bind([]Binding{{Src: memberArgs[0], Tgt: v}, {Src: memberArgs[1], Tgt: list}})

	require.True(t, engine.Next(memberFunc))
	assert.Equal(t, "a", store.TermString(v))
	require.True(t, engine.Next(memberFunc))
	assert.Equal(t, "b", store.TermString(v))
	assert.False(t, engine.Next(memberFunc))
}

func TestProofEngineExhaustsMaxDepth(t *testing.T) {
	program, syms := freshProgram()
	tm := NewTemplateBuilder(program)
	loopSym := syms.Intern("loop")
	x := tm.Var()
	head := tm.Func(tm.Con(loopSym), x)
	body := tm.Func(tm.Con(loopSym), x)
	recurse := Clause{Kind: ClauseProgram, Head: head, Body: []int{body}}
	program.Freeze()

	store := NewStore(program)
	preds := NewStaticPredicateTable(syms)
	config := NewConfig(WithMaxDepth(5))
	engine := NewProofEngine(store, preds, []Clause{recurse}, nil, config)

	goalFunc, goalArgs := store.PushFunc(loopSym, 1)
	store.Bind([]Binding{{Src: goalArgs[0], Tgt: store.PushConst(syms.Intern("a"))}})

	assert.False(t, engine.Next(goalFunc))
}

func TestProofEngineAbandonRestoresStoreAndHypothesis(t *testing.T) {
	program, syms := freshProgram()
	tm := NewTemplateBuilder(program)
	parentSym := syms.Intern("parent")
	head := tm.Func(tm.Con(parentSym), tm.Con(syms.Intern("tom")), tm.Con(syms.Intern("bob")))
	background := []Clause{{Kind: ClauseProgram, Head: head}}
	program.Freeze()

	store := NewStore(program)
	preds := NewStaticPredicateTable(syms)
	engine := NewProofEngine(store, preds, background, nil, NewConfig())

	mark := store.Len()
	goalFunc, goalArgs := store.PushFunc(parentSym, 2)
	store.Bind([]Binding{
		{Src: goalArgs[0], Tgt: store.PushConst(syms.Intern("tom"))},
		{Src: goalArgs[1], Tgt: store.PushConst(syms.Intern("bob"))},
	})

	require.True(t, engine.Next(goalFunc))
	engine.Abandon()
	store.Truncate(mark)
	assert.Equal(t, mark, store.Len())
}

func TestProofEngineBacktracksToSecondClause(t *testing.T) {
	program, syms := freshProgram()
	tm := NewTemplateBuilder(program)
	parentSym := syms.Intern("parent")
	fact := func(a, b string) Clause {
		head := tm.Func(tm.Con(parentSym), tm.Con(syms.Intern(a)), tm.Con(syms.Intern(b)))
		return Clause{Kind: ClauseProgram, Head: head}
	}
	background := []Clause{fact("tom", "bob"), fact("tom", "liz")}
	program.Freeze()

	store := NewStore(program)
	preds := NewStaticPredicateTable(syms)
	engine := NewProofEngine(store, preds, background, nil, NewConfig())

	v := store.PushRef()
	goalFunc, goalArgs := store.PushFunc(parentSym, 2)
	store.Bind([]Binding{{Src: goalArgs[0], Tgt: store.PushConst(syms.Intern("tom"))}, {Src: goalArgs[1], Tgt: v}})

	require.True(t, engine.Next(goalFunc))
	first := store.TermString(v)
	require.True(t, engine.Next(goalFunc))
	second := store.TermString(v)
	assert.NotEqual(t, first, second)
	assert.False(t, engine.Next(goalFunc))
}
