package mil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopProgramLearnsFromPositiveExamplesAndRejectsNegative(t *testing.T) {
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

	identX, identY := tm.Var(), tm.Var()
	identHead := tm.Func(tm.Arg(0), identX, identY)
	identBody := tm.Func(tm.Arg(1), identX, identY)
	identity := Clause{Kind: ClauseMeta, Head: identHead, Body: []int{identBody}}
	program.Freeze()

	ancestorSym := syms.Intern("ancestor")
	goalFor := func(a, b string) func(*Store) int {
		return func(store *Store) int {
			funcAddr, args := store.PushFunc(ancestorSym, 2)
			store.Bind([]Binding{
				{Src: args[0], Tgt: store.PushConst(syms.Intern(a))},
				{Src: args[1], Tgt: store.PushConst(syms.Intern(b))},
			})
			return funcAddr
		}
	}

	examples := []Example{
		{Build: goalFor("tom", "ann"), Positive: true},
		{Build: goalFor("tom", "jim"), Positive: false},
	}

	config := NewConfig(WithMaxPred(4), WithMaxClause(8), WithMaxDepth(50))
	tp := NewTopProgram(program, background, []Clause{chain, identity}, config, 2)
	defer tp.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results, err := tp.Run(ctx, examples)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Proved)
	assert.Equal(t, 0, results[0].ExampleIndex)
	assert.NotEmpty(t, results[0].Clauses)
}

func TestTopProgramReportsUnprovenExample(t *testing.T) {
	program, syms := freshProgram()
	program.Freeze()

	ancestorSym := syms.Intern("ancestor")
	goalFor := func(a, b string) func(*Store) int {
		return func(store *Store) int {
			funcAddr, args := store.PushFunc(ancestorSym, 2)
			store.Bind([]Binding{
				{Src: args[0], Tgt: store.PushConst(syms.Intern(a))},
				{Src: args[1], Tgt: store.PushConst(syms.Intern(b))},
			})
			return funcAddr
		}
	}

	examples := []Example{
		{Build: goalFor("tom", "ann"), Positive: true},
	}

	tp := NewTopProgram(program, nil, nil, NewConfig(WithMaxDepth(20)), 1)
	defer tp.Shutdown()

	results, err := tp.Run(context.Background(), examples)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Proved)
}

func TestCanonicalKeyIsOrderIndependent(t *testing.T) {
	a := canonicalKey([]string{"b.", "a."})
	b := canonicalKey([]string{"a.", "b."})
	assert.Equal(t, a, b)
}
