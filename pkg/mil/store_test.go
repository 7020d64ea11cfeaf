package mil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() (*Store, *SymbolTable) {
	syms := NewSymbolTable()
	program := NewProgramRegion(syms)
	program.Freeze()
	return NewStore(program), syms
}

func TestPushRefIsSelfReferencing(t *testing.T) {
	store, _ := newTestStore()
	addr := store.PushRef()
	c := store.Cell(addr)
	assert.Equal(t, Ref, c.Tag)
	assert.Equal(t, uint(addr), c.Payload)
	assert.Equal(t, addr, store.Deref(addr))
}

func TestBindUnbindRoundTrip(t *testing.T) {
	store, _ := newTestStore()
	a := store.PushRef()
	b := store.PushInt(42)

	store.Bind([]Binding{{Src: a, Tgt: b}})
	assert.Equal(t, b, store.Deref(a))

	store.Unbind([]Binding{{Src: a, Tgt: b}})
	assert.Equal(t, a, store.Deref(a))
}

func TestBindChain(t *testing.T) {
	store, _ := newTestStore()
	a := store.PushRef()
	b := store.PushRef()
	c := store.PushInt(7)

	store.Bind([]Binding{{Src: a, Tgt: b}})
	store.Bind([]Binding{{Src: b, Tgt: c}})

	assert.Equal(t, c, store.Deref(a))
	assert.Equal(t, c, store.Deref(b))
}

func TestBindRejectsNonUnboundTarget(t *testing.T) {
	store, _ := newTestStore()
	a := store.PushInt(1)
	b := store.PushInt(2)

	assert.Panics(t, func() {
		store.Bind([]Binding{{Src: a, Tgt: b}})
	})
}

func TestTruncateReclaimsQueryCells(t *testing.T) {
	store, _ := newTestStore()
	mark := store.Len()
	store.PushInt(1)
	store.PushInt(2)
	require.Equal(t, mark+2, store.Len())

	store.Truncate(mark)
	assert.Equal(t, mark, store.Len())
}

func TestListSpineWalksProperList(t *testing.T) {
	store, syms := newTestStore()
	a := store.PushConst(syms.Intern("a"))
	b := store.PushConst(syms.Intern("b"))
	tail := store.PushEmptyList()
	tail = store.PushList(b, tail)
	head := store.PushList(a, tail)

	heads, finalTail := store.ListSpine(head)
	require.Len(t, heads, 2)
	assert.True(t, store.Cell(store.Deref(finalTail)).IsEmptyList())
	assert.Equal(t, "a", store.TermString(heads[0]))
	assert.Equal(t, "b", store.TermString(heads[1]))
}

func TestTermStringRendersCompoundTerm(t *testing.T) {
	store, syms := newTestStore()
	sym := syms.Intern("parent")
	tom := store.PushConst(syms.Intern("tom"))
	bob := store.PushConst(syms.Intern("bob"))
	funcAddr, args := store.PushFunc(sym, 2)
	store.Bind([]Binding{{Src: args[0], Tgt: tom}, {Src: args[1], Tgt: bob}})

	assert.Equal(t, "parent(tom, bob)", store.TermString(funcAddr))
}

func TestProgramRegionFreezeRejectsFurtherPush(t *testing.T) {
	syms := NewSymbolTable()
	program := NewProgramRegion(syms)
	program.Freeze()

	assert.Panics(t, func() {
		program.Push(Cell{Tag: Int, Payload: 1})
	})
}
