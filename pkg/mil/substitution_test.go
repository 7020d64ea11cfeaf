package mil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstitutionLookupUnbound(t *testing.T) {
	s := NewSubstitution()
	_, ok := s.Lookup(5)
	assert.False(t, ok)
	assert.False(t, s.IsBound(5))
}

func TestSubstitutionBindAndLookup(t *testing.T) {
	s := NewSubstitution()
	s.Bind(2, 100, 200)
	v, ok := s.Lookup(2)
	assert.True(t, ok)
	assert.Equal(t, 200, v)
	assert.True(t, s.IsBound(2))
}

func TestSubstitutionBindRejectsDoubleBind(t *testing.T) {
	s := NewSubstitution()
	s.Bind(0, 1, 2)
	assert.Panics(t, func() { s.Bind(0, 1, 3) })
}

func TestSubstitutionBindOutOfRangePanics(t *testing.T) {
	s := NewSubstitution()
	assert.Panics(t, func() { s.Bind(MaxMetaVars, 0, 0) })
}

func TestSubstitutionMarkAndUnbindTo(t *testing.T) {
	s := NewSubstitution()
	s.Bind(0, 1, 2)
	mark := s.Mark()
	s.Bind(1, 3, 4)
	s.Bind(2, 5, 6)

	assert.Equal(t, 3, s.Len())
	s.UnbindTo(mark)
	assert.Equal(t, 1, s.Len())

	_, ok := s.Lookup(1)
	assert.False(t, ok)
	_, ok = s.Lookup(2)
	assert.False(t, ok)

	v, ok := s.Lookup(0)
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestSubstitutionBindingsSinceMark(t *testing.T) {
	s := NewSubstitution()
	s.Bind(0, 1, 2)
	mark := s.Mark()
	s.Bind(1, 3, 4)

	bindings := s.Bindings(mark)
	assert.Len(t, bindings, 1)
	assert.Equal(t, uint(1), bindings[0].Slot)
	assert.Equal(t, 4, bindings[0].Tgt)
}

func TestSubstitutionUnbindToOutOfRangePanics(t *testing.T) {
	s := NewSubstitution()
	assert.Panics(t, func() { s.UnbindTo(5) })
	assert.Panics(t, func() { s.UnbindTo(-1) })
}
