package mil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigValues(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, uint32(500), c.MaxDepth)
	assert.Equal(t, uint32(64), c.MaxClause)
	assert.Equal(t, uint32(16), c.MaxPred)
	assert.False(t, c.Debug)
}

func TestNewConfigAppliesOptionsOverDefault(t *testing.T) {
	c := NewConfig(WithMaxDepth(10), WithMaxClause(2), WithMaxPred(1), WithDebug(true))
	assert.Equal(t, uint32(10), c.MaxDepth)
	assert.Equal(t, uint32(2), c.MaxClause)
	assert.Equal(t, uint32(1), c.MaxPred)
	assert.True(t, c.Debug)
}

func TestNewConfigWithNoOptionsMatchesDefault(t *testing.T) {
	assert.Equal(t, DefaultConfig(), NewConfig())
}
