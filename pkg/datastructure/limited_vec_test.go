package datastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitedVec(t *testing.T) {
	v := NewLimitedVec[int](3)
	require.NoError(t, v.Push(1))
	require.NoError(t, v.Push(2))
	require.NoError(t, v.Push(3))
	assert.ErrorIs(t, v.Push(4), ErrOutOfMemory)
	assert.Equal(t, []int{1, 2, 3}, v.Inner())

	*v.At(1) = 20
	assert.Equal(t, 20, v.Inner()[1])
}

func TestLimitedVecDefaultSize(t *testing.T) {
	v := NewLimitedVec[int](0)
	assert.Equal(t, DefaultMaxArenaSize, v.maxSize)
}
