package state

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteGridSetGet(t *testing.T) {
	g := NewByteGrid(3)

	_, ok := g.Get(0, 5)
	require.False(t, ok)

	g.Set(1, 5, []byte("payload"))
	v, ok := g.Get(1, 5)
	require.True(t, ok)
	require.Equal(t, []byte("payload"), v)

	// unrelated cell still unset
	_, ok = g.Get(1, 4)
	require.False(t, ok)
}

func TestByteGridOutOfBoundsRow(t *testing.T) {
	g := NewByteGrid(2)
	_, ok := g.Get(9, 0)
	require.False(t, ok)
}

func TestBoolGridTestAndSet(t *testing.T) {
	g := NewBoolGrid(2)

	require.False(t, g.Get(0, 3))

	was := g.TestAndSet(0, 3)
	require.False(t, was)
	require.True(t, g.Get(0, 3))

	was = g.TestAndSet(0, 3)
	require.True(t, was)
}

func TestCountGridIncrement(t *testing.T) {
	g := NewCountGrid(2)
	require.Equal(t, uint32(0), g.Get(1, 0))

	require.Equal(t, uint32(1), g.Increment(1, 0))
	require.Equal(t, uint32(2), g.Increment(1, 0))
	require.Equal(t, uint32(2), g.Get(1, 0))
	require.Equal(t, uint32(0), g.Get(1, 1))
}
