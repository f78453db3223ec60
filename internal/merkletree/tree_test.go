package merkletree

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewHeadRootIsZeroLeaf(t *testing.T) {
	h := NewHead()
	require.Equal(t, [32]byte{}, h.Root())
	require.Equal(t, uint32(1), h.LeafCount())
}

func TestAppendLeafChangesRoot(t *testing.T) {
	h := NewHead()
	before := h.Root()
	h.AppendLeaf(sha256.Sum256([]byte("leaf-0")))
	require.NotEqual(t, before, h.Root())
	require.Equal(t, uint32(2), h.LeafCount())
}

func TestAppendLeafDeterministic(t *testing.T) {
	build := func() [32]byte {
		h := NewHead()
		for i := 0; i < 37; i++ {
			h.AppendLeaf(sha256.Sum256([]byte{byte(i)}))
		}
		return h.Root()
	}
	require.Equal(t, build(), build())
}

func TestAppendManyLeavesDoesNotPanic(t *testing.T) {
	h := NewHead()
	for i := 0; i < 2000; i++ {
		h.AppendLeaf(sha256.Sum256([]byte{byte(i), byte(i >> 8)}))
	}
	require.Equal(t, uint32(2001), h.LeafCount())
}
