package membership

import (
	"testing"

	"github.com/drand/bftseq/log"
	"github.com/stretchr/testify/require"
)

func TestPeerKeysSetAndGet(t *testing.T) {
	pk := NewPeerKeys(log.DefaultLogger())

	_, ok := pk.Get(3)
	require.False(t, ok)

	pk.Set(3, []byte{1, 2, 3})
	got, ok := pk.Get(3)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, got)
	require.Equal(t, 1, pk.Len())
}
