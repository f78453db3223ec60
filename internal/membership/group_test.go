package membership

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuorumMath(t *testing.T) {
	cases := []struct {
		n             int
		wantF         int
		wantQuorum    int
		wantForSingle bool
	}{
		{1, 0, 1, true},
		{4, 1, 3, false},
		{7, 2, 5, false},
		{10, 3, 7, false},
	}

	for _, c := range cases {
		addrs := make([]string, c.n)
		for i := range addrs {
			addrs[i] = "127.0.0.1:0"
		}
		g, err := NewGroup(addrs, 0)
		require.NoError(t, err)
		require.Equal(t, c.wantF, g.F())
		require.Equal(t, c.wantQuorum, g.Quorum())
	}
}

func TestNewGroupRejectsOutOfRangeSelf(t *testing.T) {
	_, err := NewGroup([]string{"127.0.0.1:0"}, 5)
	require.Error(t, err)
}

func TestNewGroupRejectsEmpty(t *testing.T) {
	_, err := NewGroup(nil, 0)
	require.Error(t, err)
}

func TestPeersExcludesSelf(t *testing.T) {
	g, err := NewGroup([]string{"a:1", "b:2", "c:3", "d:4"}, 1)
	require.NoError(t, err)

	peers := g.Peers()
	require.Len(t, peers, 3)
	for _, p := range peers {
		require.NotEqual(t, uint32(1), p.Index)
	}
}
