package node

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/drand/bftseq/internal/crypto"
	"github.com/drand/bftseq/internal/membership"
	"github.com/drand/bftseq/log"
)

func mustKeyPair(t *testing.T) *crypto.KeyPair {
	t.Helper()
	kp, err := crypto.NewKeyPair()
	require.NoError(t, err)
	return kp
}

func newTestGroup(t *testing.T, n int) *membership.Group {
	t.Helper()
	addrs := make([]string, n)
	for i := range addrs {
		addrs[i] = "127.0.0.1:0"
	}
	g, err := membership.NewGroup(addrs, 0)
	require.NoError(t, err)
	return g
}

func newTestNode(t *testing.T, n int) *Node {
	t.Helper()
	cfg := Config{
		Group:         newTestGroup(t, n),
		PayloadSize:   8,
		Warmup:        time.Millisecond,
		RoundInterval: time.Millisecond,
		InboxCapacity: 16,
		CastCapacity:  16,
		Clock:         clockwork.NewFakeClock(),
		Logger:        log.DefaultLogger(),
	}
	node, err := New(cfg)
	require.NoError(t, err)
	return node
}

func TestSingleNodeSelfDeliversWithoutWireTraffic(t *testing.T) {
	n := newTestNode(t, 1)
	defer n.listener.Close()

	payload := []byte{0}
	n.proposeRound(0, payload)

	require.True(t, n.delivered.Get(0, 0))
}

func TestHandleSendThenEchoIsIdempotent(t *testing.T) {
	n := newTestNode(t, 4)
	defer n.listener.Close()

	n.handleSend(1, 0, []byte("payload"))
	require.True(t, n.sentEcho.Get(1, 0))

	// second identical SEND must not re-trigger an ECHO send
	before := len(n.castCh)
	n.handleSend(1, 0, []byte("payload"))
	require.Equal(t, before, len(n.castCh))
}

func TestEchoQuorumTriggersFinAndSup(t *testing.T) {
	n := newTestNode(t, 4) // f=1, quorum=3
	defer n.listener.Close()

	round := uint32(0)
	payload := []byte("abc")
	d := digestOf(payload)
	n.payloads.Set(n.group.Self, round, payload)
	n.hashes.Set(n.group.Self, round, d[:])

	// self-echo
	selfSig := n.keypair.Sign(d[:])
	count, _ := n.echoes.Add(n.group.Self, round, n.group.Self, selfSig)
	n.checkEchoQuorum(round, count)
	require.False(t, n.sentFin.Get(0, round))

	for _, peerIdx := range []uint32{1, 2} {
		kp := mustKeyPair(t)
		n.peerKeys.Set(peerIdx, kp.Public())
		sig := kp.Sign(d[:])
		n.handleEcho(peerIdx, round, sig)
	}

	require.True(t, n.sentFin.Get(0, round))
	require.True(t, n.sentSup.Get(n.group.Self, round))
	// the FIN and SUP multicasts are the only frames queued
	require.Equal(t, 2, len(n.castCh))
}

func TestHandleEchoRejectsBadSignature(t *testing.T) {
	n := newTestNode(t, 4)
	defer n.listener.Close()

	round := uint32(0)
	payload := []byte("abc")
	d := digestOf(payload)
	n.payloads.Set(n.group.Self, round, payload)
	n.hashes.Set(n.group.Self, round, d[:])

	other := mustKeyPair(t)
	n.peerKeys.Set(1, other.Public())

	wrongSig := other.Sign([]byte("tampered"))
	n.handleEcho(1, round, wrongSig)

	require.Equal(t, 0, n.echoes.Count(n.group.Self, round))
}
