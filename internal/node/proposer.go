package node

import (
	"github.com/drand/bftseq/internal/wire"
)

// proposerTask waits out the warm-up period, then starts a new round on
// every tick of the round interval: it builds this node's payload for the
// round, records its own hash and self-ECHO, and multicasts a SEND. If
// the group is small enough that self's ECHO alone already meets quorum
// (the degenerate n=1 case), the round is finalized immediately rather
// than waiting on wire traffic that will never arrive.
func (n *Node) proposerTask() {
	n.clock.Sleep(n.cfg.Warmup)

	ticker := n.clock.NewTicker(n.cfg.RoundInterval)
	defer ticker.Stop()

	payload := make([]byte, n.cfg.PayloadSize)
	for i := range payload {
		payload[i] = byte(n.group.Self)
	}

	var round uint32
	for {
		select {
		case <-ticker.Chan():
			n.proposeRound(round, payload)
			round++
		case <-n.shutdownCh:
			return
		}
	}
}

func (n *Node) proposeRound(round uint32, payload []byte) {
	n.measure.AppendRound()

	d := digestOf(payload)
	n.payloads.Set(n.group.Self, round, payload)
	n.hashes.Set(n.group.Self, round, d[:])

	sig := n.keypair.Sign(d[:])
	count, _ := n.echoes.Add(n.group.Self, round, n.group.Self, sig)

	n.multicast(wire.NewSend(n.group.Self, round, payload))
	n.checkEchoQuorum(round, count)
}
