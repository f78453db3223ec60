package node

import (
	json "github.com/nikkolasg/hexjson"

	"github.com/drand/bftseq/internal/wire"
)

// dispatchLoop reads every frame the listener receives, decodes it, and
// spawns a short-lived goroutine to handle it. Handling never blocks the
// loop itself, so one slow or malicious peer cannot stall processing of
// frames from the others.
func (n *Node) dispatchLoop() {
	for {
		select {
		case raw := <-n.listener.Inbox():
			n.measure.IncrBytesRecv(len(raw))
			msg, err := wire.Decode(raw)
			if err != nil {
				n.log.Warn("msg=", "decode failed", "err=", err)
				continue
			}
			n.debugMessage(msg)
			go n.handle(msg)
		case <-n.shutdownCh:
			return
		}
	}
}

// debugMessage logs the decoded frame as hex-encoded JSON, which is
// legible for signatures and payloads, unlike Go's default base64.
func (n *Node) debugMessage(msg wire.Message) {
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	n.log.Debug("msg=", "received frame", "frame=", string(b))
}

func (n *Node) handle(msg wire.Message) {
	switch msg.Kind {
	case wire.KindSyn:
		n.handleSyn(msg.Sender, msg.PubKey)
	case wire.KindSend:
		n.handleSend(msg.Sender, msg.Round, msg.Payload)
	case wire.KindEcho:
		n.handleEcho(msg.Sender, msg.Round, msg.Signature)
	case wire.KindFin:
		n.handleFin(msg.Sender, msg.Round, msg.Signers)
	case wire.KindSup:
		n.handleSup(msg.Originator, msg.Round)
	default:
		n.log.Warn("msg=", "unhandled message kind", "kind=", msg.Kind)
	}
}
