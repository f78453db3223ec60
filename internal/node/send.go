package node

import (
	"github.com/drand/bftseq/internal/transport"
	"github.com/drand/bftseq/internal/wire"
)

// multicast encodes msg and queues it for delivery to every peer.
func (n *Node) multicast(msg wire.Message) {
	raw, err := wire.Encode(msg)
	if err != nil {
		n.log.Error("msg=", "encode failed", "kind=", msg.Kind, "err=", err)
		return
	}
	n.measure.IncrBytesSent(len(raw) * len(n.group.Peers()))
	select {
	case n.castCh <- transport.Cast{Payload: raw}:
	case <-n.shutdownCh:
	}
}

// unicast encodes msg and queues it for delivery to a single peer by index.
func (n *Node) unicast(dest uint32, msg wire.Message) {
	id, ok := n.group.Identity(dest)
	if !ok {
		n.log.Error("msg=", "unicast to unknown index", "dest=", dest)
		return
	}
	raw, err := wire.Encode(msg)
	if err != nil {
		n.log.Error("msg=", "encode failed", "kind=", msg.Kind, "err=", err)
		return
	}
	n.measure.IncrBytesSent(len(raw))
	select {
	case n.castCh <- transport.Cast{Dest: id.Address, Payload: raw}:
	case <-n.shutdownCh:
	}
}

// senderTask drains castCh and hands each frame to the transport sender.
// It is the only goroutine that touches the per-peer connections, so
// concurrent multicast/unicast callers never race on a socket write.
func (n *Node) senderTask() {
	for {
		select {
		case cast := <-n.castCh:
			n.sender.Send(cast)
		case <-n.shutdownCh:
			return
		}
	}
}
