package node

import (
	"github.com/drand/bftseq/internal/crypto"
	"github.com/drand/bftseq/internal/state"
	"github.com/drand/bftseq/internal/wire"
)

func (n *Node) handleSyn(sender uint32, pubKey []byte) {
	n.peerKeys.Set(sender, pubKey)
}

// handleSend answers a peer's proposal for round with a signed ECHO, once.
func (n *Node) handleSend(sender, round uint32, payload []byte) {
	if n.sentEcho.TestAndSet(sender, round) {
		return // already echoed this (sender, round); a retransmit
	}
	d := digestOf(payload)
	n.payloads.Set(sender, round, payload)
	n.hashes.Set(sender, round, d[:])

	sig := n.keypair.Sign(d[:])
	n.unicast(sender, wire.NewEcho(n.group.Self, round, sig))
}

// handleEcho records a peer's ECHO signature over self's own round and,
// once quorum is reached, assembles and broadcasts the FIN/SUP pair.
func (n *Node) handleEcho(sender, round uint32, sig [wire.SignatureSize]byte) {
	d, ok := n.hashes.Get(n.group.Self, round)
	if !ok {
		n.log.Warn("msg=", "echo for unknown own round", "round=", round)
		return
	}
	pubKey, ok := n.peerKeys.Get(sender)
	if !ok {
		n.log.Warn("msg=", "echo from peer with no known key", "sender=", sender)
		return
	}
	if !crypto.Verify(pubKey, d, sig) {
		n.log.Warn("msg=", "invalid echo signature", "sender=", sender, "round=", round)
		return
	}
	count, _ := n.echoes.Add(n.group.Self, round, sender, sig)
	n.checkEchoQuorum(round, count)
}

// checkEchoQuorum finalizes round once enough ECHO signatures (including
// self's own) have accumulated, the first time that happens.
func (n *Node) checkEchoQuorum(round uint32, echoCount int) {
	if echoCount < n.group.Quorum() {
		return
	}
	if n.sentFin.TestAndSet(0, round) {
		return
	}

	signers := toWireSigners(n.echoes.Signers(n.group.Self, round))
	n.multicast(wire.NewFin(n.group.Self, round, signers))
	n.multicast(wire.NewSup(n.group.Self, round, signers, n.group.Self, nil))
	n.sentSup.TestAndSet(n.group.Self, round)

	count := n.supCount.Increment(n.group.Self, round)
	n.checkSupQuorum(n.group.Self, round, count)
}

// handleFin verifies a FIN's quorum of ECHO signatures over the
// originator's round digest and, if valid, unicasts a SUP to every other
// node (carrying the real payload only to nodes absent from the signer
// set, so a node that already echoed doesn't need it repeated).
func (n *Node) handleFin(sender, round uint32, wireSigners []wire.Signer) {
	deduped := state.DedupeBySigner(fromWireSigners(wireSigners))

	d, ok := n.hashes.Get(sender, round)
	if !ok {
		n.log.Warn("msg=", "fin for unknown round", "sender=", sender, "round=", round)
		return
	}

	valid := 0
	for _, e := range deduped {
		var pubKey []byte
		if e.Signer == n.group.Self {
			pubKey = n.keypair.Public()
		} else {
			var ok bool
			pubKey, ok = n.peerKeys.Get(e.Signer)
			if !ok {
				continue
			}
		}
		if crypto.Verify(pubKey, d, e.Signature) {
			valid++
		}
	}

	if valid < n.group.Quorum() {
		n.log.Warn("msg=", "fin quorum not met", "sender=", sender, "round=", round, "valid=", valid, "need=", n.group.Quorum())
		return
	}

	// Only mark this (sender, round) as handled once the quorum actually
	// verifies; a FIN with too few valid signatures must not block a
	// legitimate retransmit from being processed later.
	if n.sentSup.TestAndSet(sender, round) {
		return
	}

	signerSet := make(map[uint32]bool, len(deduped))
	for _, e := range deduped {
		signerSet[e.Signer] = true
	}
	wireDeduped := toWireSigners(deduped)

	for i := uint32(0); i < uint32(n.group.Len()); i++ {
		if i == n.group.Self {
			count := n.supCount.Increment(sender, round)
			n.checkSupQuorum(sender, round, count)
			continue
		}
		payload := []byte(nil)
		if !signerSet[i] {
			if p, ok := n.payloads.Get(sender, round); ok {
				payload = p
			}
		}
		n.unicast(i, wire.NewSup(n.group.Self, round, wireDeduped, sender, payload))
	}
}

// handleSup records one more observed SUP for (originator, round),
// checking for delivery, and amplifies (forwards its own SUP once) if
// enough peers appear to have reached quorum without self ever having
// sent one — guarding against the direct unicast from the FIN assembler
// being lost.
func (n *Node) handleSup(originator, round uint32) {
	count := n.supCount.Increment(originator, round)
	n.checkSupQuorum(originator, round, count)

	if int(count) >= n.group.F()+1 && !n.sentSup.TestAndSet(originator, round) {
		payload, _ := n.payloads.Get(originator, round)
		n.multicast(wire.NewSup(n.group.Self, round, nil, originator, payload))
	}
}

// checkSupQuorum marks (originator, round) delivered, the first time
// count reaches quorum, and measures latency if it was self's own round.
func (n *Node) checkSupQuorum(originator, round uint32, count uint32) {
	if int(count) < n.group.Quorum() {
		return
	}
	if n.delivered.TestAndSet(originator, round) {
		return
	}
	n.log.Info("msg=", "round delivered", "originator=", originator, "round=", round)
	if originator == n.group.Self {
		n.measure.MeasureLatency(int(round))
	}
}

func toWireSigners(entries []state.SignerEntry) []wire.Signer {
	out := make([]wire.Signer, len(entries))
	for i, e := range entries {
		out[i] = wire.Signer{NodeIndex: e.Signer, Signature: e.Signature}
	}
	return out
}

func fromWireSigners(signers []wire.Signer) []state.SignerEntry {
	out := make([]state.SignerEntry, len(signers))
	for i, s := range signers {
		out[i] = state.SignerEntry{Signer: s.NodeIndex, Signature: s.Signature}
	}
	return out
}
