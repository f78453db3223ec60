package state

import "sync"

type echoKey struct {
	originator uint32
	round      uint32
}

// EchoCollector accumulates ECHO signatures for each (originator, round)
// pair, deduplicating by signer index so a retransmitted or duplicate
// ECHO never counts twice toward quorum.
type EchoCollector struct {
	mu   sync.RWMutex
	sets map[echoKey]map[uint32][SignatureSize]byte
}

// SignatureSize mirrors the Ed25519 signature length; kept local so this
// package does not need to import the crypto package for a single constant.
const SignatureSize = 64

// NewEchoCollector returns an empty collector.
func NewEchoCollector() *EchoCollector {
	return &EchoCollector{sets: make(map[echoKey]map[uint32][SignatureSize]byte)}
}

// Add records signer's signature for (originator, round). It returns the
// number of distinct signers recorded so far and whether this call added a
// new signer (false if signer had already echoed).
func (c *EchoCollector) Add(originator, round, signer uint32, sig [SignatureSize]byte) (count int, added bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := echoKey{originator, round}
	set, ok := c.sets[key]
	if !ok {
		set = make(map[uint32][SignatureSize]byte)
		c.sets[key] = set
	}
	if _, exists := set[signer]; exists {
		return len(set), false
	}
	set[signer] = sig
	return len(set), true
}

// Count returns the number of distinct signers recorded for (originator, round).
func (c *EchoCollector) Count(originator, round uint32) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sets[echoKey{originator, round}])
}

// Signers returns the accumulated (signer, signature) pairs for
// (originator, round), in no particular order.
func (c *EchoCollector) Signers(originator, round uint32) []SignerEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	set := c.sets[echoKey{originator, round}]
	out := make([]SignerEntry, 0, len(set))
	for signer, sig := range set {
		out = append(out, SignerEntry{Signer: signer, Signature: sig})
	}
	return out
}

// SignerEntry pairs a signer index with its recorded signature.
type SignerEntry struct {
	Signer    uint32
	Signature [SignatureSize]byte
}

// DedupeBySigner returns entries with duplicate signer indices removed,
// keeping the first occurrence of each. FIN and SUP messages must be
// deduplicated this way before their signature count is compared against a
// quorum threshold, since a forwarding or re-broadcasting peer could
// otherwise list the same signer twice to inflate the count.
func DedupeBySigner(entries []SignerEntry) []SignerEntry {
	seen := make(map[uint32]bool, len(entries))
	out := make([]SignerEntry, 0, len(entries))
	for _, e := range entries {
		if seen[e.Signer] {
			continue
		}
		seen[e.Signer] = true
		out = append(out, e)
	}
	return out
}
