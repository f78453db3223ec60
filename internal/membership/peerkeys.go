package membership

import (
	"sync"

	"github.com/drand/bftseq/log"
)

// PeerKeys tracks the Ed25519 public key announced by each node's SYN
// message. A second SYN from the same sender is a protocol violation
// worth terminating on, since nothing downstream can safely reconcile
// two keys for one index.
type PeerKeys struct {
	mu   sync.RWMutex
	keys map[uint32][]byte
	log  log.Logger
}

// NewPeerKeys returns an empty registry.
func NewPeerKeys(logger log.Logger) *PeerKeys {
	return &PeerKeys{
		keys: make(map[uint32][]byte),
		log:  logger.Named("peerkeys"),
	}
}

// Set records sender's public key. Any second SYN from a sender already
// registered is fatal, regardless of whether the key matches.
func (p *PeerKeys) Set(sender uint32, pubKey []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.keys[sender]; ok {
		p.log.Fatal("msg=", "peer sent SYN twice", "sender=", sender)
	}
	cp := make([]byte, len(pubKey))
	copy(cp, pubKey)
	p.keys[sender] = cp
}

// Get returns the public key announced by sender, if any.
func (p *PeerKeys) Get(sender uint32) ([]byte, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	key, ok := p.keys[sender]
	return key, ok
}

// Len returns the number of distinct senders whose key has been recorded.
func (p *PeerKeys) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.keys)
}
