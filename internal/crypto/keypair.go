// Package crypto wraps Ed25519 key generation, signing, and verification
// for round digests exchanged between nodes.
package crypto

import (
	"crypto/rand"

	"golang.org/x/crypto/ed25519"
	"golang.org/x/xerrors"
)

// SignatureSize is the byte length of an Ed25519 signature.
const SignatureSize = ed25519.SignatureSize

// PublicKeySize is the byte length of an Ed25519 public key.
const PublicKeySize = ed25519.PublicKeySize

// KeyPair holds a node's Ed25519 signing key and exposes its public half.
type KeyPair struct {
	public  ed25519.PublicKey
	private ed25519.PrivateKey
}

// NewKeyPair generates a fresh Ed25519 key pair.
func NewKeyPair() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, xerrors.Errorf("crypto: generate key: %w", err)
	}
	return &KeyPair{public: pub, private: priv}, nil
}

// Public returns the raw public key bytes.
func (k *KeyPair) Public() []byte {
	out := make([]byte, len(k.public))
	copy(out, k.public)
	return out
}

// Sign returns the Ed25519 signature of message under this key pair.
func (k *KeyPair) Sign(message []byte) [SignatureSize]byte {
	var sig [SignatureSize]byte
	copy(sig[:], ed25519.Sign(k.private, message))
	return sig
}

// Verify reports whether sig is a valid Ed25519 signature of message under
// pubKey. It returns false (not an error) for a malformed key, mirroring
// signature verification being a boolean predicate at call sites.
func Verify(pubKey []byte, message []byte, sig [SignatureSize]byte) bool {
	if len(pubKey) != PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pubKey), message, sig[:])
}
