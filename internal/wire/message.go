// Package wire implements the on-the-wire message codec shared by every
// node: a one-byte kind tag followed by fixed little-endian fields and a
// variable trailer. Endianness and field order must match byte-for-byte
// across nodes, so this package has no dependency on host byte order.
package wire

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/xerrors"
)

// Kind identifies the message variant carried by a frame.
type Kind uint8

const (
	KindSyn  Kind = 0x00
	KindSend Kind = 0x01
	KindEcho Kind = 0x02
	KindFin  Kind = 0x03
	KindSup  Kind = 0x04
)

func (k Kind) String() string {
	switch k {
	case KindSyn:
		return "SYN"
	case KindSend:
		return "SEND"
	case KindEcho:
		return "ECHO"
	case KindFin:
		return "FIN"
	case KindSup:
		return "SUP"
	default:
		return fmt.Sprintf("UNKNOWN(%#x)", uint8(k))
	}
}

// SignatureSize is the fixed length of an Ed25519 signature.
const SignatureSize = 64

// headerSize is the 1-byte kind tag.
const headerSize = 1

// Signer pairs a node index with the signature it produced.
type Signer struct {
	NodeIndex uint32
	Signature [SignatureSize]byte
}

// Message is the decoded form of a wire frame. Only the fields relevant to
// Kind are populated; callers must switch on Kind before reading others.
type Message struct {
	Kind Kind

	Sender uint32
	Round  uint32

	PubKey  []byte // SYN
	Payload []byte // SEND, SUP

	Signature [SignatureSize]byte // ECHO

	Signers []Signer // FIN, SUP

	Originator uint32 // SUP
}

// ErrShortMessage is returned when a frame ends before a fixed field it
// claims to carry.
var ErrShortMessage = xerrors.New("wire: message truncated")

// ErrUnknownKind is returned when the tag byte doesn't match a known Kind.
var ErrUnknownKind = xerrors.New("wire: unknown message kind")

// NewSyn builds a SYN message announcing sender's public key.
func NewSyn(sender uint32, pubKey []byte) Message {
	return Message{Kind: KindSyn, Sender: sender, PubKey: append([]byte(nil), pubKey...)}
}

// NewSend builds a SEND message proposing payload for round.
func NewSend(sender, round uint32, payload []byte) Message {
	return Message{Kind: KindSend, Sender: sender, Round: round, Payload: append([]byte(nil), payload...)}
}

// NewEcho builds an ECHO message carrying sender's signature over the round digest.
func NewEcho(sender, round uint32, sig [SignatureSize]byte) Message {
	return Message{Kind: KindEcho, Sender: sender, Round: round, Signature: sig}
}

// NewFin builds a FIN message carrying the quorum of ECHO signatures assembled by sender.
func NewFin(sender, round uint32, signers []Signer) Message {
	return Message{Kind: KindFin, Sender: sender, Round: round, Signers: append([]Signer(nil), signers...)}
}

// NewSup builds a SUP message attesting that round's FIN quorum was observed for originator.
func NewSup(sender, round uint32, signers []Signer, originator uint32, payload []byte) Message {
	return Message{
		Kind:       KindSup,
		Sender:     sender,
		Round:      round,
		Signers:    append([]Signer(nil), signers...),
		Originator: originator,
		Payload:    append([]byte(nil), payload...),
	}
}

// Encode serializes m into its wire representation.
func Encode(m Message) ([]byte, error) {
	switch m.Kind {
	case KindSyn:
		buf := make([]byte, headerSize+4+len(m.PubKey))
		buf[0] = byte(KindSyn)
		binary.LittleEndian.PutUint32(buf[1:5], m.Sender)
		copy(buf[5:], m.PubKey)
		return buf, nil

	case KindSend:
		buf := make([]byte, headerSize+8+len(m.Payload))
		buf[0] = byte(KindSend)
		binary.LittleEndian.PutUint32(buf[1:5], m.Sender)
		binary.LittleEndian.PutUint32(buf[5:9], m.Round)
		copy(buf[9:], m.Payload)
		return buf, nil

	case KindEcho:
		buf := make([]byte, headerSize+8+SignatureSize)
		buf[0] = byte(KindEcho)
		binary.LittleEndian.PutUint32(buf[1:5], m.Sender)
		binary.LittleEndian.PutUint32(buf[5:9], m.Round)
		copy(buf[9:], m.Signature[:])
		return buf, nil

	case KindFin:
		buf := make([]byte, headerSize+12+len(m.Signers)*(4+SignatureSize))
		buf[0] = byte(KindFin)
		binary.LittleEndian.PutUint32(buf[1:5], m.Sender)
		binary.LittleEndian.PutUint32(buf[5:9], m.Round)
		binary.LittleEndian.PutUint32(buf[9:13], uint32(len(m.Signers)))
		idx := 13
		for _, s := range m.Signers {
			binary.LittleEndian.PutUint32(buf[idx:idx+4], s.NodeIndex)
			idx += 4
			copy(buf[idx:idx+SignatureSize], s.Signature[:])
			idx += SignatureSize
		}
		return buf, nil

	case KindSup:
		size := headerSize + 12 + len(m.Signers)*(4+SignatureSize) + 4 + len(m.Payload)
		buf := make([]byte, size)
		buf[0] = byte(KindSup)
		binary.LittleEndian.PutUint32(buf[1:5], m.Sender)
		binary.LittleEndian.PutUint32(buf[5:9], m.Round)
		binary.LittleEndian.PutUint32(buf[9:13], uint32(len(m.Signers)))
		idx := 13
		for _, s := range m.Signers {
			binary.LittleEndian.PutUint32(buf[idx:idx+4], s.NodeIndex)
			idx += 4
			copy(buf[idx:idx+SignatureSize], s.Signature[:])
			idx += SignatureSize
		}
		binary.LittleEndian.PutUint32(buf[idx:idx+4], m.Originator)
		idx += 4
		copy(buf[idx:], m.Payload)
		return buf, nil

	default:
		return nil, xerrors.Errorf("wire: encode: %w: %v", ErrUnknownKind, m.Kind)
	}
}

// Decode parses b into a Message. It returns ErrShortMessage if b ends
// before a field its kind requires, and ErrUnknownKind if the tag byte is
// unrecognized.
func Decode(b []byte) (Message, error) {
	if len(b) < headerSize {
		return Message{}, ErrShortMessage
	}
	kind := Kind(b[0])

	switch kind {
	case KindSyn:
		if len(b) < 5 {
			return Message{}, ErrShortMessage
		}
		return Message{
			Kind:   KindSyn,
			Sender: binary.LittleEndian.Uint32(b[1:5]),
			PubKey: append([]byte(nil), b[5:]...),
		}, nil

	case KindSend:
		if len(b) < 9 {
			return Message{}, ErrShortMessage
		}
		return Message{
			Kind:    KindSend,
			Sender:  binary.LittleEndian.Uint32(b[1:5]),
			Round:   binary.LittleEndian.Uint32(b[5:9]),
			Payload: append([]byte(nil), b[9:]...),
		}, nil

	case KindEcho:
		if len(b) < 9+SignatureSize {
			return Message{}, ErrShortMessage
		}
		var sig [SignatureSize]byte
		copy(sig[:], b[9:9+SignatureSize])
		return Message{
			Kind:      KindEcho,
			Sender:    binary.LittleEndian.Uint32(b[1:5]),
			Round:     binary.LittleEndian.Uint32(b[5:9]),
			Signature: sig,
		}, nil

	case KindFin:
		signers, _, err := decodeSigners(b, 9)
		if err != nil {
			return Message{}, err
		}
		return Message{
			Kind:    KindFin,
			Sender:  binary.LittleEndian.Uint32(b[1:5]),
			Round:   binary.LittleEndian.Uint32(b[5:9]),
			Signers: signers,
		}, nil

	case KindSup:
		signers, idx, err := decodeSigners(b, 9)
		if err != nil {
			return Message{}, err
		}
		if len(b) < idx+4 {
			return Message{}, ErrShortMessage
		}
		originator := binary.LittleEndian.Uint32(b[idx : idx+4])
		idx += 4
		return Message{
			Kind:       KindSup,
			Sender:     binary.LittleEndian.Uint32(b[1:5]),
			Round:      binary.LittleEndian.Uint32(b[5:9]),
			Signers:    signers,
			Originator: originator,
			Payload:    append([]byte(nil), b[idx:]...),
		}, nil

	default:
		return Message{}, xerrors.Errorf("wire: decode: %w: %#x", ErrUnknownKind, b[0])
	}
}

// decodeSigners reads the sign_cnt-prefixed signer list whose u32 count
// field starts at countIdx (the byte right after the round field). It
// returns the signers and the index immediately following the list.
func decodeSigners(b []byte, countIdx int) ([]Signer, int, error) {
	if len(b) < countIdx+4 {
		return nil, 0, ErrShortMessage
	}
	count := binary.LittleEndian.Uint32(b[countIdx : countIdx+4])
	idx := countIdx + 4
	signers := make([]Signer, 0, count)
	for i := uint32(0); i < count; i++ {
		if len(b) < idx+4+SignatureSize {
			return nil, 0, ErrShortMessage
		}
		nodeIdx := binary.LittleEndian.Uint32(b[idx : idx+4])
		idx += 4
		var sig [SignatureSize]byte
		copy(sig[:], b[idx:idx+SignatureSize])
		idx += SignatureSize
		signers = append(signers, Signer{NodeIndex: nodeIdx, Signature: sig})
	}
	return signers, idx, nil
}
