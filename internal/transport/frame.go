// Package transport implements the length-prefixed TCP framing nodes use
// to exchange wire messages: a 4-byte little-endian length prefix followed
// by that many bytes of payload.
package transport

import (
	"encoding/binary"
	"io"

	"golang.org/x/xerrors"
)

// MaxFrameLength bounds a single frame, guarding against a peer claiming
// an absurd length and exhausting memory on the read side.
const MaxFrameLength = 40_000_000

// ErrFrameTooLarge is returned when a peer's declared frame length exceeds MaxFrameLength.
var ErrFrameTooLarge = xerrors.New("transport: frame exceeds max length")

// WriteFrame writes payload to w prefixed with its little-endian length.
func WriteFrame(w io.Writer, payload []byte) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return xerrors.Errorf("transport: write length: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return xerrors.Errorf("transport: write payload: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame from r.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n > MaxFrameLength {
		return nil, ErrFrameTooLarge
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, xerrors.Errorf("transport: read payload: %w", err)
	}
	return payload, nil
}
