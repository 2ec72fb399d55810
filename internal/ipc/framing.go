package ipc

import (
	"encoding/binary"
	"io"

	"github.com/frostdev-ops/kbd-backlight-go/pkg/errors"
)

// MaxMessageSize bounds a single framed payload in both directions.
const MaxMessageSize = 1_000_000

// WriteFrame writes a 4-byte big-endian length prefix followed by the
// payload.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) == 0 {
		return errors.New(errors.KindProtocol, "refusing to send empty message")
	}
	if len(payload) > MaxMessageSize {
		return errors.Newf(errors.KindProtocol,
			"message size %d exceeds limit %d", len(payload), MaxMessageSize)
	}

	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(payload)))
	if _, err := w.Write(prefix[:]); err != nil {
		return errors.Newf(errors.KindProtocol, "failed to write length prefix: %v", err)
	}
	if _, err := w.Write(payload); err != nil {
		return errors.Newf(errors.KindProtocol, "failed to write payload: %v", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed payload. An announced length of
// zero or beyond MaxMessageSize is rejected before any body byte is
// read.
func ReadFrame(r io.Reader) ([]byte, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, errors.Newf(errors.KindProtocol, "failed to read length prefix: %v", err)
	}

	length := binary.BigEndian.Uint32(prefix[:])
	if length == 0 {
		return nil, errors.New(errors.KindProtocol, "received empty message")
	}
	if length > MaxMessageSize {
		return nil, errors.Newf(errors.KindProtocol,
			"announced message size %d exceeds limit %d", length, MaxMessageSize)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, errors.Newf(errors.KindProtocol, "failed to read payload: %v", err)
	}
	return payload, nil
}
