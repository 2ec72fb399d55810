package ipc

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/frostdev-ops/kbd-backlight-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte(`{"type":"get_status"}`)

	require.NoError(t, WriteFrame(&buf, payload))

	// Prefix carries the payload length in big-endian order.
	assert.Equal(t, uint32(len(payload)), binary.BigEndian.Uint32(buf.Bytes()[:4]))

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReadFrameRejectsZeroLength(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0, 0, 0, 0})

	_, err := ReadFrame(buf)
	require.Error(t, err)
	assert.True(t, errors.IsProtocolError(err))
}

func TestReadFrameRejectsOversizedAnnouncement(t *testing.T) {
	// Announce a 2,000,000 byte body but provide none. The frame must be
	// rejected from the prefix alone, without any body read.
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], 2_000_000)
	buf := bytes.NewBuffer(prefix[:])

	_, err := ReadFrame(buf)
	require.Error(t, err)
	assert.True(t, errors.IsProtocolError(err))
	assert.Zero(t, buf.Len(), "prefix should be consumed but no body read attempted")
}

func TestWriteFrameRejectsEmptyPayload(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFrame(&buf, nil)
	require.Error(t, err)
	assert.True(t, errors.IsProtocolError(err))
	assert.Zero(t, buf.Len())
}

func TestWriteFrameRejectsOversizedPayload(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFrame(&buf, make([]byte, MaxMessageSize+1))
	require.Error(t, err)
	assert.True(t, errors.IsProtocolError(err))
	assert.Zero(t, buf.Len())
}

func TestMaxSizePayloadAccepted(t *testing.T) {
	var buf bytes.Buffer
	payload := make([]byte, MaxMessageSize)
	payload[0] = 'x'

	require.NoError(t, WriteFrame(&buf, payload))
	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, len(payload), len(got))
}
