// Package wire implements the core's binary framing and packet payload
// encodings: an 8-byte length-prefixed header, a streaming decoder that
// accumulates partial reads into whole frames, and per-packet-type payload
// records with their own Encode/Decode.
package wire

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed byte length of a frame header: u32 length, u16
// type, u16 version.
const HeaderSize = 8

// MaxFrameLength bounds a single frame's payload; the transport is
// expected to clamp well below this, but the codec itself only refuses to
// decode anything larger.
const MaxFrameLength = 1 << 24

// Header is the decoded 8-byte frame header.
type Header struct {
	Length  uint32
	Type    uint16
	Version uint16
}

// Encode builds a complete frame: header followed by payload.
func Encode(packetType, version uint16, payload []byte) []byte {
	buf := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(payload)))
	binary.BigEndian.PutUint16(buf[4:6], packetType)
	binary.BigEndian.PutUint16(buf[6:8], version)
	copy(buf[HeaderSize:], payload)
	return buf
}

// FrameDecoder buffers incoming bytes and yields complete frames as they
// become available, so a transport can feed it arbitrarily-sized reads
// (including reads that split a header or a payload across calls).
type FrameDecoder struct {
	buf []byte
}

// Append feeds newly read bytes into the decoder's buffer.
func (d *FrameDecoder) Append(data []byte) {
	d.buf = append(d.buf, data...)
}

// NextFrame extracts the next complete frame from the buffer, if one is
// available. It returns ok=false (with a nil error) when more bytes are
// needed, and a non-nil error only when the buffered header claims a
// payload length that cannot be a legitimate frame.
func (d *FrameDecoder) NextFrame() (Header, []byte, bool, error) {
	var hdr Header
	if len(d.buf) < HeaderSize {
		return hdr, nil, false, nil
	}

	length := binary.BigEndian.Uint32(d.buf[0:4])
	if length > MaxFrameLength {
		return hdr, nil, false, fmt.Errorf("wire: frame length %d exceeds max %d", length, MaxFrameLength)
	}
	hdr.Length = length
	hdr.Type = binary.BigEndian.Uint16(d.buf[4:6])
	hdr.Version = binary.BigEndian.Uint16(d.buf[6:8])

	total := HeaderSize + int(length)
	if len(d.buf) < total {
		return hdr, nil, false, nil
	}

	payload := make([]byte, length)
	copy(payload, d.buf[HeaderSize:total])

	remaining := len(d.buf) - total
	copy(d.buf, d.buf[total:])
	d.buf = d.buf[:remaining]

	return hdr, payload, true, nil
}

// Buffered reports how many unconsumed bytes the decoder currently holds.
func (d *FrameDecoder) Buffered() int {
	return len(d.buf)
}
