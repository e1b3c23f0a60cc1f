package wire

import (
	"encoding/binary"
	"fmt"
)

// ErrTrailingBytes is returned by a Decode when the payload has bytes left
// over after every field has been read; the spec requires decoders to
// consume the whole payload exactly.
var ErrTrailingBytes = fmt.Errorf("wire: trailing bytes after decode")

// writer accumulates an encoded payload.
type writer struct {
	buf []byte
}

func newWriter() *writer { return &writer{} }

func (w *writer) bytes() []byte { return w.buf }

func (w *writer) u8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *writer) bool(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

func (w *writer) u16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) u32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) u64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// str writes a u16-length-prefixed UTF-8 string, truncating to 65535 bytes
// per §3 if the caller passes something longer.
func (w *writer) str(v string) {
	b := []byte(v)
	if len(b) > 65535 {
		b = b[:65535]
	}
	w.u16(uint16(len(b)))
	w.buf = append(w.buf, b...)
}

// reader consumes an encoded payload field by field, tracking position so
// Decode can detect trailing bytes.
type reader struct {
	buf []byte
	pos int
}

func newReader(payload []byte) *reader { return &reader{buf: payload} }

func (r *reader) remaining() int { return len(r.buf) - r.pos }

func (r *reader) u8() (uint8, error) {
	if r.remaining() < 1 {
		return 0, fmt.Errorf("wire: short read for u8")
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *reader) boolean() (bool, error) {
	v, err := r.u8()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func (r *reader) u16() (uint16, error) {
	if r.remaining() < 2 {
		return 0, fmt.Errorf("wire: short read for u16")
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos : r.pos+2])
	r.pos += 2
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, fmt.Errorf("wire: short read for u32")
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *reader) u64() (uint64, error) {
	if r.remaining() < 8 {
		return 0, fmt.Errorf("wire: short read for u64")
	}
	v := binary.BigEndian.Uint64(r.buf[r.pos : r.pos+8])
	r.pos += 8
	return v, nil
}

func (r *reader) str() (string, error) {
	n, err := r.u16()
	if err != nil {
		return "", err
	}
	if r.remaining() < int(n) {
		return "", fmt.Errorf("wire: short read for string of length %d", n)
	}
	v := string(r.buf[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return v, nil
}

// finish returns ErrTrailingBytes if the reader hasn't consumed the whole
// payload, enforcing the "exactly the whole payload" decode rule.
func (r *reader) finish() error {
	if r.remaining() != 0 {
		return ErrTrailingBytes
	}
	return nil
}
