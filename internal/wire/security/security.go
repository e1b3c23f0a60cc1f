// Package security implements the optional per-frame signature envelope:
// a wrap/unwrap pair that prefixes a payload with {seq, nonce, signature}
// for integrity-checked framing. No handler in the dispatcher requires this
// envelope and no code outside this package calls it; Session carries no
// signing key.
package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed size of {seq:u32, nonce:u64, signature:16 bytes}.
const HeaderSize = 4 + 8 + 16

// Header is the decoded security envelope preceding the inner payload.
type Header struct {
	Seq       uint32
	Nonce     uint64
	Signature [16]byte
}

// ComputeSignature derives a 16-byte tag over seq, nonce, and payload using
// HMAC-SHA256 truncated to 16 bytes, keyed by key.
func ComputeSignature(key []byte, seq uint32, nonce uint64, payload []byte) [16]byte {
	mac := hmac.New(sha256.New, key)

	var seqBuf [4]byte
	binary.BigEndian.PutUint32(seqBuf[:], seq)
	mac.Write(seqBuf[:])

	var nonceBuf [8]byte
	binary.BigEndian.PutUint64(nonceBuf[:], nonce)
	mac.Write(nonceBuf[:])

	mac.Write(payload)

	sum := mac.Sum(nil)
	var out [16]byte
	copy(out[:], sum[:16])
	return out
}

// VerifySignature reports whether header.Signature matches the payload
// under key, using a constant-time comparison.
func VerifySignature(key []byte, header Header, payload []byte) bool {
	expected := ComputeSignature(key, header.Seq, header.Nonce, payload)
	return hmac.Equal(expected[:], header.Signature[:])
}

// WrapSecurePayload prepends the security header to payload, computing its
// signature under key.
func WrapSecurePayload(seq uint32, nonce uint64, key, payload []byte) []byte {
	sig := ComputeSignature(key, seq, nonce, payload)

	out := make([]byte, 0, HeaderSize+len(payload))
	var seqBuf [4]byte
	binary.BigEndian.PutUint32(seqBuf[:], seq)
	out = append(out, seqBuf[:]...)

	var nonceBuf [8]byte
	binary.BigEndian.PutUint64(nonceBuf[:], nonce)
	out = append(out, nonceBuf[:]...)

	out = append(out, sig[:]...)
	out = append(out, payload...)
	return out
}

// UnwrapSecurePayload splits a wrapped payload into its header and inner
// payload without verifying the signature; callers that need integrity
// checking should follow with VerifySignature.
func UnwrapSecurePayload(wrapped []byte) (Header, []byte, error) {
	var hdr Header
	if len(wrapped) < HeaderSize {
		return hdr, nil, fmt.Errorf("security: wrapped payload shorter than header (%d bytes)", len(wrapped))
	}
	hdr.Seq = binary.BigEndian.Uint32(wrapped[0:4])
	hdr.Nonce = binary.BigEndian.Uint64(wrapped[4:12])
	copy(hdr.Signature[:], wrapped[12:28])
	inner := make([]byte, len(wrapped)-HeaderSize)
	copy(inner, wrapped[HeaderSize:])
	return hdr, inner, nil
}
