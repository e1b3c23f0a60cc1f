package ids

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewTraceID returns a 128-bit random id rendered as 32 lowercase hex
// characters, matching the trace_id format used in every structured log
// line and carried on Session for session_trace_id/request_trace_id.
func NewTraceID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing means the platform RNG is broken; fall back
		// to the snowflake generator rather than emitting an empty trace id.
		return fmt.Sprintf("%032x", uint64(Generate()))
	}
	return hex.EncodeToString(b[:])
}
