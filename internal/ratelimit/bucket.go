// Package ratelimit implements the byte-budget token bucket every session
// consumes from before a payload is queued for send.
package ratelimit

import "time"

// Bucket is a continuously-refilling token bucket measured in bytes.
// It is not safe for concurrent use by itself; callers that share a Bucket
// across goroutines (Session does) must guard it with their own lock.
type Bucket struct {
	capacity   int64
	tokens     int64
	refillRate int64 // bytes per second
	lastRefill time.Time
}

// NewBucket returns a bucket starting full.
func NewBucket(capacity, refillPerSec int64, now time.Time) *Bucket {
	return &Bucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillPerSec,
		lastRefill: now,
	}
}

// Consume refills the bucket for elapsed time since the last refill, then
// attempts to deduct amount tokens. It returns false, leaving tokens
// unchanged, when the bucket doesn't have enough.
func (b *Bucket) Consume(amount int64, now time.Time) bool {
	b.refill(now)
	if b.tokens < amount {
		return false
	}
	b.tokens -= amount
	return true
}

func (b *Bucket) refill(now time.Time) {
	elapsed := now.Sub(b.lastRefill)
	b.lastRefill = now
	if elapsed <= 0 {
		return
	}
	gained := int64(elapsed.Seconds() * float64(b.refillRate))
	b.tokens += gained
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
}

// Tokens returns the current token count as of the last refill (it does
// not itself advance time); used by tests and metrics snapshots.
func (b *Bucket) Tokens() int64 {
	return b.tokens
}
