// Package ratelimit provides token-bucket rate limiting for the mock CRM
// service. Each client, identified by its API key or address, gets its own
// bucket, the way hosted CRM APIs meter each integration separately.
package ratelimit

import (
	"sync"
	"time"
)

// Bucket is a single token bucket rate limiter.
// It is safe for concurrent use.
type Bucket struct {
	tokens     float64
	maxTokens  float64
	rate       float64 // tokens per second
	lastUpdate time.Time
	mu         sync.Mutex
}

// NewBucket creates a new token bucket with the given rate (tokens/second)
// and burst (maximum tokens). The bucket starts full.
func NewBucket(rate float64, burst int) *Bucket {
	return newBucketAt(rate, burst, time.Now())
}

func newBucketAt(rate float64, burst int, now time.Time) *Bucket {
	maxTokens := float64(burst)
	if maxTokens <= 0 {
		maxTokens = rate
	}
	return &Bucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		rate:       rate,
		lastUpdate: now,
	}
}

// refill adds tokens based on elapsed time. Caller must hold b.mu.
func (b *Bucket) refill(now time.Time) {
	elapsed := now.Sub(b.lastUpdate).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * b.rate
		if b.tokens > b.maxTokens {
			b.tokens = b.maxTokens
		}
	}
	b.lastUpdate = now
}

// Allow tries to consume one token. Returns true if a token was available.
func (b *Bucket) Allow() bool {
	ok, _, _ := b.take(time.Now())
	return ok
}

// take consumes one token at now. It returns the whole tokens left and,
// when refused, how long until the next token is available.
func (b *Bucket) take(now time.Time) (allowed bool, remaining int, wait time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill(now)
	if b.tokens >= 1 {
		b.tokens--
		return true, int(b.tokens), 0
	}
	return false, 0, time.Duration((1 - b.tokens) / b.rate * float64(time.Second))
}

// untilFull returns how long the bucket needs to refill completely.
func (b *Bucket) untilFull() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return time.Duration((b.maxTokens - b.tokens) / b.rate * float64(time.Second))
}

// idleSince reports whether the bucket was last used before cutoff.
func (b *Bucket) idleSince(cutoff time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastUpdate.Before(cutoff)
}

// Available returns the current number of tokens (including time-based refill).
func (b *Bucket) Available() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := time.Since(b.lastUpdate).Seconds()
	tokens := b.tokens + elapsed*b.rate
	if tokens > b.maxTokens {
		tokens = b.maxTokens
	}
	return tokens
}

// Reset refills the bucket to its maximum capacity.
func (b *Bucket) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = b.maxTokens
	b.lastUpdate = time.Now()
}
