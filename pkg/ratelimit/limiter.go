package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Default limiter values.
const (
	DefaultRate            = 10
	DefaultCleanupInterval = 1 * time.Minute
	DefaultEntryTTL        = 1 * time.Minute
)

// Config configures a Limiter.
type Config struct {
	Rate            float64       // tokens per second
	Burst           int           // maximum bucket capacity
	CleanupInterval time.Duration // how often idle buckets are dropped
	EntryTTL        time.Duration // how long a bucket lives without activity
}

// Limiter keeps one token bucket per client key.
type Limiter struct {
	rate            float64
	burst           int
	buckets         map[string]*Bucket
	mu              sync.Mutex
	now             func() time.Time
	stopOnce        sync.Once
	stopCh          chan struct{}
	stoppedCh       chan struct{}
	cleanupInterval time.Duration
	entryTTL        time.Duration
}

// New creates a limiter with the given configuration. It starts a background
// goroutine that drops idle buckets; call Stop to end it.
func New(cfg Config) *Limiter {
	return newLimiter(cfg, time.Now)
}

func newLimiter(cfg Config, now func() time.Time) *Limiter {
	rate := cfg.Rate
	if rate <= 0 {
		rate = DefaultRate
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(math.Ceil(rate))
	}
	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	entryTTL := cfg.EntryTTL
	if entryTTL <= 0 {
		entryTTL = DefaultEntryTTL
	}

	l := &Limiter{
		rate:            rate,
		burst:           burst,
		buckets:         make(map[string]*Bucket),
		now:             now,
		stopCh:          make(chan struct{}),
		stoppedCh:       make(chan struct{}),
		cleanupInterval: cleanupInterval,
		entryTTL:        entryTTL,
	}
	go l.cleanup()
	return l
}

// Burst returns the burst size (maximum bucket capacity).
func (l *Limiter) Burst() int {
	return l.burst
}

// Rate returns the refill rate in tokens per second.
func (l *Limiter) Rate() float64 {
	return l.rate
}

// Allow consumes one token from key's bucket.
// Returns (allowed, remaining tokens, reset/retry-after time in seconds):
// when allowed, the seconds until the bucket is full again; otherwise the
// seconds until the next token.
func (l *Limiter) Allow(key string) (allowed bool, remaining int, retryAfterSec int64) {
	now := l.now()

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = newBucketAt(l.rate, l.burst, now)
		l.buckets[key] = b
	}
	l.mu.Unlock()

	allowed, remaining, wait := b.take(now)
	if !allowed {
		return false, 0, ceilSeconds(wait)
	}
	return true, remaining, ceilSeconds(b.untilFull())
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	s := int64(math.Ceil(d.Seconds()))
	if s < 1 {
		s = 1
	}
	return s
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
	})
	<-l.stoppedCh
}

// cleanup periodically removes stale entries.
func (l *Limiter) cleanup() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()
	defer close(l.stoppedCh)

	for {
		select {
		case <-ticker.C:
			l.removeStaleEntries()
		case <-l.stopCh:
			return
		}
	}
}

// removeStaleEntries removes buckets that haven't been used recently.
func (l *Limiter) removeStaleEntries() {
	cutoff := l.now().Add(-l.entryTTL)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.idleSince(cutoff) {
			delete(l.buckets, key)
		}
	}
}
