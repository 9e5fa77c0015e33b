package ratelimit

import (
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	t.Parallel()
	l := New(Config{})
	defer l.Stop()

	if l.Rate() != DefaultRate {
		t.Errorf("expected default rate %v, got %v", DefaultRate, l.Rate())
	}
	if l.Burst() != DefaultRate {
		t.Errorf("expected burst to default to the rate, got %d", l.Burst())
	}
	if l.cleanupInterval != DefaultCleanupInterval {
		t.Errorf("expected default cleanup interval %v, got %v", DefaultCleanupInterval, l.cleanupInterval)
	}
	if l.entryTTL != DefaultEntryTTL {
		t.Errorf("expected default entry TTL %v, got %v", DefaultEntryTTL, l.entryTTL)
	}
}

func TestLimiter_AllowPerKey(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLimiter(Config{Rate: 1, Burst: 2}, func() time.Time { return now })
	defer l.Stop()

	allowed, remaining, reset := l.Allow("key-a")
	if !allowed || remaining != 1 {
		t.Fatalf("first request: allowed=%v remaining=%d", allowed, remaining)
	}
	if reset != 1 {
		t.Errorf("expected reset 1s, got %d", reset)
	}
	l.Allow("key-a")

	allowed, remaining, retry := l.Allow("key-a")
	if allowed {
		t.Fatal("third request should be limited")
	}
	if remaining != 0 || retry != 1 {
		t.Errorf("expected remaining 0 retry 1, got %d %d", remaining, retry)
	}

	if allowed, _, _ := l.Allow("key-b"); !allowed {
		t.Error("a different key has its own bucket")
	}
	if l.Len() != 2 {
		t.Errorf("expected 2 tracked clients, got %d", l.Len())
	}
}

func TestLimiter_RemoveStaleEntries(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := now
	l := newLimiter(Config{Rate: 5, EntryTTL: time.Minute}, func() time.Time { return clock })
	defer l.Stop()

	l.Allow("old")
	clock = now.Add(2 * time.Minute)
	l.Allow("fresh")

	l.removeStaleEntries()
	if l.Len() != 1 {
		t.Fatalf("expected 1 entry after cleanup, got %d", l.Len())
	}
	if _, ok := l.buckets["fresh"]; !ok {
		t.Error("expected the recently used bucket to survive")
	}
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	t.Parallel()
	l := New(Config{Rate: 1})
	l.Stop()
	l.Stop()
}

func TestCeilSeconds(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   time.Duration
		want int64
	}{
		{0, 0},
		{-time.Second, 0},
		{time.Millisecond, 1},
		{time.Second, 1},
		{1500 * time.Millisecond, 2},
	}
	for _, tt := range tests {
		if got := ceilSeconds(tt.in); got != tt.want {
			t.Errorf("ceilSeconds(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
