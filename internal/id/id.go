package id

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"sync"
)

// Short generates a short random hex ID (16 characters).
func Short() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Sequence hands out prefixed sequential ids. It is safe for concurrent use.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	next   int64
}

// NewSequence returns a Sequence whose first id is prefix+start.
func NewSequence(prefix string, start int64) *Sequence {
	return &Sequence{prefix: prefix, next: start}
}

// Next returns the next id.
func (s *Sequence) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.next
	s.next++
	return s.prefix + strconv.FormatInt(n, 10)
}

// Observe advances the sequence past id when id carries the sequence's
// prefix and a number at or above the next value. Other ids are ignored.
func (s *Sequence) Observe(id string) {
	if len(id) <= len(s.prefix) || id[:len(s.prefix)] != s.prefix {
		return
	}
	n, err := strconv.ParseInt(id[len(s.prefix):], 10, 64)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n >= s.next {
		s.next = n + 1
	}
}
