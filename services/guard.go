package services

import (
	"sync"
	"time"
)

// CounterStore tracks per-key attempt counts (failed gateway
// signatures, abusive callers). Process-wide but injectable: the
// in-memory store serves a single instance and tests; a shared cache
// can replace it behind the same interface for multi-instance
// deployments.
type CounterStore interface {
	Hit(key string) int64
	Reset(key string)
	Sweep(maxAge time.Duration) int
}

type counter struct {
	count    int64
	lastSeen time.Time
}

type MemoryCounterStore struct {
	mu   sync.Mutex
	hits map[string]*counter
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{hits: make(map[string]*counter)}
}

func (s *MemoryCounterStore) Hit(key string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.hits[key]
	if !ok {
		c = &counter{}
		s.hits[key] = c
	}
	c.count++
	c.lastSeen = time.Now()
	return c.count
}

func (s *MemoryCounterStore) Reset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hits, key)
}

// Sweep drops counters idle longer than maxAge and returns how many
// were removed.
func (s *MemoryCounterStore) Sweep(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for key, c := range s.hits {
		if c.lastSeen.Before(cutoff) {
			delete(s.hits, key)
			removed++
		}
	}
	return removed
}

// Guard is the process-wide counter store, initialized at start and
// swept periodically by the jobs scheduler.
var Guard CounterStore = NewMemoryCounterStore()
