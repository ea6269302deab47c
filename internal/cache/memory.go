package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	body     string
	storedAt time.Time
}

// MemoryStore keeps cached responses in a process-local map. It is the
// backend of choice for tests and for callers who want caching without
// touching the filesystem.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryTTL overrides the freshness window.
func WithMemoryTTL(ttl time.Duration) MemoryOption {
	return func(s *MemoryStore) { s.ttl = ttl }
}

// WithMemoryClock injects the time source.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the cached body for url, or ok=false on a miss. Stale
// entries stay in the map; only Flush and Invalidate remove them.
func (s *MemoryStore) Get(_ context.Context, url string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[SanitizeKey(url)]
	if !ok {
		return "", false
	}
	if s.now().Sub(entry.storedAt) > s.ttl {
		return "", false
	}
	return entry.body, true
}

// Put stores body under url. Empty bodies are skipped.
func (s *MemoryStore) Put(_ context.Context, url, body string) {
	if body == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[SanitizeKey(url)] = memoryEntry{body: body, storedAt: s.now()}
}

// Invalidate drops the entry for url.
func (s *MemoryStore) Invalidate(_ context.Context, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, SanitizeKey(url))
}

// Flush drops every entry.
func (s *MemoryStore) Flush(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]memoryEntry)
	return nil
}

// Count returns the number of entries, fresh or stale.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
