package session

import "sync"

// TokenStore is the single authoritative slot for the locally held token.
// In a browser the cookie plays this role; Go clients and tests use the
// in-memory implementation. Swaps must be atomic so a refresh mid-request
// never exposes a half-written value.
type TokenStore interface {
	Load() (string, bool)
	Store(raw string)
	Clear()
}

// MemoryStore is a mutex-guarded TokenStore.
type MemoryStore struct {
	mu  sync.Mutex
	raw string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the stored token, if any.
func (s *MemoryStore) Load() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raw, s.raw != ""
}

// Store replaces the stored token.
func (s *MemoryStore) Store(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = raw
}

// Clear removes the stored token. Clearing cannot fail.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = ""
}
