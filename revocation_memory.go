package userauth

import (
	"context"
	"sync"
	"time"
)

// MemoryRevocationStore is a thread-safe in-memory TokenRevoker suitable for
// tests and local development. Swap it for Redis in production.
type MemoryRevocationStore struct {
	mu      sync.Mutex
	records map[string]time.Time

	// Now is the clock used for expiry checks; tests override it.
	Now func() time.Time
}

var _ TokenRevoker = (*MemoryRevocationStore)(nil)

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		records: make(map[string]time.Time),
		Now:     time.Now,
	}
}

func (s *MemoryRevocationStore) IsBlocked(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.records[token]
	if !ok {
		return false, nil
	}

	if !s.Now().Before(expiresAt) {
		delete(s.records, token)
		return false, nil
	}

	return true, nil
}

func (s *MemoryRevocationStore) Block(ctx context.Context, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !expiresAt.After(s.Now()) {
		return nil
	}

	s.records[token] = expiresAt
	s.evictExpiredLocked()
	return nil
}

func (s *MemoryRevocationStore) BlockOnce(ctx context.Context, token string, expiresAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !expiresAt.After(s.Now()) {
		return true, nil
	}

	if current, ok := s.records[token]; ok && current.After(s.Now()) {
		return false, nil
	}

	s.records[token] = expiresAt
	s.evictExpiredLocked()
	return true, nil
}

// Len reports the number of live records, evicting expired ones first.
func (s *MemoryRevocationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpiredLocked()
	return len(s.records)
}

func (s *MemoryRevocationStore) evictExpiredLocked() {
	now := s.Now()
	for token, expiresAt := range s.records {
		if !now.Before(expiresAt) {
			delete(s.records, token)
		}
	}
}
