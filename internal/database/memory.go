package database

import (
	"context"
	"sync"

	"nftmarket/walletbridge/internal/models"
)

// MemoryStore is an in-process ConnectionStore. It backs tests and the
// degraded startup path when Postgres is unreachable: the session still
// works, the record just does not survive a restart.
type MemoryStore struct {
	mu      sync.Mutex
	rec     models.ConnectionRecord
	present bool
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// WriteRecord replaces the record
func (s *MemoryStore) WriteRecord(_ context.Context, rec models.ConnectionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = rec
	s.present = true
	return nil
}

// ReadRecord returns the record and whether one exists
func (s *MemoryStore) ReadRecord(_ context.Context) (models.ConnectionRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.present {
		return models.ConnectionRecord{}, false, nil
	}
	return s.rec, true, nil
}

// ClearRecord removes the record
func (s *MemoryStore) ClearRecord(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = models.ConnectionRecord{}
	s.present = false
	return nil
}
