package memory

import (
	"context"
	"sync"

	"github.com/wolfeidau/taskscope/internal/models"
	"github.com/wolfeidau/taskscope/internal/store"
)

// AuditStore implements store.AuditStore as an append-only slice.
// This implementation is for testing only - data is lost on restart.
type AuditStore struct {
	mu sync.RWMutex

	entries []*models.AuditEntry
}

// NewAuditStore creates a new in-memory audit store.
func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

// Record appends an entry.
func (s *AuditStore) Record(ctx context.Context, entry *models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *entry
	s.entries = append(s.entries, &clone)

	return nil
}

// List returns entries newest first.
func (s *AuditStore) List(ctx context.Context, opts store.ListAuditOptions) ([]*models.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := opts.EffectiveLimit()
	result := make([]*models.AuditEntry, 0, min(limit, len(s.entries)))
	for i := len(s.entries) - 1; i >= 0 && len(result) < limit; i-- {
		clone := *s.entries[i]
		result = append(result, &clone)
	}

	return result, nil
}
