package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/taskscope/internal/models"
	"github.com/wolfeidau/taskscope/internal/store"
)

// AuditSink records an applied mutation.
type AuditSink interface {
	Record(ctx context.Context, actorID uuid.UUID, action models.AuditAction, resourceID uuid.UUID) error
}

// StoreAuditSink writes task audit entries to an AuditStore.
type StoreAuditSink struct {
	audit store.AuditStore
	now   func() time.Time
}

// NewStoreAuditSink creates an AuditSink backed by audit.
func NewStoreAuditSink(audit store.AuditStore) *StoreAuditSink {
	return &StoreAuditSink{audit: audit, now: time.Now}
}

// Record appends a task audit entry.
func (s *StoreAuditSink) Record(ctx context.Context, actorID uuid.UUID, action models.AuditAction, resourceID uuid.UUID) error {
	entryID, err := uuid.NewV7()
	if err != nil {
		return err
	}

	return s.audit.Record(ctx, &models.AuditEntry{
		EntryID:      entryID,
		ActorID:      actorID,
		Action:       action,
		ResourceType: models.ResourceTypeTask,
		ResourceID:   resourceID,
		Timestamp:    s.now().UTC(),
	})
}
