package store

import (
	"context"

	"github.com/wolfeidau/taskscope/internal/models"
)

// DefaultAuditListLimit is used when ListAuditOptions.Limit is zero.
const DefaultAuditListLimit = 100

// AuditStore persists audit entries.
type AuditStore interface {
	// Record appends an entry to the audit log.
	Record(ctx context.Context, entry *models.AuditEntry) error

	// List returns entries newest first.
	List(ctx context.Context, opts ListAuditOptions) ([]*models.AuditEntry, error)
}

// ListAuditOptions specifies filters for listing audit entries
type ListAuditOptions struct {
	Limit int // Max results (0 = DefaultAuditListLimit)
}

// EffectiveLimit returns the limit to apply.
func (o ListAuditOptions) EffectiveLimit() int {
	if o.Limit <= 0 {
		return DefaultAuditListLimit
	}
	return o.Limit
}
