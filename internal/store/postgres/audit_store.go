package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/taskscope/internal/models"
	"github.com/wolfeidau/taskscope/internal/store"
)

// AuditStore implements store.AuditStore using PostgreSQL.
type AuditStore struct {
	pool *pgxpool.Pool
}

// NewAuditStore creates a new PostgreSQL-backed audit store.
func NewAuditStore(pool *pgxpool.Pool) *AuditStore {
	return &AuditStore{pool: pool}
}

// Record appends an entry to the audit log.
func (s *AuditStore) Record(ctx context.Context, entry *models.AuditEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_log (entry_id, actor_id, action, resource_type, resource_id, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		entry.EntryID,
		entry.ActorID,
		string(entry.Action),
		entry.ResourceType,
		entry.ResourceID,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", mapPostgresError(err))
	}

	return nil
}

// List returns the most recent entries first.
func (s *AuditStore) List(ctx context.Context, opts store.ListAuditOptions) ([]*models.AuditEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT entry_id, actor_id, action, resource_type, resource_id, timestamp
		FROM audit_log
		ORDER BY timestamp DESC, entry_id DESC
		LIMIT $1
	`, opts.EffectiveLimit())
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", mapPostgresError(err))
	}
	defer rows.Close()

	entries := make([]*models.AuditEntry, 0)
	for rows.Next() {
		var (
			entry  models.AuditEntry
			action string
		)
		err := rows.Scan(
			&entry.EntryID,
			&entry.ActorID,
			&action,
			&entry.ResourceType,
			&entry.ResourceID,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entry.Action = models.AuditAction(action)
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit entries: %w", err)
	}

	return entries, nil
}
