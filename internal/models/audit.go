package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction is the kind of mutation recorded in the audit log.
type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
)

// ResourceTypeTask is the only resource type currently audited.
const ResourceTypeTask = "task"

// AuditEntry records a mutation applied by a user.
type AuditEntry struct {
	EntryID      uuid.UUID   `json:"id"`
	ActorID      uuid.UUID   `json:"user_id"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   uuid.UUID   `json:"resource_id"`
	Timestamp    time.Time   `json:"timestamp"`
}
