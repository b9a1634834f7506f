package models

import (
	"time"

	"github.com/google/uuid"
)

// Default descriptive values applied when a task is created without them.
const (
	DefaultTaskCategory = "Work"
	DefaultTaskStatus   = "Todo"
	DefaultTaskPriority = "Medium"
)

// Task is a unit of work owned by an organization.
// OrgID and CreatedBy are fixed at creation and drive authorization; the
// remaining fields are descriptive.
type Task struct {
	TaskID      uuid.UUID `json:"id"`
	OrgID       uuid.UUID `json:"organization_id"`
	CreatedBy   uuid.UUID `json:"created_by"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
