package store

import (
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"
	"github.com/wolfeidau/taskscope/internal/models"
)

// Sentinel errors for task store operations
var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrTaskAlreadyExists = errors.New("task already exists")
)

// TaskStore defines the interface for task storage operations.
type TaskStore interface {
	// Create stores a new task.
	Create(ctx context.Context, task *models.Task) error

	// Get retrieves a task by ID.
	// Returns ErrTaskNotFound if the task doesn't exist.
	Get(ctx context.Context, taskID uuid.UUID) (*models.Task, error)

	// Update replaces the descriptive fields of an existing task.
	// OrgID, CreatedBy and CreatedAt are never changed.
	Update(ctx context.Context, task *models.Task) error

	// Delete removes a task by ID.
	Delete(ctx context.Context, taskID uuid.UUID) error

	// List returns tasks matching the query, newest first.
	List(ctx context.Context, q TaskQuery) ([]*models.Task, error)
}

// TaskQuery restricts a task listing.
type TaskQuery struct {
	OrgIDs    []uuid.UUID // tasks must belong to one of these (empty matches nothing)
	CreatedBy *uuid.UUID  // optional creator restriction
}

// Matches reports whether the task satisfies the query.
func (q TaskQuery) Matches(task *models.Task) bool {
	if !slices.Contains(q.OrgIDs, task.OrgID) {
		return false
	}
	if q.CreatedBy != nil && task.CreatedBy != *q.CreatedBy {
		return false
	}
	return true
}
