package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/taskscope/internal/models"
	"github.com/wolfeidau/taskscope/internal/store"
)

const taskColumns = `task_id, org_id, created_by, title, description, category, status, priority, created_at, updated_at`

// TaskStore implements store.TaskStore using PostgreSQL.
type TaskStore struct {
	pool *pgxpool.Pool
}

// NewTaskStore creates a new PostgreSQL-backed task store.
func NewTaskStore(pool *pgxpool.Pool) *TaskStore {
	return &TaskStore{pool: pool}
}

// Create stores a new task.
func (s *TaskStore) Create(ctx context.Context, task *models.Task) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		task.TaskID,
		task.OrgID,
		task.CreatedBy,
		task.Title,
		task.Description,
		task.Category,
		task.Status,
		task.Priority,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		mapped := mapPostgresError(err)
		if errors.Is(mapped, store.ErrTaskAlreadyExists) || errors.Is(mapped, store.ErrOrganizationNotFound) {
			return mapped
		}
		return fmt.Errorf("failed to create task: %w", mapped)
	}

	log.Debug().
		Str("task_id", task.TaskID.String()).
		Str("org_id", task.OrgID.String()).
		Msg("Created task")

	return nil
}

// Get retrieves a task by ID.
func (s *TaskStore) Get(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	task, err := scanTask(s.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE task_id = $1`, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", mapPostgresError(err))
	}
	return task, nil
}

// Update replaces the descriptive fields of a task and bumps updated_at.
func (s *TaskStore) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()

	result, err := s.pool.Exec(ctx, `
		UPDATE tasks SET
			title = $2,
			description = $3,
			category = $4,
			status = $5,
			priority = $6,
			updated_at = $7
		WHERE task_id = $1
	`,
		task.TaskID,
		task.Title,
		task.Description,
		task.Category,
		task.Status,
		task.Priority,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrTaskNotFound
	}

	return nil
}

// Delete removes a task by ID.
func (s *TaskStore) Delete(ctx context.Context, taskID uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE task_id = $1`, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrTaskNotFound
	}

	return nil
}

// List returns tasks in any of q.OrgIDs, optionally restricted to one
// creator, newest first.
func (s *TaskStore) List(ctx context.Context, q store.TaskQuery) ([]*models.Task, error) {
	tasks := make([]*models.Task, 0)
	if len(q.OrgIDs) == 0 {
		return tasks, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE org_id = ANY($1)
		  AND ($2::uuid IS NULL OR created_by = $2)
		ORDER BY created_at DESC, task_id DESC
	`, q.OrgIDs, q.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", mapPostgresError(err))
	}
	defer rows.Close()

	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var task models.Task
	err := row.Scan(
		&task.TaskID,
		&task.OrgID,
		&task.CreatedBy,
		&task.Title,
		&task.Description,
		&task.Category,
		&task.Status,
		&task.Priority,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}
