package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/taskscope/internal/models"
	"github.com/wolfeidau/taskscope/internal/store"
)

// TaskStore implements store.TaskStore using in-memory storage.
// This implementation is for testing only - data is lost on restart.
type TaskStore struct {
	mu sync.RWMutex

	tasks map[uuid.UUID]*models.Task // task_id -> Task
	orgs  *OrganizationStore
}

// NewTaskStore creates a new in-memory task store. When orgs is non-nil, tasks
// must reference an existing organization.
func NewTaskStore(orgs *OrganizationStore) *TaskStore {
	return &TaskStore{
		tasks: make(map[uuid.UUID]*models.Task),
		orgs:  orgs,
	}
}

// Create stores a new task.
func (s *TaskStore) Create(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.TaskID]; exists {
		return store.ErrTaskAlreadyExists
	}

	if s.orgs != nil && !s.orgs.exists(task.OrgID) {
		return fmt.Errorf("%w: %s", store.ErrOrganizationNotFound, task.OrgID)
	}

	clone := *task
	s.tasks[task.TaskID] = &clone

	return nil
}

// Get retrieves a task by ID.
func (s *TaskStore) Get(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return nil, store.ErrTaskNotFound
	}

	clone := *task
	return &clone, nil
}

// Update replaces the descriptive fields of an existing task.
func (s *TaskStore) Update(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.tasks[task.TaskID]
	if !exists {
		return store.ErrTaskNotFound
	}

	task.UpdatedAt = time.Now()

	updated := *existing
	updated.Title = task.Title
	updated.Description = task.Description
	updated.Category = task.Category
	updated.Status = task.Status
	updated.Priority = task.Priority
	updated.UpdatedAt = task.UpdatedAt
	s.tasks[task.TaskID] = &updated

	return nil
}

// Delete removes a task by ID.
func (s *TaskStore) Delete(ctx context.Context, taskID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[taskID]; !exists {
		return store.ErrTaskNotFound
	}

	delete(s.tasks, taskID)

	return nil
}

// List returns tasks matching the query, newest first.
func (s *TaskStore) List(ctx context.Context, q store.TaskQuery) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Task, 0)
	for _, task := range s.tasks {
		if q.Matches(task) {
			clone := *task
			result = append(result, &clone)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].TaskID.String() > result[j].TaskID.String()
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}
