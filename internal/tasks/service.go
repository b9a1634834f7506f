// Package tasks implements the task API operations on top of the
// authorization core: every read and mutation is checked by the
// AccessController, and applied mutations are written to the audit log.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/taskscope/internal/auth"
	"github.com/wolfeidau/taskscope/internal/models"
	"github.com/wolfeidau/taskscope/internal/store"
	"github.com/wolfeidau/taskscope/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "github.com/wolfeidau/taskscope/internal/tasks"

	maxTitleLength = 255
)

// ErrInvalidTask is returned when task input fails validation.
var ErrInvalidTask = errors.New("invalid task")

// CreateInput describes a new task.
type CreateInput struct {
	// OrgID is optional; when set it must equal the caller's organization.
	OrgID       *uuid.UUID `json:"organization_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
}

// UpdateInput carries the descriptive fields to change. Nil fields are left as is.
type UpdateInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
}

// Service implements the task operations.
type Service struct {
	tasks   store.TaskStore
	audit   store.AuditStore
	sink    AuditSink
	access  *auth.AccessController
	metrics *telemetry.Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

// NewService creates a task service. Audit entries are written to stores.Audit.
func NewService(stores store.Stores, access *auth.AccessController) *Service {
	return &Service{
		tasks:   stores.Tasks,
		audit:   stores.Audit,
		sink:    NewStoreAuditSink(stores.Audit),
		access:  access,
		metrics: telemetry.GetMetrics(),
		tracer:  otel.Tracer(tracerName),
		now:     time.Now,
	}
}

// WithAuditSink replaces the sink that applied mutations are recorded to.
func (s *Service) WithAuditSink(sink AuditSink) *Service {
	s.sink = sink
	return s
}

// List returns every task the caller may read.
func (s *Service) List(ctx context.Context, caller auth.Caller) (result []*models.Task, err error) {
	ctx, span := s.startSpan(ctx, "tasks.List", caller)
	defer func() { endSpan(span, err) }()

	q, err := s.access.TaskScope(ctx, caller)
	if err != nil {
		s.metrics.AuthzErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("failed to resolve task scope: %w", err)
	}

	result, err = s.tasks.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	s.metrics.TasksListed.Record(ctx, int64(len(result)))
	span.SetAttributes(attribute.Int("tasks.count", len(result)))

	return result, nil
}

// Get returns a single task. A missing task is reported as store.ErrTaskNotFound
// before any authorization check runs.
func (s *Service) Get(ctx context.Context, caller auth.Caller, taskID uuid.UUID) (task *models.Task, err error) {
	ctx, span := s.startSpan(ctx, "tasks.Get", caller, attribute.String("task.id", taskID.String()))
	defer func() { endSpan(span, err) }()

	task, err = s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err = s.authorize(ctx, auth.ActionReadTask, caller, task); err != nil {
		return nil, err
	}

	return task, nil
}

// Create stores a new task in the caller's organization.
func (s *Service) Create(ctx context.Context, caller auth.Caller, input CreateInput) (task *models.Task, err error) {
	ctx, span := s.startSpan(ctx, "tasks.Create", caller)
	defer func() { endSpan(span, err) }()

	if input.OrgID != nil && *input.OrgID != caller.OrgID {
		s.metrics.RecordDecision(ctx, string(auth.ActionCreateTask), caller.Role.String(), false)
		return nil, fmt.Errorf("%w: cannot create task in another organization", auth.ErrPermissionDenied)
	}

	if err = s.authorize(ctx, auth.ActionCreateTask, caller, nil); err != nil {
		return nil, err
	}

	title, err := validateTitle(input.Title)
	if err != nil {
		return nil, err
	}

	taskID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate task id: %w", err)
	}

	now := s.now().UTC()
	task = &models.Task{
		TaskID:      taskID,
		OrgID:       caller.OrgID,
		CreatedBy:   caller.ID,
		Title:       title,
		Description: input.Description,
		Category:    withDefault(input.Category, models.DefaultTaskCategory),
		Status:      withDefault(input.Status, models.DefaultTaskStatus),
		Priority:    withDefault(input.Priority, models.DefaultTaskPriority),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err = s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.recordMutation(ctx, caller, models.AuditActionCreate, task.TaskID)

	return task, nil
}

// Update changes the descriptive fields of a task. The owning organization
// and creator never change.
func (s *Service) Update(ctx context.Context, caller auth.Caller, taskID uuid.UUID, input UpdateInput) (task *models.Task, err error) {
	ctx, span := s.startSpan(ctx, "tasks.Update", caller, attribute.String("task.id", taskID.String()))
	defer func() { endSpan(span, err) }()

	task, err = s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err = s.authorize(ctx, auth.ActionUpdateTask, caller, task); err != nil {
		return nil, err
	}

	if input.Title != nil {
		title, err := validateTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Category != nil {
		task.Category = withDefault(*input.Category, models.DefaultTaskCategory)
	}
	if input.Status != nil {
		task.Status = withDefault(*input.Status, models.DefaultTaskStatus)
	}
	if input.Priority != nil {
		task.Priority = withDefault(*input.Priority, models.DefaultTaskPriority)
	}

	if err = s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.recordMutation(ctx, caller, models.AuditActionUpdate, task.TaskID)

	return task, nil
}

// Delete removes a task. Viewers can never delete.
func (s *Service) Delete(ctx context.Context, caller auth.Caller, taskID uuid.UUID) (err error) {
	ctx, span := s.startSpan(ctx, "tasks.Delete", caller, attribute.String("task.id", taskID.String()))
	defer func() { endSpan(span, err) }()

	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return err
	}

	if err = s.authorize(ctx, auth.ActionDeleteTask, caller, task); err != nil {
		return err
	}

	if err = s.tasks.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.recordMutation(ctx, caller, models.AuditActionDelete, taskID)

	return nil
}

// AuditLog returns the most recent audit entries to admins and owners.
func (s *Service) AuditLog(ctx context.Context, caller auth.Caller, limit int) (entries []*models.AuditEntry, err error) {
	ctx, span := s.startSpan(ctx, "tasks.AuditLog", caller)
	defer func() { endSpan(span, err) }()

	if err = s.authorize(ctx, auth.ActionViewAuditLog, caller, nil); err != nil {
		return nil, err
	}

	entries, err = s.audit.List(ctx, store.ListAuditOptions{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	return entries, nil
}

func (s *Service) authorize(ctx context.Context, action auth.Action, caller auth.Caller, task *models.Task) error {
	err := s.access.Authorize(ctx, action, caller, task)
	switch {
	case err == nil:
		s.metrics.RecordDecision(ctx, string(action), caller.Role.String(), true)
	case errors.Is(err, auth.ErrPermissionDenied):
		s.metrics.RecordDecision(ctx, string(action), caller.Role.String(), false)
		zerolog.Ctx(ctx).Debug().
			Str("user_id", caller.ID.String()).
			Str("role", caller.Role.String()).
			Str("action", string(action)).
			Msg("Permission denied")
	default:
		s.metrics.AuthzErrorsTotal.Add(ctx, 1)
		return fmt.Errorf("failed to authorize %s: %w", action, err)
	}
	return err
}

// recordMutation writes the audit entry for an applied mutation. The mutation
// has already happened, so a failed write is logged rather than returned.
func (s *Service) recordMutation(ctx context.Context, caller auth.Caller, action models.AuditAction, taskID uuid.UUID) {
	s.metrics.RecordMutation(ctx, string(action))

	if err := s.sink.Record(ctx, caller.ID, action, taskID); err != nil {
		s.metrics.AuditWriteErrorsTotal.Add(ctx, 1)
		zerolog.Ctx(ctx).Error().
			Err(err).
			Str("user_id", caller.ID.String()).
			Str("task_id", taskID.String()).
			Str("action", string(action)).
			Msg("Failed to record audit entry")
		return
	}

	zerolog.Ctx(ctx).Info().
		Str("user_id", caller.ID.String()).
		Str("org_id", caller.OrgID.String()).
		Str("task_id", taskID.String()).
		Str("action", string(action)).
		Msg("Task mutation applied")
}

func (s *Service) startSpan(ctx context.Context, name string, caller auth.Caller, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("caller.id", caller.ID.String()),
		attribute.String("caller.role", caller.Role.String()),
		attribute.String("caller.org_id", caller.OrgID.String()),
	)
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if !utf8.ValidString(title) {
		return "", fmt.Errorf("%w: title is not valid UTF-8", ErrInvalidTask)
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", fmt.Errorf("%w: title exceeds %d characters", ErrInvalidTask, maxTitleLength)
	}
	return title, nil
}

func withDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
