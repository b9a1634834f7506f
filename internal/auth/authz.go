package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/wolfeidau/taskscope/internal/models"
	"github.com/wolfeidau/taskscope/internal/store"
)

// ErrPermissionDenied is returned when an authorization decision is negative.
var ErrPermissionDenied = errors.New("permission denied")

// Action represents an authorized operation
type Action string

const (
	ActionCreateTask   Action = "tasks:create"
	ActionReadTask     Action = "tasks:read"
	ActionUpdateTask   Action = "tasks:update"
	ActionDeleteTask   Action = "tasks:delete"
	ActionViewAuditLog Action = "audit:view"
)

// HasRequiredRole checks if role satisfies one of the required roles.
// A role satisfies every role below it: Owner satisfies Admin and Viewer,
// Admin satisfies Viewer. Nothing satisfies a role above it.
func HasRequiredRole(role models.Role, required ...models.Role) bool {
	if !role.Valid() {
		return false
	}
	return slices.ContainsFunc(required, func(r models.Role) bool {
		return r.Valid() && role >= r
	})
}

// ScopeResolver computes the organizations a caller may act within.
type ScopeResolver interface {
	AccessibleOrganizations(ctx context.Context, caller Caller) (OrgSet, error)
}

// AccessController makes authorization decisions for tasks and the audit log.
// Decisions never mutate state; the error returned by the per-task checks is
// only ever an organization lookup failure.
type AccessController struct {
	scope ScopeResolver
}

// NewAccessController creates an access controller using scope for
// organization boundary checks.
func NewAccessController(scope ScopeResolver) *AccessController {
	return &AccessController{scope: scope}
}

// CanCreateTask is true for every role. The task is always created in the
// caller's own organization.
func (a *AccessController) CanCreateTask(caller Caller) bool {
	return HasRequiredRole(caller.Role, models.RoleViewer)
}

// CanReadTask allows admins and owners any task in scope, and viewers only
// the tasks they created.
func (a *AccessController) CanReadTask(ctx context.Context, caller Caller, task *models.Task) (bool, error) {
	inScope, err := a.inScope(ctx, caller, task)
	if err != nil || !inScope {
		return false, err
	}

	if HasRequiredRole(caller.Role, models.RoleAdmin) {
		return true, nil
	}

	return caller.Role == models.RoleViewer && task.CreatedBy == caller.ID, nil
}

// CanUpdateTask uses the same rule as CanReadTask.
func (a *AccessController) CanUpdateTask(ctx context.Context, caller Caller, task *models.Task) (bool, error) {
	return a.CanReadTask(ctx, caller, task)
}

// CanDeleteTask allows admins and owners any task in scope. Viewers can never
// delete, not even their own tasks.
func (a *AccessController) CanDeleteTask(ctx context.Context, caller Caller, task *models.Task) (bool, error) {
	inScope, err := a.inScope(ctx, caller, task)
	if err != nil || !inScope {
		return false, err
	}

	return HasRequiredRole(caller.Role, models.RoleAdmin), nil
}

// CanViewAuditLog is true for admins and owners.
func (a *AccessController) CanViewAuditLog(caller Caller) bool {
	return HasRequiredRole(caller.Role, models.RoleAdmin)
}

// TaskScope returns the listing filter equivalent to calling CanReadTask on
// every task: tasks in the accessible organizations, further restricted to
// the caller's own tasks for viewers.
func (a *AccessController) TaskScope(ctx context.Context, caller Caller) (store.TaskQuery, error) {
	if !caller.Role.Valid() {
		return store.TaskQuery{}, nil
	}

	orgs, err := a.scope.AccessibleOrganizations(ctx, caller)
	if err != nil {
		return store.TaskQuery{}, err
	}

	q := store.TaskQuery{OrgIDs: orgs}
	if caller.Role == models.RoleViewer {
		createdBy := caller.ID
		q.CreatedBy = &createdBy
	}

	return q, nil
}

// Authorize evaluates action and returns ErrPermissionDenied if it is not allowed.
// task is required for the per-task actions and ignored otherwise.
func (a *AccessController) Authorize(ctx context.Context, action Action, caller Caller, task *models.Task) error {
	var (
		allowed bool
		err     error
	)

	switch action {
	case ActionCreateTask:
		allowed = a.CanCreateTask(caller)
	case ActionViewAuditLog:
		allowed = a.CanViewAuditLog(caller)
	case ActionReadTask, ActionUpdateTask, ActionDeleteTask:
		if task == nil {
			return fmt.Errorf("action %s requires a task", action)
		}
		switch action {
		case ActionReadTask:
			allowed, err = a.CanReadTask(ctx, caller, task)
		case ActionUpdateTask:
			allowed, err = a.CanUpdateTask(ctx, caller, task)
		default:
			allowed, err = a.CanDeleteTask(ctx, caller, task)
		}
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown action %q", action)
	}

	if !allowed {
		return fmt.Errorf("%w: %s cannot %s", ErrPermissionDenied, caller.Role, action)
	}

	return nil
}

func (a *AccessController) inScope(ctx context.Context, caller Caller, task *models.Task) (bool, error) {
	orgs, err := a.scope.AccessibleOrganizations(ctx, caller)
	if err != nil {
		return false, err
	}
	return orgs.Contains(task.OrgID), nil
}
