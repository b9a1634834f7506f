package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfeidau/taskscope/internal/models"
)

// Caller is the authenticated user making a request.
// It is passed explicitly to every authorization decision.
type Caller struct {
	ID    uuid.UUID
	Role  models.Role
	OrgID uuid.UUID
}

// CallerFromUser builds a Caller from a stored user.
func CallerFromUser(user *models.User) Caller {
	return Caller{
		ID:    user.UserID,
		Role:  user.Role,
		OrgID: user.OrgID,
	}
}

type contextKey int

const (
	callerContextKey contextKey = iota
)

// WithCaller returns a copy of ctx carrying the caller.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerContextKey, caller)
}

// CallerFromContext extracts the authenticated caller from the request context.
// The second return value is false for unauthenticated requests.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerContextKey).(Caller)
	return caller, ok
}
