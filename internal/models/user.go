package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a member of exactly one organization. Users are created by
// external signup or admin flows; the task API only reads them.
type User struct {
	UserID    uuid.UUID // UUIDv7
	OrgID     uuid.UUID // FK to organizations
	Email     string
	Role      Role
	CreatedAt time.Time
}
