package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents an organization (tenant) in the system.
// Organizations nest at most one level: a child organization's parent never
// has a parent of its own.
type Organization struct {
	OrgID       uuid.UUID // UUIDv7
	Name        string
	ParentOrgID *uuid.UUID // nil for a top level organization
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsChild returns true if the organization has a parent.
func (o *Organization) IsChild() bool {
	return o.ParentOrgID != nil
}
