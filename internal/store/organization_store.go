package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/taskscope/internal/models"
)

// Sentinel errors for organization store operations
var (
	ErrOrganizationNotFound      = errors.New("organization not found")
	ErrOrganizationAlreadyExists = errors.New("organization already exists")
	ErrNestingTooDeep            = errors.New("organization parent is itself a child organization")
)

// OrganizationStore defines the interface for organization storage operations.
// Organizations form a hierarchy at most one level deep.
type OrganizationStore interface {
	// Create creates a new organization in the store.
	// Returns ErrOrganizationAlreadyExists if an organization with the same ID already exists,
	// ErrOrganizationNotFound if the parent doesn't exist and ErrNestingTooDeep
	// if the parent has a parent of its own.
	Create(ctx context.Context, org *models.Organization) error

	// Get retrieves an organization by ID.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)

	// GetByName retrieves an organization by name.
	// Returns ErrOrganizationNotFound if no organization has that name.
	GetByName(ctx context.Context, name string) (*models.Organization, error)

	// ListChildren returns the direct children of parentID.
	// An unknown parent simply has no children.
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]*models.Organization, error)
}
