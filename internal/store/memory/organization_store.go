package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/wolfeidau/taskscope/internal/models"
	"github.com/wolfeidau/taskscope/internal/store"
)

// OrganizationStore implements store.OrganizationStore using in-memory storage.
// This implementation is for testing only - data is lost on restart.
type OrganizationStore struct {
	mu sync.RWMutex

	organizations map[uuid.UUID]*models.Organization // org_id -> Organization
	children      map[uuid.UUID][]uuid.UUID          // parent_org_id -> []org_id
}

// NewOrganizationStore creates a new in-memory organization store.
func NewOrganizationStore() *OrganizationStore {
	return &OrganizationStore{
		organizations: make(map[uuid.UUID]*models.Organization),
		children:      make(map[uuid.UUID][]uuid.UUID),
	}
}

// Create creates a new organization in memory.
func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.organizations[org.OrgID]; exists {
		return store.ErrOrganizationAlreadyExists
	}
	for _, existing := range s.organizations {
		if existing.Name == org.Name {
			return store.ErrOrganizationAlreadyExists
		}
	}

	if org.ParentOrgID != nil {
		parent, exists := s.organizations[*org.ParentOrgID]
		if !exists {
			return store.ErrOrganizationNotFound
		}
		if parent.IsChild() {
			return store.ErrNestingTooDeep
		}
	}

	s.organizations[org.OrgID] = cloneOrganization(org)

	if org.ParentOrgID != nil {
		s.children[*org.ParentOrgID] = append(s.children[*org.ParentOrgID], org.OrgID)
	}

	return nil
}

func (s *OrganizationStore) exists(orgID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.organizations[orgID]
	return ok
}

// Get retrieves an organization by ID.
func (s *OrganizationStore) Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, exists := s.organizations[orgID]
	if !exists {
		return nil, store.ErrOrganizationNotFound
	}

	return cloneOrganization(org), nil
}

// GetByName retrieves an organization by name.
func (s *OrganizationStore) GetByName(ctx context.Context, name string) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, org := range s.organizations {
		if org.Name == name {
			return cloneOrganization(org), nil
		}
	}

	return nil, store.ErrOrganizationNotFound
}

// ListChildren returns the direct children of parentID in creation order.
func (s *OrganizationStore) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.children[parentID]
	result := make([]*models.Organization, 0, len(ids))
	for _, id := range ids {
		result = append(result, cloneOrganization(s.organizations[id]))
	}

	return result, nil
}

// cloneOrganization copies org including the parent pointer so callers can't
// modify stored state.
func cloneOrganization(org *models.Organization) *models.Organization {
	clone := *org
	if org.ParentOrgID != nil {
		parent := *org.ParentOrgID
		clone.ParentOrgID = &parent
	}
	return &clone
}
