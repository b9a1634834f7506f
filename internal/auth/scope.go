package auth

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/wolfeidau/taskscope/internal/models"
)

// ChildOrganizationLister fetches the direct children of an organization.
// store.OrganizationStore satisfies this interface.
type ChildOrganizationLister interface {
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]*models.Organization, error)
}

// OrgSet is the ordered set of organization IDs a caller may act within.
// The caller's own organization is always first.
type OrgSet []uuid.UUID

// Contains reports whether orgID is in the set.
func (s OrgSet) Contains(orgID uuid.UUID) bool {
	return slices.Contains(s, orgID)
}

// OrgScopeResolver maps a caller to their accessible organizations.
//
// Viewers are confined to their own organization. Admins and owners also act
// within the direct children of their organization. Grandchildren are never
// included; the organization store refuses to create them.
type OrgScopeResolver struct {
	orgs ChildOrganizationLister
}

// NewOrgScopeResolver creates a resolver reading the hierarchy from orgs.
func NewOrgScopeResolver(orgs ChildOrganizationLister) *OrgScopeResolver {
	return &OrgScopeResolver{orgs: orgs}
}

// AccessibleOrganizations returns the organizations the caller may read and write within.
// The only error is a failure to fetch child organizations.
func (r *OrgScopeResolver) AccessibleOrganizations(ctx context.Context, caller Caller) (OrgSet, error) {
	scope := OrgSet{caller.OrgID}

	if !HasRequiredRole(caller.Role, models.RoleAdmin) {
		return scope, nil
	}

	children, err := r.orgs.ListChildren(ctx, caller.OrgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list child organizations of %s: %w", caller.OrgID, err)
	}

	for _, child := range children {
		if !scope.Contains(child.OrgID) {
			scope = append(scope, child.OrgID)
		}
	}

	return scope, nil
}
