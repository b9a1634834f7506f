package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/taskscope/internal/models"
	"github.com/wolfeidau/taskscope/internal/store/memory"
)

// orgTree is a parent organization P with children C1 and C2, plus an
// unrelated organization X.
type orgTree struct {
	orgs *memory.OrganizationStore
	P    uuid.UUID
	C1   uuid.UUID
	C2   uuid.UUID
	X    uuid.UUID
}

func newOrgTree(t *testing.T) *orgTree {
	t.Helper()
	ctx := context.Background()

	tree := &orgTree{
		orgs: memory.NewOrganizationStore(),
		P:    uuid.New(),
		C1:   uuid.New(),
		C2:   uuid.New(),
		X:    uuid.New(),
	}

	require.NoError(t, tree.orgs.Create(ctx, &models.Organization{OrgID: tree.P, Name: "P"}))
	require.NoError(t, tree.orgs.Create(ctx, &models.Organization{OrgID: tree.C1, Name: "C1", ParentOrgID: &tree.P}))
	require.NoError(t, tree.orgs.Create(ctx, &models.Organization{OrgID: tree.C2, Name: "C2", ParentOrgID: &tree.P}))
	require.NoError(t, tree.orgs.Create(ctx, &models.Organization{OrgID: tree.X, Name: "X"}))

	return tree
}

type failingLister struct{ err error }

func (f failingLister) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*models.Organization, error) {
	return nil, f.err
}

func TestAccessibleOrganizations(t *testing.T) {
	tree := newOrgTree(t)
	resolver := NewOrgScopeResolver(tree.orgs)
	ctx := context.Background()

	tests := []struct {
		name     string
		role     models.Role
		orgID    uuid.UUID
		expected OrgSet
	}{
		{name: "viewer in parent gets only own org", role: models.RoleViewer, orgID: tree.P, expected: OrgSet{tree.P}},
		{name: "admin in parent gets children", role: models.RoleAdmin, orgID: tree.P, expected: OrgSet{tree.P, tree.C1, tree.C2}},
		{name: "owner in parent gets children", role: models.RoleOwner, orgID: tree.P, expected: OrgSet{tree.P, tree.C1, tree.C2}},
		{name: "admin in child gets only child", role: models.RoleAdmin, orgID: tree.C1, expected: OrgSet{tree.C1}},
		{name: "owner in org without children", role: models.RoleOwner, orgID: tree.X, expected: OrgSet{tree.X}},
		{name: "viewer in child", role: models.RoleViewer, orgID: tree.C2, expected: OrgSet{tree.C2}},
		{name: "unknown role gets only own org", role: models.RoleUnknown, orgID: tree.P, expected: OrgSet{tree.P}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := Caller{ID: uuid.New(), Role: tt.role, OrgID: tt.orgID}

			scope, err := resolver.AccessibleOrganizations(ctx, caller)
			require.NoError(t, err)
			require.Equal(t, tt.expected, scope)
		})
	}
}

func TestAccessibleOrganizations_noGrandchildren(t *testing.T) {
	tree := newOrgTree(t)
	ctx := context.Background()

	grandchild := uuid.New()
	err := tree.orgs.Create(ctx, &models.Organization{OrgID: grandchild, Name: "G", ParentOrgID: &tree.C1})
	require.Error(t, err)

	resolver := NewOrgScopeResolver(tree.orgs)
	scope, err := resolver.AccessibleOrganizations(ctx, Caller{ID: uuid.New(), Role: models.RoleOwner, OrgID: tree.P})
	require.NoError(t, err)
	require.False(t, scope.Contains(grandchild))
}

func TestAccessibleOrganizations_fetchError(t *testing.T) {
	boom := errors.New("connection refused")
	resolver := NewOrgScopeResolver(failingLister{err: boom})

	t.Run("admin surfaces the store error", func(t *testing.T) {
		_, err := resolver.AccessibleOrganizations(context.Background(), Caller{ID: uuid.New(), Role: models.RoleAdmin, OrgID: uuid.New()})
		require.ErrorIs(t, err, boom)
	})

	t.Run("viewer never touches the store", func(t *testing.T) {
		orgID := uuid.New()
		scope, err := resolver.AccessibleOrganizations(context.Background(), Caller{ID: uuid.New(), Role: models.RoleViewer, OrgID: orgID})
		require.NoError(t, err)
		require.Equal(t, OrgSet{orgID}, scope)
	})
}
