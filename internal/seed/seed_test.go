package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/taskscope/internal/models"
	"github.com/wolfeidau/taskscope/internal/store/memory"
)

const validSeed = `
organizations:
  - name: Acme
    id: 0190f3a4-0000-7000-8000-000000000001
  - name: Acme Labs
    parent: Acme
  - name: Globex
users:
  - email: owner@acme.test
    role: Owner
    organization: Acme
    id: 0190f3a4-0000-7000-8000-0000000000aa
  - email: admin@labs.acme.test
    role: admin
    organization: Acme Labs
  - email: viewer@globex.test
    role: Viewer
    organization: Globex
`

func TestParse(t *testing.T) {
	file, err := Parse([]byte(validSeed))
	require.NoError(t, err)
	require.Len(t, file.Organizations, 3)
	require.Len(t, file.Users, 3)
	require.Equal(t, "Acme", file.Organizations[1].Parent)
}

func TestParse_invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "malformed",
			yaml:    "organizations: [",
			wantErr: "failed to parse seed file",
		},
		{
			name:    "missing name",
			yaml:    "organizations:\n  - parent: Acme\n",
			wantErr: "name is required",
		},
		{
			name:    "duplicate name",
			yaml:    "organizations:\n  - name: Acme\n  - name: Acme\n",
			wantErr: `duplicate name "Acme"`,
		},
		{
			name:    "parent declared later",
			yaml:    "organizations:\n  - name: Labs\n    parent: Acme\n  - name: Acme\n",
			wantErr: `parent "Acme" must be declared before "Labs"`,
		},
		{
			name:    "grandchild",
			yaml:    "organizations:\n  - name: Acme\n  - name: Labs\n    parent: Acme\n  - name: Bench\n    parent: Labs\n",
			wantErr: `parent "Labs" is itself a child organization`,
		},
		{
			name:    "unknown role",
			yaml:    "organizations:\n  - name: Acme\nusers:\n  - email: a@acme.test\n    role: Superuser\n    organization: Acme\n",
			wantErr: `unknown role "Superuser"`,
		},
		{
			name:    "unknown organization",
			yaml:    "organizations:\n  - name: Acme\nusers:\n  - email: a@acme.test\n    role: Viewer\n    organization: Globex\n",
			wantErr: `unknown organization "Globex"`,
		},
		{
			name:    "duplicate email",
			yaml:    "organizations:\n  - name: Acme\nusers:\n  - email: a@acme.test\n    role: Viewer\n    organization: Acme\n  - email: A@acme.test\n    role: Admin\n    organization: Acme\n",
			wantErr: "duplicate email",
		},
		{
			name:    "bad id",
			yaml:    "organizations:\n  - name: Acme\n    id: nope\n",
			wantErr: `invalid id "nope"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validSeed), 0o600))

	file, err := Load(path)
	require.NoError(t, err)
	require.Len(t, file.Users, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "failed to read seed file")
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	stores := memory.NewStores()

	file, err := Parse([]byte(validSeed))
	require.NoError(t, err)

	result, err := Apply(ctx, stores, file)
	require.NoError(t, err)
	require.Equal(t, Result{OrganizationsCreated: 3, UsersCreated: 3}, result)

	acme, err := stores.Organizations.GetByName(ctx, "Acme")
	require.NoError(t, err)
	require.Equal(t, uuid.MustParse("0190f3a4-0000-7000-8000-000000000001"), acme.OrgID)

	children, err := stores.Organizations.ListChildren(ctx, acme.OrgID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	require.Equal(t, "Acme Labs", children[0].Name)

	owner, err := stores.Users.GetByEmail(ctx, "owner@acme.test")
	require.NoError(t, err)
	require.Equal(t, models.RoleOwner, owner.Role)
	require.Equal(t, acme.OrgID, owner.OrgID)
	require.Equal(t, uuid.MustParse("0190f3a4-0000-7000-8000-0000000000aa"), owner.UserID)

	admin, err := stores.Users.GetByEmail(ctx, "admin@labs.acme.test")
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, admin.Role)
	require.Equal(t, children[0].OrgID, admin.OrgID)

	t.Run("second run skips existing records", func(t *testing.T) {
		result, err := Apply(ctx, stores, file)
		require.NoError(t, err)
		require.Equal(t, Result{OrganizationsSkipped: 3, UsersSkipped: 3}, result)
	})
}

func TestApply_addsToExistingParent(t *testing.T) {
	ctx := context.Background()
	stores := memory.NewStores()

	existing := &models.Organization{OrgID: uuid.New(), Name: "Acme"}
	require.NoError(t, stores.Organizations.Create(ctx, existing))

	file, err := Parse([]byte("organizations:\n  - name: Acme\n  - name: Labs\n    parent: Acme\n"))
	require.NoError(t, err)

	result, err := Apply(ctx, stores, file)
	require.NoError(t, err)
	require.Equal(t, 1, result.OrganizationsSkipped)
	require.Equal(t, 1, result.OrganizationsCreated)

	labs, err := stores.Organizations.GetByName(ctx, "Labs")
	require.NoError(t, err)
	require.Equal(t, existing.OrgID, *labs.ParentOrgID)
}
