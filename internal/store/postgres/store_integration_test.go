//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/wolfeidau/taskscope/internal/models"
	"github.com/wolfeidau/taskscope/internal/store"
)

func setupPostgresContainer(t *testing.T, ctx context.Context) store.Stores {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	stores, pool, err := Open(ctx, &Config{
		Pool: PoolConfig{
			ConnString: fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port()),
		},
		AutoMigrate: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		_ = container.Terminate(ctx)
	})

	// running twice must be a no-op
	require.NoError(t, RunMigrations(ctx, pool))

	return stores
}

func TestIntegration_Stores(t *testing.T) {
	ctx := context.Background()
	stores := setupPostgresContainer(t, ctx)

	parent := &models.Organization{OrgID: uuid.New(), Name: "Parent"}
	child := &models.Organization{OrgID: uuid.New(), Name: "Child", ParentOrgID: &parent.OrgID}

	t.Run("organizations", func(t *testing.T) {
		require.NoError(t, stores.Organizations.Create(ctx, parent))
		require.NoError(t, stores.Organizations.Create(ctx, child))

		err := stores.Organizations.Create(ctx, &models.Organization{OrgID: uuid.New(), Name: "Grandchild", ParentOrgID: &child.OrgID})
		require.ErrorIs(t, err, store.ErrNestingTooDeep)

		missing := uuid.New()
		err = stores.Organizations.Create(ctx, &models.Organization{OrgID: uuid.New(), Name: "Orphan", ParentOrgID: &missing})
		require.ErrorIs(t, err, store.ErrOrganizationNotFound)

		err = stores.Organizations.Create(ctx, &models.Organization{OrgID: uuid.New(), Name: "Parent"})
		require.ErrorIs(t, err, store.ErrOrganizationAlreadyExists)

		got, err := stores.Organizations.GetByName(ctx, "Child")
		require.NoError(t, err)
		require.Equal(t, child.OrgID, got.OrgID)
		require.Equal(t, parent.OrgID, *got.ParentOrgID)

		got, err = stores.Organizations.Get(ctx, parent.OrgID)
		require.NoError(t, err)
		require.Nil(t, got.ParentOrgID)

		children, err := stores.Organizations.ListChildren(ctx, parent.OrgID)
		require.NoError(t, err)
		require.Len(t, children, 1)
		require.Equal(t, child.OrgID, children[0].OrgID)

		children, err = stores.Organizations.ListChildren(ctx, child.OrgID)
		require.NoError(t, err)
		require.Empty(t, children)

		_, err = stores.Organizations.Get(ctx, uuid.New())
		require.ErrorIs(t, err, store.ErrOrganizationNotFound)
	})

	t.Run("users", func(t *testing.T) {
		user := &models.User{UserID: uuid.New(), OrgID: parent.OrgID, Email: "Owner@Example.com", Role: models.RoleOwner}
		require.NoError(t, stores.Users.Create(ctx, user))

		got, err := stores.Users.GetByEmail(ctx, "owner@example.com")
		require.NoError(t, err)
		require.Equal(t, user.UserID, got.UserID)
		require.Equal(t, models.RoleOwner, got.Role)

		err = stores.Users.Create(ctx, &models.User{UserID: uuid.New(), OrgID: parent.OrgID, Email: "owner@example.com", Role: models.RoleViewer})
		require.ErrorIs(t, err, store.ErrUserAlreadyExists)

		_, err = stores.Users.Get(ctx, uuid.New())
		require.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("tasks", func(t *testing.T) {
		creator := uuid.New()
		base := time.Now().UTC().Truncate(time.Millisecond)

		newTask := func(orgID uuid.UUID, createdBy uuid.UUID, offset time.Duration) *models.Task {
			task := &models.Task{
				TaskID:    uuid.New(),
				OrgID:     orgID,
				CreatedBy: createdBy,
				Title:     "task",
				Category:  models.DefaultTaskCategory,
				Status:    models.DefaultTaskStatus,
				Priority:  models.DefaultTaskPriority,
				CreatedAt: base.Add(offset),
				UpdatedAt: base.Add(offset),
			}
			require.NoError(t, stores.Tasks.Create(ctx, task))
			return task
		}

		older := newTask(parent.OrgID, creator, 0)
		newer := newTask(parent.OrgID, uuid.New(), time.Second)
		inChild := newTask(child.OrgID, creator, 2*time.Second)

		all, err := stores.Tasks.List(ctx, store.TaskQuery{OrgIDs: []uuid.UUID{parent.OrgID, child.OrgID}})
		require.NoError(t, err)
		require.Len(t, all, 3)
		require.Equal(t, inChild.TaskID, all[0].TaskID)
		require.Equal(t, newer.TaskID, all[1].TaskID)
		require.Equal(t, older.TaskID, all[2].TaskID)

		mine, err := stores.Tasks.List(ctx, store.TaskQuery{OrgIDs: []uuid.UUID{parent.OrgID}, CreatedBy: &creator})
		require.NoError(t, err)
		require.Len(t, mine, 1)
		require.Equal(t, older.TaskID, mine[0].TaskID)

		none, err := stores.Tasks.List(ctx, store.TaskQuery{})
		require.NoError(t, err)
		require.Empty(t, none)

		older.Title = "renamed"
		older.Status = "Done"
		require.NoError(t, stores.Tasks.Update(ctx, older))

		got, err := stores.Tasks.Get(ctx, older.TaskID)
		require.NoError(t, err)
		require.Equal(t, "renamed", got.Title)
		require.Equal(t, "Done", got.Status)
		require.Equal(t, creator, got.CreatedBy)

		require.NoError(t, stores.Tasks.Delete(ctx, older.TaskID))
		_, err = stores.Tasks.Get(ctx, older.TaskID)
		require.ErrorIs(t, err, store.ErrTaskNotFound)
		require.ErrorIs(t, stores.Tasks.Delete(ctx, older.TaskID), store.ErrTaskNotFound)
		require.ErrorIs(t, stores.Tasks.Update(ctx, older), store.ErrTaskNotFound)
	})

	t.Run("audit", func(t *testing.T) {
		base := time.Now().UTC().Truncate(time.Millisecond)
		for i, action := range []models.AuditAction{models.AuditActionCreate, models.AuditActionUpdate, models.AuditActionDelete} {
			require.NoError(t, stores.Audit.Record(ctx, &models.AuditEntry{
				EntryID:      uuid.New(),
				ActorID:      uuid.New(),
				Action:       action,
				ResourceType: models.ResourceTypeTask,
				ResourceID:   uuid.New(),
				Timestamp:    base.Add(time.Duration(i) * time.Second),
			}))
		}

		entries, err := stores.Audit.List(ctx, store.ListAuditOptions{})
		require.NoError(t, err)
		require.Len(t, entries, 3)
		require.Equal(t, models.AuditActionDelete, entries[0].Action)

		entries, err = stores.Audit.List(ctx, store.ListAuditOptions{Limit: 2})
		require.NoError(t, err)
		require.Len(t, entries, 2)
	})
}
