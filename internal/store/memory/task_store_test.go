package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/taskscope/internal/models"
	"github.com/wolfeidau/taskscope/internal/store"
)

func newTestTask(orgID, createdBy uuid.UUID, createdAt time.Time) *models.Task {
	return &models.Task{
		TaskID:    uuid.New(),
		OrgID:     orgID,
		CreatedBy: createdBy,
		Title:     "task",
		Category:  models.DefaultTaskCategory,
		Status:    models.DefaultTaskStatus,
		Priority:  models.DefaultTaskPriority,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestTaskStore_List(t *testing.T) {
	ctx := context.Background()
	st := NewTaskStore(nil)

	orgA, orgB, orgC := uuid.New(), uuid.New(), uuid.New()
	alice, bob := uuid.New(), uuid.New()
	base := time.Now()

	oldest := newTestTask(orgA, alice, base)
	middle := newTestTask(orgB, bob, base.Add(time.Second))
	newest := newTestTask(orgA, bob, base.Add(2*time.Second))
	elsewhere := newTestTask(orgC, alice, base.Add(3*time.Second))
	for _, task := range []*models.Task{oldest, middle, newest, elsewhere} {
		require.NoError(t, st.Create(ctx, task))
	}

	ids := func(tasks []*models.Task) []uuid.UUID {
		out := make([]uuid.UUID, 0, len(tasks))
		for _, task := range tasks {
			out = append(out, task.TaskID)
		}
		return out
	}

	tests := []struct {
		name  string
		query store.TaskQuery
		want  []uuid.UUID
	}{
		{
			name:  "organizations newest first",
			query: store.TaskQuery{OrgIDs: []uuid.UUID{orgA, orgB}},
			want:  []uuid.UUID{newest.TaskID, middle.TaskID, oldest.TaskID},
		},
		{
			name:  "creator restriction",
			query: store.TaskQuery{OrgIDs: []uuid.UUID{orgA, orgB}, CreatedBy: &alice},
			want:  []uuid.UUID{oldest.TaskID},
		},
		{
			name:  "empty query matches nothing",
			query: store.TaskQuery{},
			want:  []uuid.UUID{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := st.List(ctx, tt.query)
			require.NoError(t, err)
			require.Equal(t, tt.want, ids(got))
		})
	}
}

func TestTaskStore_Update(t *testing.T) {
	ctx := context.Background()
	st := NewTaskStore(nil)

	task := newTestTask(uuid.New(), uuid.New(), time.Now().Add(-time.Hour))
	require.NoError(t, st.Create(ctx, task))

	changed := *task
	changed.Title = "renamed"
	changed.Status = "Done"
	changed.OrgID = uuid.New()
	changed.CreatedBy = uuid.New()
	require.NoError(t, st.Update(ctx, &changed))

	got, err := st.Get(ctx, task.TaskID)
	require.NoError(t, err)
	require.Equal(t, "renamed", got.Title)
	require.Equal(t, "Done", got.Status)
	require.Equal(t, task.OrgID, got.OrgID, "organization is immutable")
	require.Equal(t, task.CreatedBy, got.CreatedBy, "creator is immutable")
	require.True(t, got.UpdatedAt.After(task.UpdatedAt))

	missing := newTestTask(uuid.New(), uuid.New(), time.Now())
	require.ErrorIs(t, st.Update(ctx, missing), store.ErrTaskNotFound)
}

func TestTaskStore_CreateDelete(t *testing.T) {
	ctx := context.Background()
	st := NewTaskStore(nil)

	task := newTestTask(uuid.New(), uuid.New(), time.Now())
	require.NoError(t, st.Create(ctx, task))
	require.ErrorIs(t, st.Create(ctx, task), store.ErrTaskAlreadyExists)

	task.Title = "mutated after create"
	got, err := st.Get(ctx, task.TaskID)
	require.NoError(t, err)
	require.Equal(t, "task", got.Title)

	require.NoError(t, st.Delete(ctx, task.TaskID))
	_, err = st.Get(ctx, task.TaskID)
	require.ErrorIs(t, err, store.ErrTaskNotFound)
	require.ErrorIs(t, st.Delete(ctx, task.TaskID), store.ErrTaskNotFound)
}

func TestTaskStore_CreateRequiresOrganization(t *testing.T) {
	ctx := context.Background()
	orgs := NewOrganizationStore()
	st := NewTaskStore(orgs)

	orgID := uuid.New()
	require.NoError(t, orgs.Create(ctx, &models.Organization{OrgID: orgID, Name: "Acme"}))

	require.NoError(t, st.Create(ctx, newTestTask(orgID, uuid.New(), time.Now())))

	orphan := newTestTask(uuid.New(), uuid.New(), time.Now())
	require.ErrorIs(t, st.Create(ctx, orphan), store.ErrOrganizationNotFound)

	_, err := st.Get(ctx, orphan.TaskID)
	require.ErrorIs(t, err, store.ErrTaskNotFound)
}
