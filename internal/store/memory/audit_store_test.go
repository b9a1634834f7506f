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

func TestAuditStore_List(t *testing.T) {
	ctx := context.Background()
	st := NewAuditStore()

	base := time.Now()
	var recorded []uuid.UUID
	for i := range 5 {
		entry := &models.AuditEntry{
			EntryID:      uuid.New(),
			ActorID:      uuid.New(),
			Action:       models.AuditActionUpdate,
			ResourceType: models.ResourceTypeTask,
			ResourceID:   uuid.New(),
			Timestamp:    base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, st.Record(ctx, entry))
		recorded = append(recorded, entry.EntryID)
	}

	t.Run("newest first", func(t *testing.T) {
		entries, err := st.List(ctx, store.ListAuditOptions{})
		require.NoError(t, err)
		require.Len(t, entries, 5)
		require.Equal(t, recorded[4], entries[0].EntryID)
		require.Equal(t, recorded[0], entries[4].EntryID)
	})

	t.Run("limit", func(t *testing.T) {
		entries, err := st.List(ctx, store.ListAuditOptions{Limit: 2})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		require.Equal(t, recorded[4], entries[0].EntryID)
		require.Equal(t, recorded[3], entries[1].EntryID)
	})
}

func TestListAuditOptions_EffectiveLimit(t *testing.T) {
	require.Equal(t, store.DefaultAuditListLimit, store.ListAuditOptions{}.EffectiveLimit())
	require.Equal(t, store.DefaultAuditListLimit, store.ListAuditOptions{Limit: -3}.EffectiveLimit())
	require.Equal(t, 7, store.ListAuditOptions{Limit: 7}.EffectiveLimit())
}
