package activity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/client-portal/internal/model"
	"github.com/iliyamo/client-portal/internal/repository"
)

func TestRecordPersistsEntry(t *testing.T) {
	store := repository.NewMemoryStore()
	rec := NewRecorder(store, false)
	pid := uint64(7)

	a, err := rec.Record(context.Background(), Entry{
		UserID:       1,
		ActionType:   model.ActionStatusChanged,
		ResourceType: "project",
		ResourceID:   7,
		ProjectID:    &pid,
		Description:  "moved to active",
		Metadata:     map[string]string{"from": "planning", "to": "active"},
	})
	require.NoError(t, err)
	assert.NotZero(t, a.ID)
	assert.False(t, a.CreatedAt.IsZero())

	acts, err := store.ListActivities(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, "moved to active", acts[0].Description)
	assert.Equal(t, "active", acts[0].Metadata["to"])
}
