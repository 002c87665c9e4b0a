package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda-rural/internal/logger"
	"agenda-rural/internal/model"
)

func newTestLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	log := logger.Discard()
	db, err := NewDB(filepath.Join(t.TempDir(), "nested", "agenda.db"), log)
	require.NoError(t, err)
	store := NewLocalStore(db, log)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustTask(t *testing.T, input model.TaskInput) model.Task {
	t.Helper()
	task, err := model.NewTask(input, "", time.Time{})
	require.NoError(t, err)
	return task
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestLocalStore_InsertAndListRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestLocalStore(t)
	store.now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }

	dated, err := store.Insert(ctx, mustTask(t, model.TaskInput{
		Title: "Consertar cerca", Description: "lado norte", Category: "maintenance",
		Urgency: "high", Recurrence: "monthly", SpecificDate: strPtr("2024-06-15"),
	}))
	require.NoError(t, err)
	assert.NotEmpty(t, dated.ID)
	assert.Equal(t, int64(1), dated.Version)
	assert.False(t, dated.CreatedAt.IsZero())

	seasonal, err := store.Insert(ctx, mustTask(t, model.TaskInput{
		Title: "Plantar feijão", Category: "planting", Recurrence: "yearly", MonthReference: intPtr(0),
	}))
	require.NoError(t, err)

	tasks, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	byID := map[string]model.Task{}
	for _, task := range tasks {
		byID[task.ID] = task
	}

	got := byID[dated.ID]
	assert.Equal(t, dated.Title, got.Title)
	assert.Equal(t, dated.Description, got.Description)
	assert.Equal(t, dated.Urgency, got.Urgency)
	assert.Equal(t, dated.Recurrence, got.Recurrence)
	assert.Equal(t, dated.Anchor, got.Anchor)
	assert.Equal(t, dated.CreatedAt.UnixMilli(), got.CreatedAt.UnixMilli())

	ref, ok := byID[seasonal.ID].Anchor.MonthReference()
	require.True(t, ok)
	assert.Equal(t, 0, ref)
}

func TestLocalStore_UpdateCompletionVersionGuard(t *testing.T) {
	ctx := context.Background()
	store := newTestLocalStore(t)

	task, err := store.Insert(ctx, mustTask(t, model.TaskInput{
		Title: "Vacinar", Category: "animals", Recurrence: "none", SpecificDate: strPtr("2024-06-15"),
	}))
	require.NoError(t, err)

	require.NoError(t, store.UpdateCompletion(ctx, task.ID, true, 3))
	assert.ErrorIs(t, store.UpdateCompletion(ctx, task.ID, false, 2), ErrStale)
	assert.ErrorIs(t, store.UpdateCompletion(ctx, "missing", true, 9), ErrNotFound)

	tasks, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].IsCompleted)
	assert.Equal(t, int64(3), tasks[0].Version)
}

func TestLocalStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTestLocalStore(t)

	task, err := store.Insert(ctx, mustTask(t, model.TaskInput{
		Title: "Limpar caixa d'água", Category: "general", Recurrence: "none", SpecificDate: strPtr("2024-07-01"),
	}))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, task.ID))
	assert.ErrorIs(t, store.Delete(ctx, task.ID), ErrNotFound)

	tasks, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestLocalStore_MalformedRowLoadsWithZeroAnchor(t *testing.T) {
	ctx := context.Background()
	store := newTestLocalStore(t)

	row := taskRow{
		ID: "broken", Title: "Sem data", Category: "general", Urgency: "low", Recurrence: "none",
		SpecificDate: strPtr("2024-06-15"), MonthReference: intPtr(5), CreatedAt: time.Now(), Version: 1,
	}
	require.NoError(t, store.db.Create(&row).Error)

	tasks, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Anchor.IsZero())
	assert.Equal(t, "Sem data", tasks[0].Title)
}

func TestLocalStore_Logs(t *testing.T) {
	ctx := context.Background()
	store := newTestLocalStore(t)
	store.now = func() time.Time { return time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC) }

	older, err := store.InsertLog(ctx, "Choveu forte", model.NewDate(2024, time.June, 10))
	require.NoError(t, err)
	today, err := store.InsertLog(ctx, "  Ordenha normal ", model.CivilDate{})
	require.NoError(t, err)
	assert.Equal(t, model.NewDate(2024, time.June, 15), today.LogDate)
	assert.Equal(t, "Ordenha normal", today.Content)

	_, err = store.InsertLog(ctx, " ", model.CivilDate{})
	assert.ErrorIs(t, err, model.ErrContentRequired)

	logs, err := store.ListRecentLogs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, today.ID, logs[0].ID)
	assert.Equal(t, older.ID, logs[1].ID)

	limited, err := store.ListRecentLogs(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
