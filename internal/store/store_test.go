package store_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/monthly-invoicer/internal/model"
	"github.com/Tiliavir/monthly-invoicer/internal/store"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestProperties_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	props := store.NewProperties(newTestDB(t))

	_, ok, err := props.Get(ctx, "PAYEE_NAME")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, props.Set(ctx, "PAYEE_NAME", "山田太郎"))
	require.NoError(t, props.Set(ctx, "PAYEE_NAME", "山田花子"))

	v, ok, err := props.Get(ctx, "PAYEE_NAME")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "山田花子", v)

	all, err := props.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"PAYEE_NAME": "山田花子"}, all)

	require.NoError(t, props.Delete(ctx, "PAYEE_NAME"))
	require.NoError(t, props.Delete(ctx, "PAYEE_NAME"))
	_, ok, err = props.Get(ctx, "PAYEE_NAME")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProperties_EmptyValueIsSet(t *testing.T) {
	ctx := context.Background()
	props := store.NewProperties(newTestDB(t))

	require.NoError(t, props.Set(ctx, "NOTIFICATION_EMAIL", ""))
	v, ok, err := props.Get(ctx, "NOTIFICATION_EMAIL")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestTriggers_ReplaceRemovesDuplicates(t *testing.T) {
	ctx := context.Background()
	triggers := store.NewTriggers(newTestDB(t))
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, triggers.Insert(ctx, model.Trigger{ID: "a", Handler: "daily", Hour: 9, CreatedAt: now}))
	require.NoError(t, triggers.Insert(ctx, model.Trigger{ID: "b", Handler: "daily", Hour: 10, CreatedAt: now}))
	require.NoError(t, triggers.Insert(ctx, model.Trigger{ID: "c", Handler: "other", Hour: 1, CreatedAt: now}))

	removed, err := triggers.Replace(ctx, model.Trigger{ID: "d", Handler: "daily", Hour: 8, CreatedAt: now})
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	list, err := triggers.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "d", list[0].ID)
	assert.Equal(t, 8, list[0].Hour)
	assert.True(t, list[0].CreatedAt.Equal(now))
	assert.Equal(t, "other", list[1].Handler)
}

func TestTriggers_RejectsInvalidHour(t *testing.T) {
	triggers := store.NewTriggers(newTestDB(t))
	ctx := context.Background()
	require.NoError(t, triggers.Insert(ctx, model.Trigger{ID: "a", Handler: "daily", Hour: 9}))

	_, err := triggers.Replace(ctx, model.Trigger{ID: "x", Handler: "daily", Hour: 24})
	assert.Error(t, err)

	list, err := triggers.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1, "a failed replace keeps the old trigger")
	assert.Equal(t, "a", list[0].ID)
}

func TestTriggers_MarkRunAndDelete(t *testing.T) {
	ctx := context.Background()
	triggers := store.NewTriggers(newTestDB(t))
	require.NoError(t, triggers.Insert(ctx, model.Trigger{ID: "a", Handler: "daily", Hour: 9}))

	require.NoError(t, triggers.MarkRun(ctx, "a", "2025-05-29"))
	assert.Error(t, triggers.MarkRun(ctx, "missing", "2025-05-29"))

	list, err := triggers.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2025-05-29", list[0].LastRun)

	n, err := triggers.DeleteHandler(ctx, "daily")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	list, err = triggers.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRuns_RecordAndRecent(t *testing.T) {
	ctx := context.Background()
	runs := store.NewRuns(newTestDB(t))
	base := time.Date(2025, 5, 29, 9, 0, 0, 0, time.UTC)

	require.NoError(t, runs.Record(ctx, model.Run{ID: "1", Period: "2025-05", StartedAt: base, FinishedAt: base.Add(time.Minute), Status: model.RunFailure, Error: "boom"}))
	require.NoError(t, runs.Record(ctx, model.Run{ID: "2", Period: "2025-05", StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour), Status: model.RunSuccess, URL: "https://example.com/pdf"}))

	recent, err := runs.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "2", recent[0].ID)
	assert.Equal(t, model.RunFailure, recent[1].Status)
	assert.Equal(t, "boom", recent[1].Error)

	last, err := runs.LastSuccess(ctx, "2025-05")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "https://example.com/pdf", last.URL)

	none, err := runs.LastSuccess(ctx, "2025-06")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestOpenDB_FileIsReopenable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "invoicer.db")

	db, err := store.OpenDB(path)
	require.NoError(t, err)
	require.NoError(t, store.NewProperties(db).Set(ctx, "K", "V"))
	require.NoError(t, db.Close())

	db, err = store.OpenDB(path)
	require.NoError(t, err)
	defer db.Close()
	v, ok, err := store.NewProperties(db).Get(ctx, "K")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "V", v)
}
