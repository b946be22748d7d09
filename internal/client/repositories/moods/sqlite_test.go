package moods

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/moodkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/moodkeeper/internal/client/models"
	"github.com/dmitrijs2005/moodkeeper/internal/common"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpContext(context.Background(), db, "."))
	return db
}

func newRepo(t *testing.T) (*SQLiteRepository, *sql.DB) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	r.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return r, db
}

func entry(date, tm string, mt common.MoodType) *models.MoodEntry {
	return &models.MoodEntry{MoodType: mt, EntryDate: date, EntryTime: tm}
}

func TestInsertAndGet_RoundTrip(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	note := "slept well"
	sid := int64(42)
	m := &models.MoodEntry{
		ServerID:   &sid,
		MoodType:   common.MoodCalm,
		Note:       &note,
		EntryDate:  "2024-03-01",
		EntryTime:  "08:30:00",
		Activities: []string{"exercise", "reading"},
		IsSynced:   true,
	}

	id, err := r.Insert(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, id, m.ID)
	assert.False(t, m.CreatedAt.IsZero())

	got, err := r.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, m.ServerID, got.ServerID)
	assert.Equal(t, common.MoodCalm, got.MoodType)
	assert.Equal(t, "slept well", *got.Note)
	assert.Nil(t, got.PhotoPath)
	assert.Equal(t, []string{"exercise", "reading"}, got.Activities)
	assert.True(t, got.IsSynced)
	assert.True(t, m.CreatedAt.Equal(got.CreatedAt))
}

func TestInsert_NilActivitiesStoredAsEmpty(t *testing.T) {
	r, db := newRepo(t)
	ctx := context.Background()

	id, err := r.Insert(ctx, entry("2024-03-01", "08:00:00", common.MoodHappy))
	require.NoError(t, err)

	var raw string
	require.NoError(t, db.QueryRow(`SELECT activities FROM mood_entries WHERE id = ?`, id).Scan(&raw))
	assert.Equal(t, "[]", raw)

	got, err := r.Get(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got.Activities)
	assert.Nil(t, got.ServerID)
	assert.False(t, got.IsSynced)
}

func TestUpdate_KeepsCreatedAt(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	m := entry("2024-03-01", "08:00:00", common.MoodSad)
	_, err := r.Insert(ctx, m)
	require.NoError(t, err)
	created := m.CreatedAt

	m.MoodType = common.MoodHappy
	m.CreatedAt = created.Add(time.Hour)
	m.IsSynced = true
	require.NoError(t, r.Update(ctx, m))

	got, err := r.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, common.MoodHappy, got.MoodType)
	assert.True(t, got.IsSynced)
	assert.True(t, created.Equal(got.CreatedAt))
}

func TestUpdateDeleteGet_Missing(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	m := entry("2024-03-01", "08:00:00", common.MoodSad)
	m.ID = 99
	assert.ErrorIs(t, r.Update(ctx, m), common.ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, 99), common.ErrNotFound)

	_, err := r.Get(ctx, 99)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListAll_Order(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	for _, m := range []*models.MoodEntry{
		entry("2024-03-01", "08:00:00", common.MoodHappy),
		entry("2024-03-02", "07:00:00", common.MoodSad),
		entry("2024-03-02", "21:00:00", common.MoodCalm),
		entry("2024-03-01", "08:00:00", common.MoodAngry),
	} {
		_, err := r.Insert(ctx, m)
		require.NoError(t, err)
	}

	list, err := r.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)

	var got []common.MoodType
	for _, m := range list {
		got = append(got, m.MoodType)
	}
	assert.Equal(t, []common.MoodType{common.MoodCalm, common.MoodSad, common.MoodAngry, common.MoodHappy}, got)
}

func TestListUnsynced_OldestFirst(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	late := entry("2024-01-01", "08:00:00", common.MoodHappy)
	synced := entry("2024-01-02", "08:00:00", common.MoodSad)
	synced.IsSynced = true
	early := entry("2024-03-05", "08:00:00", common.MoodCalm)

	for _, m := range []*models.MoodEntry{early, synced, late} {
		_, err := r.Insert(ctx, m)
		require.NoError(t, err)
	}

	list, err := r.ListUnsynced(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, early.ID, list[0].ID)
	assert.Equal(t, late.ID, list[1].ID)

	n, err := r.CountUnsynced(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestListByDateRangeAndCount(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	for _, d := range []string{"2024-02-28", "2024-03-01", "2024-03-02", "2024-03-10"} {
		_, err := r.Insert(ctx, entry(d, "08:00:00", common.MoodHappy))
		require.NoError(t, err)
	}

	list, err := r.ListByDateRange(ctx, "2024-03-01", "2024-03-02")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = r.ListByDateRange(ctx, "2024-03-02", "")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = r.ListByDateRange(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, list, 4)

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	require.NoError(t, r.DeleteAll(ctx))
	n, err = r.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestErrorsWrapped_OnClosedDB(t *testing.T) {
	r, db := newRepo(t)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Insert(ctx, entry("2024-03-01", "08:00:00", common.MoodHappy))
	require.ErrorContains(t, err, "failed to insert mood")

	_, err = r.ListAll(ctx)
	require.ErrorContains(t, err, "failed to select moods")

	_, err = r.Get(ctx, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrNotFound)
}
