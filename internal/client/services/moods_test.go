package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/moodkeeper/internal/client/models"
	"github.com/dmitrijs2005/moodkeeper/internal/client/store"
	"github.com/dmitrijs2005/moodkeeper/internal/common"
	"github.com/dmitrijs2005/moodkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntry(date string, mt common.MoodType) *models.MoodEntry {
	return &models.MoodEntry{MoodType: mt, EntryDate: date, EntryTime: "08:00:00", Activities: []string{"work"}}
}

func TestCreateMood_Online(t *testing.T) {
	svc, st, fr := newMoodSvc(t)
	ctx := context.Background()

	m, err := svc.CreateMood(ctx, newEntry("2024-05-01", common.MoodHappy))
	require.NoError(t, err)
	require.NotNil(t, m.ServerID)
	assert.True(t, m.IsSynced)
	assert.Equal(t, 1, fr.serverCount())

	stored, err := st.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSynced)
	assert.Equal(t, *m.ServerID, *stored.ServerID)
}

func TestCreateMood_OfflineKeepsLocalCopy(t *testing.T) {
	svc, st, fr := newMoodSvc(t)
	fr.setOffline(true)
	ctx := context.Background()

	m, err := svc.CreateMood(ctx, newEntry("2024-05-01", common.MoodSad))
	require.NoError(t, err)
	assert.Nil(t, m.ServerID)
	assert.False(t, m.IsSynced)

	stored, err := st.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsSynced)

	n, err := svc.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCreateMood_DefaultsEntryTime(t *testing.T) {
	svc, _, _ := newMoodSvc(t)
	in := newEntry("2024-05-01", common.MoodCalm)
	in.EntryTime = ""

	m, err := svc.CreateMood(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "14:30:00", m.EntryTime)
}

func TestCreateMood_Validation(t *testing.T) {
	svc, st, fr := newMoodSvc(t)
	long := string(make([]rune, common.MaxNoteLength+1))
	many := make([]string, common.MaxActivities+1)
	for i := range many {
		many[i] = fmt.Sprintf("a%d", i)
	}

	tests := []struct {
		name string
		edit func(m *models.MoodEntry)
	}{
		{"mood", func(m *models.MoodEntry) { m.MoodType = "bored" }},
		{"date", func(m *models.MoodEntry) { m.EntryDate = "01/05/2024" }},
		{"time", func(m *models.MoodEntry) { m.EntryTime = "25:00" }},
		{"note", func(m *models.MoodEntry) { m.Note = &long }},
		{"too many activities", func(m *models.MoodEntry) { m.Activities = many }},
		{"long activity", func(m *models.MoodEntry) {
			m.Activities = []string{strings.Repeat("x", common.MaxActivityNameLength+1)}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newEntry("2024-05-01", common.MoodHappy)
			tt.edit(m)
			_, err := svc.CreateMood(context.Background(), m)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}

	n, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, fr.createCalls)
}

func TestCreateMood_StorageFailure(t *testing.T) {
	svc, st, fr := newMoodSvc(t)
	require.NoError(t, st.Close())

	_, err := svc.CreateMood(context.Background(), newEntry("2024-05-01", common.MoodHappy))
	require.ErrorIs(t, err, common.ErrStorage)
	assert.Zero(t, fr.createCalls)
}

func TestUpdateMood_Online(t *testing.T) {
	svc, _, fr := newMoodSvc(t)
	ctx := context.Background()

	m, err := svc.CreateMood(ctx, newEntry("2024-05-01", common.MoodHappy))
	require.NoError(t, err)

	note := "better now"
	m.Note = &note
	m.MoodType = common.MoodCalm
	m.IsSynced = false

	up, err := svc.UpdateMood(ctx, m)
	require.NoError(t, err)
	assert.True(t, up.IsSynced)
	assert.Equal(t, 1, fr.updateCalls)
	assert.Equal(t, "calm", fr.moods[*up.ServerID].MoodType)
}

func TestUpdateMood_OfflineStaysUnsynced(t *testing.T) {
	svc, st, fr := newMoodSvc(t)
	ctx := context.Background()

	m, err := svc.CreateMood(ctx, newEntry("2024-05-01", common.MoodHappy))
	require.NoError(t, err)

	fr.setOffline(true)
	m.MoodType = common.MoodAngry
	up, err := svc.UpdateMood(ctx, m)
	require.NoError(t, err)
	assert.False(t, up.IsSynced)
	assert.NotNil(t, up.ServerID)

	stored, err := st.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, common.MoodAngry, stored.MoodType)
	assert.False(t, stored.IsSynced)
}

func TestUpdateMood_IgnoresCallerServerID(t *testing.T) {
	svc, st, fr := newMoodSvc(t)
	ctx := context.Background()
	fr.setOffline(true)

	m, err := svc.CreateMood(ctx, newEntry("2024-05-01", common.MoodHappy))
	require.NoError(t, err)
	fr.setOffline(false)

	bogus := int64(999)
	m.ServerID = &bogus
	up, err := svc.UpdateMood(ctx, m)
	require.NoError(t, err)
	assert.Nil(t, up.ServerID)
	assert.Zero(t, fr.updateCalls)

	stored, err := st.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ServerID)
}

func TestUpdateMood_Missing(t *testing.T) {
	svc, _, _ := newMoodSvc(t)
	m := newEntry("2024-05-01", common.MoodHappy)
	m.ID = 42

	_, err := svc.UpdateMood(context.Background(), m)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteMood(t *testing.T) {
	svc, st, fr := newMoodSvc(t)
	ctx := context.Background()

	m, err := svc.CreateMood(ctx, newEntry("2024-05-01", common.MoodHappy))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMood(ctx, m))
	_, err = st.Get(ctx, m.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Zero(t, fr.serverCount())
}

func TestDeleteMood_RemoteFailureIsSwallowed(t *testing.T) {
	svc, st, fr := newMoodSvc(t)
	ctx := context.Background()

	m, err := svc.CreateMood(ctx, newEntry("2024-05-01", common.MoodHappy))
	require.NoError(t, err)

	fr.setOffline(true)
	require.NoError(t, svc.DeleteMood(ctx, m))

	_, err = st.Get(ctx, m.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, 1, fr.deleteCalls)
	assert.Equal(t, 1, fr.serverCount(), "server copy is orphaned")
}

func TestDeleteMood_NeverSyncedSkipsRemote(t *testing.T) {
	svc, _, fr := newMoodSvc(t)
	ctx := context.Background()
	fr.setOffline(true)

	m, err := svc.CreateMood(ctx, newEntry("2024-05-01", common.MoodHappy))
	require.NoError(t, err)
	require.NoError(t, svc.DeleteMood(ctx, m))
	assert.Zero(t, fr.deleteCalls)

	assert.ErrorIs(t, svc.DeleteMood(ctx, m), common.ErrNotFound)
}

func TestSyncUnsyncedMoods_OfflineCreateThenSync(t *testing.T) {
	svc, st, fr := newMoodSvc(t)
	ctx := context.Background()

	fr.setOffline(true)
	m, err := svc.CreateMood(ctx, newEntry("2024-05-01", common.MoodHappy))
	require.NoError(t, err)
	require.False(t, m.IsSynced)

	n, err := svc.SyncUnsyncedMoods(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	fr.setOffline(false)
	n, err = svc.SyncUnsyncedMoods(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := st.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSynced)
	assert.NotNil(t, stored.ServerID)

	n, err = svc.SyncUnsyncedMoods(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, fr.serverCount())
}

func TestSyncUnsyncedMoods_EditedEntryUsesUpdate(t *testing.T) {
	svc, _, fr := newMoodSvc(t)
	ctx := context.Background()

	m, err := svc.CreateMood(ctx, newEntry("2024-05-01", common.MoodHappy))
	require.NoError(t, err)
	fr.setOffline(true)
	m.MoodType = common.MoodSad
	_, err = svc.UpdateMood(ctx, m)
	require.NoError(t, err)
	fr.setOffline(false)

	creates := fr.createCalls
	n, err := svc.SyncUnsyncedMoods(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, creates, fr.createCalls)
	assert.Equal(t, "sad", fr.moods[*m.ServerID].MoodType)
}

func TestSyncUnsyncedMoods_RecreatesWhenGoneOnServer(t *testing.T) {
	svc, st, fr := newMoodSvc(t)
	ctx := context.Background()

	m, err := svc.CreateMood(ctx, newEntry("2024-05-01", common.MoodHappy))
	require.NoError(t, err)
	oldID := *m.ServerID

	fr.setOffline(true)
	_, err = svc.UpdateMood(ctx, m)
	require.NoError(t, err)
	fr.setOffline(false)
	delete(fr.moods, oldID)

	n, err := svc.SyncUnsyncedMoods(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := st.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSynced)
	assert.NotEqual(t, oldID, *stored.ServerID)
}

func TestSyncUnsyncedMoods_ListFailure(t *testing.T) {
	svc, st, _ := newMoodSvc(t)
	require.NoError(t, st.Close())

	_, err := svc.SyncUnsyncedMoods(context.Background())
	assert.ErrorIs(t, err, common.ErrStorage)
}

func TestSyncMoodsFromBackend_Idempotent(t *testing.T) {
	svc, _, fr := newMoodSvc(t)
	ctx := context.Background()

	for _, d := range []string{"2024-05-01", "2024-05-02", "2024-05-03"} {
		_, err := svc.CreateMood(ctx, newEntry(d, common.MoodCalm))
		require.NoError(t, err)
	}

	snapshot := func() []models.MoodEntry {
		list, err := svc.ListMoods(ctx)
		require.NoError(t, err)
		out := make([]models.MoodEntry, 0, len(list))
		for _, m := range list {
			c := *m.Clone()
			c.ID = 0
			out = append(out, c)
		}
		return out
	}

	require.NoError(t, svc.SyncMoodsFromBackend(ctx))
	first := snapshot()
	require.NoError(t, svc.SyncMoodsFromBackend(ctx))
	second := snapshot()

	assert.Len(t, first, 3)
	assert.Equal(t, first, second)
	for _, m := range first {
		assert.True(t, m.IsSynced)
		assert.NotNil(t, m.ServerID)
	}
	assert.Equal(t, 3, fr.serverCount())
}

func TestSyncMoodsFromBackend_FailureLeavesLocalState(t *testing.T) {
	svc, st, fr := newMoodSvc(t)
	ctx := context.Background()

	fr.setOffline(true)
	_, err := svc.CreateMood(ctx, newEntry("2024-05-01", common.MoodCalm))
	require.NoError(t, err)

	err = svc.SyncMoodsFromBackend(ctx)
	require.ErrorIs(t, err, common.ErrNetwork)

	n, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSyncMoodsFromBackend_KeepsPhotoPath(t *testing.T) {
	svc, _, _ := newMoodSvc(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "p.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg"), 0o600))

	m, err := svc.CreateMood(ctx, newEntry("2024-05-01", common.MoodHappy))
	require.NoError(t, err)
	_, err = svc.AttachPhoto(ctx, m.ID, path)
	require.NoError(t, err)

	require.NoError(t, svc.SyncMoodsFromBackend(ctx))
	list, err := svc.ListMoods(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].PhotoPath)
	assert.Equal(t, path, *list[0].PhotoPath)
	require.NotNil(t, list[0].PhotoURL)
}

func TestAttachPhoto(t *testing.T) {
	svc, _, fr := newMoodSvc(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "p.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg"), 0o600))

	m, err := svc.CreateMood(ctx, newEntry("2024-05-01", common.MoodHappy))
	require.NoError(t, err)

	var uploaded []byte
	svc.upload = func(_ context.Context, url string, body []byte) error {
		assert.Equal(t, "https://s3.local/put", url)
		uploaded = body
		return nil
	}

	up, err := svc.AttachPhoto(ctx, m.ID, path)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), uploaded)
	assert.True(t, up.IsSynced)
	require.NotNil(t, up.PhotoURL)
	assert.Equal(t, "users/1/2024/05/01/photo", *fr.moods[*up.ServerID].PhotoURL)
}

func TestAttachPhoto_UploadFailureRetriedBySync(t *testing.T) {
	svc, st, fr := newMoodSvc(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "p.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg"), 0o600))

	m, err := svc.CreateMood(ctx, newEntry("2024-05-01", common.MoodHappy))
	require.NoError(t, err)

	svc.upload = func(context.Context, string, []byte) error { return errors.New("403") }
	up, err := svc.AttachPhoto(ctx, m.ID, path)
	require.NoError(t, err)
	assert.False(t, up.IsSynced)
	assert.Nil(t, up.PhotoURL)
	assert.Equal(t, path, *up.PhotoPath)

	svc.upload = func(context.Context, string, []byte) error { return nil }
	n, err := svc.SyncUnsyncedMoods(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := st.Get(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PhotoURL)
	assert.NotNil(t, fr.moods[*stored.ServerID].PhotoURL)
}

func TestAttachPhoto_MissingFile(t *testing.T) {
	svc, _, _ := newMoodSvc(t)
	_, err := svc.AttachPhoto(context.Background(), 1, filepath.Join(t.TempDir(), "nope.jpg"))
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestConcurrentEditsAndSync(t *testing.T) {
	svc, st, fr := newMoodSvc(t)
	ctx := context.Background()

	fr.setOffline(true)
	var ids []*models.MoodEntry
	for i := 0; i < 5; i++ {
		m, err := svc.CreateMood(ctx, newEntry("2024-05-01", common.MoodHappy))
		require.NoError(t, err)
		ids = append(ids, m)
	}
	fr.setOffline(false)

	var wg sync.WaitGroup
	for _, m := range ids {
		wg.Add(1)
		go func(m *models.MoodEntry) {
			defer wg.Done()
			c := m.Clone()
			c.MoodType = common.MoodCalm
			_, err := svc.UpdateMood(ctx, c)
			assert.NoError(t, err)
		}(m)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.SyncUnsyncedMoods(ctx)
		assert.NoError(t, err)
	}()
	wg.Wait()

	_, err := svc.SyncUnsyncedMoods(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.SyncMoodsFromBackend(ctx))

	list, err := st.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 5)
	assert.Equal(t, 5, fr.serverCount())
	for _, m := range list {
		assert.True(t, m.IsSynced)
		assert.Equal(t, common.MoodCalm, m.MoodType)
	}
	assert.Zero(t, svc.entries.size())
}

func TestSubscribeSeesPendingChanges(t *testing.T) {
	svc, _, fr := newMoodSvc(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := svc.Subscribe(ctx)
	require.NoError(t, err)
	assert.Empty(t, <-ch)

	fr.setOffline(true)
	_, err = svc.CreateMood(context.Background(), newEntry("2024-05-01", common.MoodHappy))
	require.NoError(t, err)

	list := <-ch
	require.Len(t, list, 1)
	assert.False(t, list[0].IsSynced)
}

func TestCreateMood_ActivitiesCheckedAgainstCatalog(t *testing.T) {
	svc, _, fr := newMoodSvc(t)
	ctx := context.Background()
	require.NoError(t, svc.RefreshActivities(ctx))

	in := newEntry("2024-05-01", common.MoodHappy)
	in.Activities = []string{"runing"}
	_, err := svc.CreateMood(ctx, in)
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Zero(t, fr.createCalls)

	in.Activities = []string{" Work", "work", "", "exercise "}
	m, err := svc.CreateMood(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"work", "exercise"}, m.Activities)
	assert.True(t, m.IsSynced)
}

func TestCreateMood_WithoutCatalogOnlyLimitsApply(t *testing.T) {
	svc, _, fr := newMoodSvc(t)
	ctx := context.Background()
	fr.setOffline(true)
	require.Error(t, svc.RefreshActivities(ctx))

	in := newEntry("2024-05-01", common.MoodHappy)
	in.Activities = []string{"gardening"}
	m, err := svc.CreateMood(ctx, in)
	require.NoError(t, err)
	assert.False(t, m.IsSynced)
}

// insertHookStore runs afterInsert once the row is committed.
type insertHookStore struct {
	*store.Store
	afterInsert func()
}

func (s *insertHookStore) Insert(ctx context.Context, m *models.MoodEntry) (*models.MoodEntry, error) {
	saved, err := s.Store.Insert(ctx, m)
	if err == nil && s.afterInsert != nil {
		hook := s.afterInsert
		s.afterInsert = nil
		hook()
	}
	return saved, err
}

func TestCreateMood_SyncBetweenInsertAndPushCreatesOnce(t *testing.T) {
	st := &insertHookStore{Store: newTestStore(t)}
	fr := newFakeRemote()
	svc := NewMoodService(st, fr, logging.Nop())
	svc.upload = func(context.Context, string, []byte) error { return nil }
	ctx := context.Background()

	var background int
	var syncErr error
	st.afterInsert = func() {
		background, syncErr = svc.SyncUnsyncedMoods(ctx)
	}

	m, err := svc.CreateMood(ctx, newEntry("2024-05-01", common.MoodHappy))
	require.NoError(t, err)
	require.NoError(t, syncErr)
	assert.Equal(t, 1, background)

	assert.Equal(t, 1, fr.createCalls)
	assert.Equal(t, 1, fr.serverCount())
	assert.True(t, m.IsSynced)
	require.NotNil(t, m.ServerID)
	assert.Equal(t, int64(101), *m.ServerID)
}

func TestUpdateMood_StaleCopyKeepsUploadedPhoto(t *testing.T) {
	svc, st, fr := newMoodSvc(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "p.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg"), 0o600))

	m, err := svc.CreateMood(ctx, newEntry("2024-05-01", common.MoodHappy))
	require.NoError(t, err)

	svc.upload = func(context.Context, string, []byte) error { return errors.New("403") }
	_, err = svc.AttachPhoto(ctx, m.ID, path)
	require.NoError(t, err)

	stale, err := svc.GetMood(ctx, m.ID)
	require.NoError(t, err)
	require.Nil(t, stale.PhotoURL)

	uploads := 0
	svc.upload = func(context.Context, string, []byte) error { uploads++; return nil }
	n, err := svc.SyncUnsyncedMoods(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, 1, uploads)

	note := "after the walk"
	stale.Note = &note
	up, err := svc.UpdateMood(ctx, stale)
	require.NoError(t, err)
	assert.Equal(t, 1, uploads)
	require.NotNil(t, up.PhotoURL)
	assert.Equal(t, "users/1/2024/05/01/photo", *up.PhotoURL)

	stored, err := st.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSynced)
	require.NotNil(t, stored.PhotoURL)
	assert.NotNil(t, fr.moods[*stored.ServerID].PhotoURL)
}
