package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/moodkeeper/internal/api"
	"github.com/dmitrijs2005/moodkeeper/internal/client/remote"
	"github.com/dmitrijs2005/moodkeeper/internal/client/store"
	"github.com/dmitrijs2005/moodkeeper/internal/common"
	"github.com/dmitrijs2005/moodkeeper/internal/logging"
	"github.com/stretchr/testify/require"
)

var errOffline = fmt.Errorf("%w: dial tcp: connection refused", common.ErrNetwork)

// fakeRemote is an in-memory backend. Setting offline makes every call fail
// like an unreachable server.
type fakeRemote struct {
	remote.Client

	mu      sync.Mutex
	offline bool
	nextID  int64
	moods   map[int64]api.MoodRequest
	created time.Time

	createCalls int
	updateCalls int
	deleteCalls int
	deleteErr   error
	presignErr  error
	listErr     error

	activitiesErr error

	authData *api.AuthData
	authErr  error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		nextID:  100,
		moods:   make(map[int64]api.MoodRequest),
		created: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (f *fakeRemote) setOffline(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offline = v
}

func (f *fakeRemote) CreateMood(_ context.Context, req api.MoodRequest) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.offline {
		return 0, errOffline
	}
	f.nextID++
	f.moods[f.nextID] = req
	return f.nextID, nil
}

func (f *fakeRemote) UpdateMood(_ context.Context, id int64, req api.MoodRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.offline {
		return errOffline
	}
	if _, ok := f.moods[id]; !ok {
		return &remote.APIError{StatusCode: 404, Message: "Mood entry not found"}
	}
	f.moods[id] = req
	return nil
}

func (f *fakeRemote) DeleteMood(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.offline {
		return errOffline
	}
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.moods, id)
	return nil
}

func (f *fakeRemote) ListAllMoods(context.Context) ([]api.MoodResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, errOffline
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	ids := make([]int64, 0, len(f.moods))
	for id := range f.moods {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]api.MoodResponse, 0, len(ids))
	for _, id := range ids {
		r := f.moods[id]
		activities := r.Activities
		if activities == nil {
			activities = []string{}
		}
		out = append(out, api.MoodResponse{
			ID: id, MoodType: r.MoodType, Note: r.Note, PhotoURL: r.PhotoURL,
			EntryDate: r.EntryDate, EntryTime: r.EntryTime, Activities: activities,
			CreatedAt: f.created, UpdatedAt: f.created,
		})
	}
	return out, nil
}

func (f *fakeRemote) PresignPhotoUpload(context.Context) (*api.PhotoUpload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, errOffline
	}
	if f.presignErr != nil {
		return nil, f.presignErr
	}
	return &api.PhotoUpload{Key: "users/1/2024/05/01/photo", URL: "https://s3.local/put", ExpiresAt: f.created}, nil
}

func (f *fakeRemote) ListActivities(context.Context) ([]api.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, errOffline
	}
	if f.activitiesErr != nil {
		return nil, f.activitiesErr
	}
	return []api.Activity{
		{ID: 1, Name: "work", Icon: "💼"},
		{ID: 2, Name: "exercise", Icon: "🏃"},
		{ID: 3, Name: "family", Icon: "👪"},
	}, nil
}

func (f *fakeRemote) Register(_ context.Context, email, _, username string) (*api.AuthData, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	if f.authData != nil {
		return f.authData, nil
	}
	return &api.AuthData{UserID: 1, Email: email, Username: username, Token: "tok-1"}, nil
}

func (f *fakeRemote) Login(_ context.Context, email, _ string) (*api.AuthData, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	if f.authData != nil {
		return f.authData, nil
	}
	return &api.AuthData{UserID: 1, Email: email, Username: "alice", Token: "tok-1"}, nil
}

func (f *fakeRemote) GetStats(_ context.Context, period string) (*api.MoodStats, error) {
	return &api.MoodStats{Period: period}, nil
}

func (f *fakeRemote) serverCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.moods)
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), ":memory:", logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newMoodSvc(t *testing.T) (*MoodService, *store.Store, *fakeRemote) {
	t.Helper()
	st := newTestStore(t)
	fr := newFakeRemote()
	svc := NewMoodService(st, fr, logging.Nop())
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC) }
	svc.upload = func(context.Context, string, []byte) error { return nil }
	return svc, st, fr
}
