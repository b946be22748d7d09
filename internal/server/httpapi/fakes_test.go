package httpapi

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/moodkeeper/internal/api"
	"github.com/dmitrijs2005/moodkeeper/internal/common"
	"github.com/dmitrijs2005/moodkeeper/internal/server/models"
)

type fakeUserService struct {
	registerErr error
}

func (f *fakeUserService) Register(_ context.Context, req api.RegisterRequest) (*models.User, string, error) {
	if f.registerErr != nil {
		return nil, "", f.registerErr
	}
	return &models.User{ID: 7, Email: req.Email, Username: req.Username}, "tok", nil
}

func (f *fakeUserService) Login(_ context.Context, req api.LoginRequest) (*models.User, string, error) {
	if req.Password != "secret1" {
		return nil, "", common.NewPublicError(common.ErrUnauthorized, "Invalid email or password")
	}
	return &models.User{ID: 7, Email: req.Email, Username: "alice"}, "tok", nil
}

func (f *fakeUserService) Profile(_ context.Context, userID int64) (*models.User, error) {
	return &models.User{ID: userID, Email: "a@example.com", Username: "alice", CreatedAt: time.Unix(0, 0).UTC()}, nil
}

func (f *fakeUserService) ChangePassword(context.Context, int64, api.ChangePasswordRequest) error {
	return nil
}

// fakeMoodService stores moods per owner in memory.
type fakeMoodService struct {
	mu      sync.Mutex
	nextID  int64
	moods   map[int64]*models.Mood
	created int
	panicky bool
}

func newFakeMoodService() *fakeMoodService {
	return &fakeMoodService{moods: make(map[int64]*models.Mood)}
}

func (f *fakeMoodService) Create(_ context.Context, userID int64, req api.MoodRequest) (int64, error) {
	if f.panicky {
		panic("boom")
	}
	mt, err := common.ParseMoodType(req.MoodType)
	if err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.created++
	f.moods[f.nextID] = &models.Mood{ID: f.nextID, UserID: userID, MoodType: mt, EntryDate: req.EntryDate, EntryTime: "08:00:00"}
	return f.nextID, nil
}

func (f *fakeMoodService) List(_ context.Context, userID int64, filter api.MoodFilter) ([]*models.Mood, error) {
	if filter.Limit > api.MaxListLimit {
		return nil, common.NewValidationError("limit", "must be between 1 and 100")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Mood
	for _, m := range f.moods {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMoodService) owned(userID, id int64) (*models.Mood, error) {
	m, ok := f.moods[id]
	if !ok || m.UserID != userID {
		return nil, common.NewPublicError(common.ErrNotFound, "Mood entry not found")
	}
	return m, nil
}

func (f *fakeMoodService) Get(_ context.Context, userID, id int64) (*models.Mood, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.owned(userID, id)
}

func (f *fakeMoodService) Update(_ context.Context, userID, id int64, req api.MoodUpdateRequest) error {
	if req.Empty() {
		return common.NewValidationError("", "No fields to update")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.owned(userID, id)
	if err != nil {
		return err
	}
	if req.Note != nil {
		m.Note = req.Note
	}
	return nil
}

func (f *fakeMoodService) Delete(_ context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.owned(userID, id); err != nil {
		return err
	}
	delete(f.moods, id)
	return nil
}

func (f *fakeMoodService) PresignPhotoUpload(_ context.Context, userID int64) (*api.PhotoUpload, error) {
	return &api.PhotoUpload{Key: "users/1/k", URL: "https://s3.local/put", ExpiresAt: time.Unix(900, 0).UTC()}, nil
}

type fakeStatsService struct {
	period string
}

func (f *fakeStatsService) MoodStats(_ context.Context, _ int64, period string) (*models.MoodStats, error) {
	if _, ok := common.PeriodDays(period); !ok {
		return nil, common.NewValidationError("period", "must be one of 7d, 30d, all")
	}
	f.period = period
	return &models.MoodStats{
		Distribution: []models.MoodCount{{MoodType: common.MoodHappy, Count: 2}},
		TotalEntries: 2,
		Period:       period,
	}, nil
}

func (f *fakeStatsService) Activities(context.Context) ([]*models.Activity, error) {
	return []*models.Activity{{ID: 1, Name: "exercise", Icon: "🏃"}}, nil
}

func (f *fakeStatsService) Summary(context.Context, int64) (*models.Summary, error) {
	return nil, errors.New("connection reset by peer")
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }
