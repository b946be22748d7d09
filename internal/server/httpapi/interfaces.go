package httpapi

import (
	"context"

	"github.com/dmitrijs2005/moodkeeper/internal/api"
	"github.com/dmitrijs2005/moodkeeper/internal/server/models"
)

type UserService interface {
	Register(ctx context.Context, req api.RegisterRequest) (*models.User, string, error)
	Login(ctx context.Context, req api.LoginRequest) (*models.User, string, error)
	Profile(ctx context.Context, userID int64) (*models.User, error)
	ChangePassword(ctx context.Context, userID int64, req api.ChangePasswordRequest) error
}

type MoodService interface {
	Create(ctx context.Context, userID int64, req api.MoodRequest) (int64, error)
	List(ctx context.Context, userID int64, filter api.MoodFilter) ([]*models.Mood, error)
	Get(ctx context.Context, userID, id int64) (*models.Mood, error)
	Update(ctx context.Context, userID, id int64, req api.MoodUpdateRequest) error
	Delete(ctx context.Context, userID, id int64) error
	PresignPhotoUpload(ctx context.Context, userID int64) (*api.PhotoUpload, error)
}

type StatsService interface {
	MoodStats(ctx context.Context, userID int64, period string) (*models.MoodStats, error)
	Activities(ctx context.Context) ([]*models.Activity, error)
	Summary(ctx context.Context, userID int64) (*models.Summary, error)
}

// Pinger reports database reachability for /health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

