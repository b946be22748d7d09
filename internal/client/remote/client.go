// Package remote talks to the moodkeeper REST API and probes its gRPC health
// endpoint.
package remote

import (
	"context"

	"github.com/dmitrijs2005/moodkeeper/internal/api"
)

// Client is the backend API as seen by the client services.
//
// Transport failures and timeouts match common.ErrNetwork. Non-2xx answers
// are *APIError values matching the sentinel for their status code.
type Client interface {
	Register(ctx context.Context, email, password, username string) (*api.AuthData, error)
	Login(ctx context.Context, email, password string) (*api.AuthData, error)
	GetProfile(ctx context.Context) (*api.Profile, error)
	ChangePassword(ctx context.Context, current, next string) error

	CreateMood(ctx context.Context, req api.MoodRequest) (int64, error)
	ListMoods(ctx context.Context, filter api.MoodFilter) ([]api.MoodResponse, error)
	ListAllMoods(ctx context.Context) ([]api.MoodResponse, error)
	GetMood(ctx context.Context, id int64) (*api.MoodResponse, error)
	UpdateMood(ctx context.Context, serverID int64, req api.MoodRequest) error
	DeleteMood(ctx context.Context, serverID int64) error
	PresignPhotoUpload(ctx context.Context) (*api.PhotoUpload, error)

	GetStats(ctx context.Context, period string) (*api.MoodStats, error)
	GetSummary(ctx context.Context) (*api.Summary, error)
	ListActivities(ctx context.Context) ([]api.Activity, error)

	Ping(ctx context.Context) error
}

// TokenSource yields the bearer token for the next request, or "" when
// logged out.
type TokenSource func() string
