package stats

import (
	"context"

	"github.com/dmitrijs2005/moodkeeper/internal/server/models"
)

// Repository runs aggregate queries over a user's entries. since is a
// YYYY-MM-DD lower bound on entry_date; an empty since covers all entries.
type Repository interface {
	Distribution(ctx context.Context, userID int64, since string) ([]models.MoodCount, error)
	Trend(ctx context.Context, userID int64, since string) ([]models.TrendPoint, error)
	TopActivities(ctx context.Context, userID int64, since string, limit int) ([]models.ActivityFrequency, error)
	CountSince(ctx context.Context, userID int64, since string) (int64, error)
	MostFrequent(ctx context.Context, userID int64) (*models.MoodCount, error)
}
