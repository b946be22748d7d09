package moods

import (
	"context"

	"github.com/dmitrijs2005/moodkeeper/internal/server/models"
)

// Repository stores mood entries. Every method is scoped by userID; rows
// owned by someone else behave as absent.
type Repository interface {
	Create(ctx context.Context, mood *models.Mood) (*models.Mood, error)
	List(ctx context.Context, userID int64, filter models.MoodFilter) ([]*models.Mood, error)
	Get(ctx context.Context, userID, id int64) (*models.Mood, error)
	Update(ctx context.Context, userID, id int64, patch models.MoodPatch) error
	Delete(ctx context.Context, userID, id int64) error
}
