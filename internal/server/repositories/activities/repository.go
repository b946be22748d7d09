package activities

import (
	"context"

	"github.com/dmitrijs2005/moodkeeper/internal/server/models"
)

type Repository interface {
	ListAll(ctx context.Context) ([]*models.Activity, error)
	ResolveNames(ctx context.Context, names []string) ([]*models.Activity, error)
	ReplaceForMood(ctx context.Context, moodID int64, activityIDs []int64) error
}
