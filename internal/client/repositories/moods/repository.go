// Package moods stores mood entries in the local SQLite database.
package moods

import (
	"context"

	"github.com/dmitrijs2005/moodkeeper/internal/client/models"
)

// Repository is the SQL contract of the local mood table. Implementations
// bind to a dbx.DBTX so every method also runs inside a transaction.
type Repository interface {
	Insert(ctx context.Context, m *models.MoodEntry) (int64, error)
	Update(ctx context.Context, m *models.MoodEntry) error
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	Get(ctx context.Context, id int64) (*models.MoodEntry, error)
	ListAll(ctx context.Context) ([]*models.MoodEntry, error)
	ListUnsynced(ctx context.Context) ([]*models.MoodEntry, error)
	ListByDateRange(ctx context.Context, from, to string) ([]*models.MoodEntry, error)
	Count(ctx context.Context) (int, error)
	CountUnsynced(ctx context.Context) (int, error)
}
