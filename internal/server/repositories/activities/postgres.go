// Package activities provides access to the seeded activity catalog and the
// mood_activities join table.
package activities

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/moodkeeper/internal/dbx"
	"github.com/dmitrijs2005/moodkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.Activity, error) {
	query :=
		`SELECT id, name, icon FROM activities
		 ORDER BY name
		 `
	return r.query(ctx, query)
}

// ResolveNames returns the catalog rows whose names appear in names. Unknown
// names are simply missing from the result.
func (r *PostgresRepository) ResolveNames(ctx context.Context, names []string) ([]*models.Activity, error) {
	if len(names) == 0 {
		return []*models.Activity{}, nil
	}

	placeholders := make([]string, len(names))
	args := make([]any, len(names))
	for i, n := range names {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = n
	}

	query := fmt.Sprintf("SELECT id, name, icon FROM activities WHERE name IN (%s) ORDER BY name",
		strings.Join(placeholders, ", "))

	return r.query(ctx, query, args...)
}

// ReplaceForMood drops the mood's links and inserts activityIDs in their
// place. Callers run it inside the same transaction as the mood write.
func (r *PostgresRepository) ReplaceForMood(ctx context.Context, moodID int64, activityIDs []int64) error {

	if _, err := r.db.ExecContext(ctx, `DELETE FROM mood_activities WHERE mood_entry_id = $1`, moodID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	query :=
		`INSERT INTO mood_activities (mood_entry_id, activity_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING
		 `

	for _, id := range activityIDs {
		if _, err := r.db.ExecContext(ctx, query, moodID, id); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}

	return nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.Activity, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Activity, 0)
	for rows.Next() {
		a := &models.Activity{}
		if err := rows.Scan(&a.ID, &a.Name, &a.Icon); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
