package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/moodkeeper/internal/common"
	"github.com/dmitrijs2005/moodkeeper/internal/dbx"
	"github.com/dmitrijs2005/moodkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// scope returns the WHERE clause and args shared by every stats query.
func scope(userID int64, since string) (string, []any) {
	if since == "" {
		return "WHERE m.user_id = $1", []any{userID}
	}
	return "WHERE m.user_id = $1 AND m.entry_date >= $2", []any{userID, since}
}

func (r *PostgresRepository) Distribution(ctx context.Context, userID int64, since string) ([]models.MoodCount, error) {
	where, args := scope(userID, since)
	query := `SELECT m.mood_type, COUNT(*) FROM mood_entries m ` + where +
		` GROUP BY m.mood_type ORDER BY COUNT(*) DESC, m.mood_type`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.MoodCount, 0)
	for rows.Next() {
		var mt string
		var c int64
		if err := rows.Scan(&mt, &c); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, models.MoodCount{MoodType: common.MoodType(mt), Count: c})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Trend(ctx context.Context, userID int64, since string) ([]models.TrendPoint, error) {
	where, args := scope(userID, since)
	query := `SELECT to_char(m.entry_date, 'YYYY-MM-DD'), m.mood_type, COUNT(*) FROM mood_entries m ` + where +
		` GROUP BY m.entry_date, m.mood_type ORDER BY m.entry_date ASC, m.mood_type`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.TrendPoint, 0)
	for rows.Next() {
		var p models.TrendPoint
		var mt string
		if err := rows.Scan(&p.EntryDate, &mt, &p.Count); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		p.MoodType = common.MoodType(mt)
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) TopActivities(ctx context.Context, userID int64, since string, limit int) ([]models.ActivityFrequency, error) {
	where, args := scope(userID, since)
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT a.name, a.icon, COUNT(*) FROM mood_activities ma
		 JOIN mood_entries m ON m.id = ma.mood_entry_id
		 JOIN activities a ON a.id = ma.activity_id
		 %s GROUP BY a.name, a.icon ORDER BY COUNT(*) DESC, a.name LIMIT $%d`, where, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.ActivityFrequency, 0)
	for rows.Next() {
		var f models.ActivityFrequency
		if err := rows.Scan(&f.Name, &f.Icon, &f.Frequency); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) CountSince(ctx context.Context, userID int64, since string) (int64, error) {
	where, args := scope(userID, since)
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM mood_entries m `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// MostFrequent returns nil when the user has no entries.
func (r *PostgresRepository) MostFrequent(ctx context.Context, userID int64) (*models.MoodCount, error) {
	query := `SELECT m.mood_type, COUNT(*) FROM mood_entries m WHERE m.user_id = $1
		 GROUP BY m.mood_type ORDER BY COUNT(*) DESC, m.mood_type LIMIT 1`

	var mt string
	var c int64
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&mt, &c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &models.MoodCount{MoodType: common.MoodType(mt), Count: c}, nil
}
