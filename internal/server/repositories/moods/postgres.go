// Package moods provides the PostgreSQL-backed mood entry repository.
package moods

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

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

const selectMood = `SELECT m.id, m.user_id, m.mood_type, m.note, m.photo_url,
		 to_char(m.entry_date, 'YYYY-MM-DD'), to_char(m.entry_time, 'HH24:MI:SS'),
		 m.created_at, m.updated_at,
		 COALESCE(string_agg(a.name, ',' ORDER BY a.name), '')
		 FROM mood_entries m
		 LEFT JOIN mood_activities ma ON ma.mood_entry_id = m.id
		 LEFT JOIN activities a ON a.id = ma.activity_id
		 `

func (r *PostgresRepository) Create(ctx context.Context, mood *models.Mood) (*models.Mood, error) {

	query :=
		`INSERT INTO mood_entries (user_id, mood_type, note, photo_url, entry_date, entry_time)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		mood.UserID, string(mood.MoodType), mood.Note, mood.PhotoURL, mood.EntryDate, mood.EntryTime).
		Scan(&mood.ID, &mood.CreatedAt, &mood.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return mood, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID int64, filter models.MoodFilter) ([]*models.Mood, error) {

	var sb strings.Builder
	sb.WriteString(selectMood)
	sb.WriteString("WHERE m.user_id = $1")

	args := []any{userID}
	if filter.StartDate != "" {
		args = append(args, filter.StartDate)
		fmt.Fprintf(&sb, " AND m.entry_date >= $%d", len(args))
	}
	if filter.EndDate != "" {
		args = append(args, filter.EndDate)
		fmt.Fprintf(&sb, " AND m.entry_date <= $%d", len(args))
	}

	args = append(args, filter.Limit, filter.Offset)
	fmt.Fprintf(&sb,
		" GROUP BY m.id ORDER BY m.entry_date DESC, m.entry_time DESC, m.id DESC LIMIT $%d OFFSET $%d",
		len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Mood, 0)
	for rows.Next() {
		m, err := scanMood(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id int64) (*models.Mood, error) {

	query := selectMood + `WHERE m.id = $1 AND m.user_id = $2
		 GROUP BY m.id`

	m, err := scanMood(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}

// Update applies the non-nil fields of patch and bumps updated_at. An empty
// Note or PhotoURL is stored as NULL.
func (r *PostgresRepository) Update(ctx context.Context, userID, id int64, patch models.MoodPatch) error {

	sets := []string{}
	args := []any{}

	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.MoodType != nil {
		add("mood_type", string(*patch.MoodType))
	}
	if patch.Note != nil {
		add("note", nullIfEmpty(*patch.Note))
	}
	if patch.PhotoURL != nil {
		add("photo_url", nullIfEmpty(*patch.PhotoURL))
	}
	if patch.EntryDate != nil {
		add("entry_date", *patch.EntryDate)
	}
	if patch.EntryTime != nil {
		add("entry_time", *patch.EntryTime)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id, userID)
	query := fmt.Sprintf("UPDATE mood_entries SET %s WHERE id = $%d AND user_id = $%d",
		strings.Join(sets, ", "), len(args)-1, len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return dbx.RequireAffected(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id int64) error {

	query :=
		`DELETE FROM mood_entries
		 WHERE id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return dbx.RequireAffected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMood(s scanner) (*models.Mood, error) {
	m := &models.Mood{}
	var moodType, activities string
	var note, photoURL sql.NullString

	err := s.Scan(&m.ID, &m.UserID, &moodType, &note, &photoURL,
		&m.EntryDate, &m.EntryTime, &m.CreatedAt, &m.UpdatedAt, &activities)
	if err != nil {
		return nil, err
	}

	m.MoodType = common.MoodType(moodType)
	if note.Valid {
		m.Note = &note.String
	}
	if photoURL.Valid {
		m.PhotoURL = &photoURL.String
	}
	m.Activities = splitNames(activities)

	return m, nil
}

func splitNames(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
