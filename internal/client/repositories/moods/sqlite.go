package moods

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dmitrijs2005/moodkeeper/internal/client/models"
	"github.com/dmitrijs2005/moodkeeper/internal/common"
	"github.com/dmitrijs2005/moodkeeper/internal/dbx"
)

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

const selectColumns = `SELECT id, server_id, mood_type, note, photo_path, photo_url,
	entry_date, entry_time, activities, is_synced, created_at FROM mood_entries`

const displayOrder = ` ORDER BY entry_date DESC, entry_time DESC, id DESC`

type rowScanner interface {
	Scan(dest ...any) error
}

func encodeActivities(a []string) (string, error) {
	if a == nil {
		a = []string{}
	}
	return sonic.MarshalString(a)
}

func scanEntry(s rowScanner) (*models.MoodEntry, error) {
	var (
		m          models.MoodEntry
		serverID   sql.NullInt64
		note       sql.NullString
		photoPath  sql.NullString
		photoURL   sql.NullString
		moodType   string
		activities string
		createdAt  int64
	)
	if err := s.Scan(&m.ID, &serverID, &moodType, &note, &photoPath, &photoURL,
		&m.EntryDate, &m.EntryTime, &activities, &m.IsSynced, &createdAt); err != nil {
		return nil, err
	}

	m.MoodType = common.MoodType(moodType)
	if serverID.Valid {
		m.ServerID = &serverID.Int64
	}
	m.Note = nullToPtr(note)
	m.PhotoPath = nullToPtr(photoPath)
	m.PhotoURL = nullToPtr(photoURL)
	m.CreatedAt = time.UnixMilli(createdAt).UTC()

	if err := sonic.UnmarshalString(activities, &m.Activities); err != nil {
		return nil, fmt.Errorf("decode activities of entry %d: %w", m.ID, err)
	}
	return &m, nil
}

func nullToPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]*models.MoodEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select moods: %w", err)
	}
	defer rows.Close()

	var result []*models.MoodEntry
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mood: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate moods: %w", err)
	}
	return result, nil
}

// Insert stores m and assigns its ID and CreatedAt. A CreatedAt that is
// already set is kept, which lets bulk imports preserve their timestamps.
func (r *SQLiteRepository) Insert(ctx context.Context, m *models.MoodEntry) (int64, error) {
	activities, err := encodeActivities(m.Activities)
	if err != nil {
		return 0, fmt.Errorf("encode activities: %w", err)
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = r.now().UTC()
	}

	res, err := r.db.ExecContext(ctx, `INSERT INTO mood_entries
		(server_id, mood_type, note, photo_path, photo_url, entry_date, entry_time, activities, is_synced, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ServerID, string(m.MoodType), m.Note, m.PhotoPath, m.PhotoURL,
		m.EntryDate, m.EntryTime, activities, m.IsSynced, m.CreatedAt.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to insert mood: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	m.ID = id
	return id, nil
}

// Update rewrites every mutable column of the row with m.ID. created_at is
// never touched.
func (r *SQLiteRepository) Update(ctx context.Context, m *models.MoodEntry) error {
	activities, err := encodeActivities(m.Activities)
	if err != nil {
		return fmt.Errorf("encode activities: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `UPDATE mood_entries SET
		server_id = ?, mood_type = ?, note = ?, photo_path = ?, photo_url = ?,
		entry_date = ?, entry_time = ?, activities = ?, is_synced = ?
		WHERE id = ?`,
		m.ServerID, string(m.MoodType), m.Note, m.PhotoPath, m.PhotoURL,
		m.EntryDate, m.EntryTime, activities, m.IsSynced, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update mood %d: %w", m.ID, err)
	}
	return dbx.RequireAffected(res)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM mood_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete mood %d: %w", id, err)
	}
	return dbx.RequireAffected(res)
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM mood_entries`); err != nil {
		return fmt.Errorf("failed to clear moods: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*models.MoodEntry, error) {
	m, err := scanEntry(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mood %d: %w", id, err)
	}
	return m, nil
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]*models.MoodEntry, error) {
	return r.list(ctx, selectColumns+displayOrder)
}

// ListUnsynced returns pending rows oldest first, so they reach the server
// in creation order.
func (r *SQLiteRepository) ListUnsynced(ctx context.Context) ([]*models.MoodEntry, error) {
	return r.list(ctx, selectColumns+` WHERE is_synced = 0 ORDER BY created_at ASC, id ASC`)
}

// ListByDateRange returns entries with from <= entry_date <= to. Either bound
// may be empty.
func (r *SQLiteRepository) ListByDateRange(ctx context.Context, from, to string) ([]*models.MoodEntry, error) {
	query := selectColumns + ` WHERE (? = '' OR entry_date >= ?) AND (? = '' OR entry_date <= ?)` + displayOrder
	return r.list(ctx, query, from, from, to, to)
}

func (r *SQLiteRepository) count(ctx context.Context, query string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count moods: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM mood_entries`)
}

func (r *SQLiteRepository) CountUnsynced(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM mood_entries WHERE is_synced = 0`)
}
