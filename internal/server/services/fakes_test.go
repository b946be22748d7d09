package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/moodkeeper/internal/common"
	"github.com/dmitrijs2005/moodkeeper/internal/dbx"
	"github.com/dmitrijs2005/moodkeeper/internal/server/config"
	"github.com/dmitrijs2005/moodkeeper/internal/server/models"
	"github.com/dmitrijs2005/moodkeeper/internal/server/repositories/activities"
	"github.com/dmitrijs2005/moodkeeper/internal/server/repositories/moods"
	"github.com/dmitrijs2005/moodkeeper/internal/server/repositories/stats"
	"github.com/dmitrijs2005/moodkeeper/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                   "k",
		AccessTokenValidityDuration: time.Hour,
		S3Region:                    "us-east-1",
		S3RootUser:                  "minioadmin",
		S3RootPassword:              "minioadmin",
		S3BaseEndpoint:              "http://127.0.0.1:9000",
		S3Bucket:                    "moods",
	}
}

// fakeRepoManager hands out whichever fakes a test sets; nil ones panic on use.
type fakeRepoManager struct {
	users      users.Repository
	moods      moods.Repository
	activities activities.Repository
	stats      stats.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository             { return m.users }
func (m *fakeRepoManager) Moods(dbx.DBTX) moods.Repository             { return m.moods }
func (m *fakeRepoManager) Activities(dbx.DBTX) activities.Repository   { return m.activities }
func (m *fakeRepoManager) Stats(dbx.DBTX) stats.Repository             { return m.stats }

type fakeUsersRepo struct {
	users.Repository

	byEmail map[string]*models.User
	byID    map[int64]*models.User
	nextID  int64

	createErr error
	getErr    error
	updateErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byEmail: map[string]*models.User{}, byID: map[int64]*models.User{}}
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) UpdatePassword(_ context.Context, id int64, hash []byte) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	u, ok := f.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

type fakeStatsRepo struct {
	stats.Repository

	sinceSeen []string
	count     map[string]int64
	top       *models.MoodCount
	err       error
}

func (f *fakeStatsRepo) Distribution(_ context.Context, _ int64, since string) ([]models.MoodCount, error) {
	f.sinceSeen = append(f.sinceSeen, "dist:"+since)
	return []models.MoodCount{{MoodType: "happy", Count: 2}}, f.err
}

func (f *fakeStatsRepo) Trend(_ context.Context, _ int64, since string) ([]models.TrendPoint, error) {
	f.sinceSeen = append(f.sinceSeen, "trend:"+since)
	return []models.TrendPoint{}, nil
}

func (f *fakeStatsRepo) TopActivities(_ context.Context, _ int64, since string, limit int) ([]models.ActivityFrequency, error) {
	f.sinceSeen = append(f.sinceSeen, "top:"+since)
	return make([]models.ActivityFrequency, 0, limit), nil
}

func (f *fakeStatsRepo) CountSince(_ context.Context, _ int64, since string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.count[since], nil
}

func (f *fakeStatsRepo) MostFrequent(context.Context, int64) (*models.MoodCount, error) {
	return f.top, nil
}
