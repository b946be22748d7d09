package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/moodkeeper/internal/server/repositories/activities"
	"github.com/dmitrijs2005/moodkeeper/internal/server/repositories/moods"
	"github.com/dmitrijs2005/moodkeeper/internal/server/repositories/stats"
	"github.com/dmitrijs2005/moodkeeper/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	var m RepositoryManager = NewPostgresRepositoryManager()

	if _, ok := m.Users(db).(*users.PostgresRepository); !ok {
		t.Fatal("Users() is not a postgres repository")
	}
	if _, ok := m.Moods(db).(*moods.PostgresRepository); !ok {
		t.Fatal("Moods() is not a postgres repository")
	}
	if _, ok := m.Activities(db).(*activities.PostgresRepository); !ok {
		t.Fatal("Activities() is not a postgres repository")
	}
	if _, ok := m.Stats(db).(*stats.PostgresRepository); !ok {
		t.Fatal("Stats() is not a postgres repository")
	}
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	if err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	if err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}
