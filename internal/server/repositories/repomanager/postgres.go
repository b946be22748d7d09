// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/moodkeeper/internal/dbx"
	"github.com/dmitrijs2005/moodkeeper/internal/server/migrations"
	"github.com/dmitrijs2005/moodkeeper/internal/server/repositories/activities"
	"github.com/dmitrijs2005/moodkeeper/internal/server/repositories/moods"
	"github.com/dmitrijs2005/moodkeeper/internal/server/repositories/stats"
	"github.com/dmitrijs2005/moodkeeper/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Moods(db dbx.DBTX) moods.Repository {
	return moods.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Activities(db dbx.DBTX) activities.Repository {
	return activities.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Stats(db dbx.DBTX) stats.Repository {
	return stats.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema with the pgx dialect.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}
