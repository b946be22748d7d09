package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/moodkeeper/internal/dbx"
	"github.com/dmitrijs2005/moodkeeper/internal/server/repositories/activities"
	"github.com/dmitrijs2005/moodkeeper/internal/server/repositories/moods"
	"github.com/dmitrijs2005/moodkeeper/internal/server/repositories/stats"
	"github.com/dmitrijs2005/moodkeeper/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a DBTX, so services can
// pass either the pool or a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Moods(db dbx.DBTX) moods.Repository
	Activities(db dbx.DBTX) activities.Repository
	Stats(db dbx.DBTX) stats.Repository
}
