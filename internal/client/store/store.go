// Package store is the client's durable, observable mood table.
//
// Every call returns after its write has committed. Repository failures are
// wrapped in common.ErrStorage, except common.ErrNotFound, which passes
// through unchanged.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/moodkeeper/internal/client/models"
	"github.com/dmitrijs2005/moodkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/moodkeeper/internal/client/repositories/moods"
	"github.com/dmitrijs2005/moodkeeper/internal/common"
	"github.com/dmitrijs2005/moodkeeper/internal/dbx"
	"github.com/dmitrijs2005/moodkeeper/internal/logging"
)

type Store struct {
	db     *sql.DB
	logger logging.Logger

	// notifyMu orders snapshot delivery so the last snapshot sent always
	// reflects the last committed mutation.
	notifyMu sync.Mutex
	subs     map[int]chan []*models.MoodEntry
	nextSub  int
}

func New(db *sql.DB, logger logging.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.With("module", "store"),
		subs:   make(map[int]chan []*models.MoodEntry),
	}
}

// Open opens (and migrates) the database at path.
func Open(ctx context.Context, path string, logger logging.Logger) (*Store, error) {
	db, err := OpenDB(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", common.ErrStorage, path, err)
	}
	return New(db, logger), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) moods(db dbx.DBTX) moods.Repository {
	return moods.NewSQLiteRepository(db)
}

// Metadata exposes the key/value table for session persistence.
func (s *Store) Metadata() metadata.Repository {
	return metadata.NewSQLiteRepository(s.db)
}

func wrap(err error) error {
	if err == nil || errors.Is(err, common.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrStorage, err)
}

// Insert stores m as a new row and fills in its ID and CreatedAt.
func (s *Store) Insert(ctx context.Context, m *models.MoodEntry) (*models.MoodEntry, error) {
	c := m.Clone()
	if _, err := s.moods(s.db).Insert(ctx, c); err != nil {
		return nil, wrap(err)
	}
	s.notify(ctx)
	return c, nil
}

func (s *Store) Update(ctx context.Context, m *models.MoodEntry) error {
	if err := s.moods(s.db).Update(ctx, m); err != nil {
		return wrap(err)
	}
	s.notify(ctx)
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := s.moods(s.db).Delete(ctx, id); err != nil {
		return wrap(err)
	}
	s.notify(ctx)
	return nil
}

func (s *Store) DeleteAll(ctx context.Context) error {
	if err := s.moods(s.db).DeleteAll(ctx); err != nil {
		return wrap(err)
	}
	s.notify(ctx)
	return nil
}

// ReplaceAll swaps the whole table for entries in one transaction. Readers
// see either the old rows or the new ones.
func (s *Store) ReplaceAll(ctx context.Context, entries []*models.MoodEntry) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.moods(tx)
		if err := repo.DeleteAll(ctx); err != nil {
			return err
		}
		for _, e := range entries {
			if _, err := repo.Insert(ctx, e.Clone()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return wrap(err)
	}
	s.notify(ctx)
	return nil
}

func (s *Store) Get(ctx context.Context, id int64) (*models.MoodEntry, error) {
	m, err := s.moods(s.db).Get(ctx, id)
	return m, wrap(err)
}

func (s *Store) ListAll(ctx context.Context) ([]*models.MoodEntry, error) {
	list, err := s.moods(s.db).ListAll(ctx)
	return list, wrap(err)
}

func (s *Store) ListUnsynced(ctx context.Context) ([]*models.MoodEntry, error) {
	list, err := s.moods(s.db).ListUnsynced(ctx)
	return list, wrap(err)
}

func (s *Store) ListByDateRange(ctx context.Context, from, to string) ([]*models.MoodEntry, error) {
	list, err := s.moods(s.db).ListByDateRange(ctx, from, to)
	return list, wrap(err)
}

func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.moods(s.db).Count(ctx)
	return n, wrap(err)
}

func (s *Store) CountUnsynced(ctx context.Context) (int, error) {
	n, err := s.moods(s.db).CountUnsynced(ctx)
	return n, wrap(err)
}

// Subscribe returns a channel that receives the current list immediately
// and a fresh one after every committed mutation. A slow reader only ever
// sees the latest list. The channel is closed when ctx is done.
func (s *Store) Subscribe(ctx context.Context) (<-chan []*models.MoodEntry, error) {
	ch := make(chan []*models.MoodEntry, 1)

	s.notifyMu.Lock()
	list, err := s.ListAll(ctx)
	if err != nil {
		s.notifyMu.Unlock()
		return nil, err
	}
	ch <- list
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.notifyMu.Unlock()

	go func() {
		<-ctx.Done()
		s.notifyMu.Lock()
		delete(s.subs, id)
		close(ch)
		s.notifyMu.Unlock()
	}()

	return ch, nil
}

func (s *Store) notify(ctx context.Context) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	if len(s.subs) == 0 {
		return
	}

	// The snapshot is read even when the caller's ctx is already done.
	list, err := s.moods(s.db).ListAll(context.WithoutCancel(ctx))
	if err != nil {
		s.logger.Warn(ctx, "snapshot for subscribers failed", "error", err)
		return
	}

	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- cloneList(list):
		default:
		}
	}
}

func cloneList(list []*models.MoodEntry) []*models.MoodEntry {
	out := make([]*models.MoodEntry, len(list))
	for i, m := range list {
		out[i] = m.Clone()
	}
	return out
}
