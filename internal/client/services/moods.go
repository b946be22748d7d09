// Package services holds the client's use cases: authentication, the
// local-first mood journal and online statistics.
package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/moodkeeper/internal/api"
	"github.com/dmitrijs2005/moodkeeper/internal/client/models"
	"github.com/dmitrijs2005/moodkeeper/internal/client/remote"
	"github.com/dmitrijs2005/moodkeeper/internal/common"
	"github.com/dmitrijs2005/moodkeeper/internal/logging"
	"github.com/dmitrijs2005/moodkeeper/internal/netx"
)

// MoodStore is the local persistence MoodService writes through.
type MoodStore interface {
	Insert(ctx context.Context, m *models.MoodEntry) (*models.MoodEntry, error)
	Update(ctx context.Context, m *models.MoodEntry) error
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	ReplaceAll(ctx context.Context, entries []*models.MoodEntry) error
	Get(ctx context.Context, id int64) (*models.MoodEntry, error)
	ListAll(ctx context.Context) ([]*models.MoodEntry, error)
	ListUnsynced(ctx context.Context) ([]*models.MoodEntry, error)
	ListByDateRange(ctx context.Context, from, to string) ([]*models.MoodEntry, error)
	CountUnsynced(ctx context.Context) (int, error)
	Subscribe(ctx context.Context) (<-chan []*models.MoodEntry, error)
}

// Uploader PUTs a photo to a presigned URL.
type Uploader func(ctx context.Context, url string, body []byte) error

// MoodService is the local-first mood journal. Every write lands in the
// local store first; the backend is then tried and the row is marked synced
// only after the server confirmed it. Remote failures never lose a local
// write.
type MoodService struct {
	store  MoodStore
	remote remote.Client
	logger logging.Logger

	upload Uploader
	now    func() time.Time

	// entries serialises work on one local row, remote leg included.
	entries *keyedMutex
	// gate lets per-entry work run concurrently while a full pull from
	// the backend runs alone.
	gate sync.RWMutex

	catalogMu sync.RWMutex
	// catalog holds the backend's activity names, nil until first fetched.
	catalog map[string]struct{}
}

func NewMoodService(store MoodStore, client remote.Client, logger logging.Logger) *MoodService {
	return &MoodService{
		store:   store,
		remote:  client,
		logger:  logger.With("module", "mood_service"),
		upload:  defaultUploader,
		now:     time.Now,
		entries: newKeyedMutex(),
	}
}

func defaultUploader(ctx context.Context, url string, body []byte) error {
	return netx.UploadToPresignedURL(ctx, nil, url, body)
}

// SetUploader replaces the photo uploader, e.g. to share the API client's
// http.Client.
func (s *MoodService) SetUploader(u Uploader) {
	s.upload = u
}

// prepare validates m and fills in the default entry time. Activities are
// normalised the way the backend stores them and checked against the cached
// catalog when one was fetched.
func (s *MoodService) prepare(m *models.MoodEntry) error {
	mt, err := common.ParseMoodType(string(m.MoodType))
	if err != nil {
		return err
	}
	m.MoodType = mt

	if _, err := time.Parse(common.DateLayout, m.EntryDate); err != nil {
		return common.NewValidationError("entryDate", "must be a date in YYYY-MM-DD format")
	}
	if m.EntryTime == "" {
		m.EntryTime = s.now().Format(common.TimeLayout)
	} else if _, err := time.Parse(common.TimeLayout, m.EntryTime); err != nil {
		return common.NewValidationError("entryTime", "must be a time in HH:MM:SS format")
	}
	if m.Note != nil && utf8.RuneCountInString(*m.Note) > common.MaxNoteLength {
		return common.NewValidationError("note", fmt.Sprintf("must be at most %d characters", common.MaxNoteLength))
	}

	activities, err := s.checkActivities(m.Activities)
	if err != nil {
		return err
	}
	m.Activities = activities
	return nil
}

func (s *MoodService) checkActivities(names []string) ([]string, error) {
	if len(names) == 0 {
		return names, nil
	}

	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		if utf8.RuneCountInString(n) > common.MaxActivityNameLength {
			return nil, common.NewValidationError("activities", fmt.Sprintf("%q is longer than %d characters", n, common.MaxActivityNameLength))
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	if len(out) > common.MaxActivities {
		return nil, common.NewValidationError("activities", fmt.Sprintf("at most %d activities allowed", common.MaxActivities))
	}

	s.catalogMu.RLock()
	defer s.catalogMu.RUnlock()
	if s.catalog != nil {
		for _, n := range out {
			if _, ok := s.catalog[n]; !ok {
				return nil, common.NewValidationError("activities", fmt.Sprintf("unknown activity %q", n))
			}
		}
	}
	return out, nil
}

// RefreshActivities caches the backend's activity catalog. Until the first
// successful call activity names are only checked for count and length.
func (s *MoodService) RefreshActivities(ctx context.Context) error {
	list, err := s.remote.ListActivities(ctx)
	if err != nil {
		return err
	}

	catalog := make(map[string]struct{}, len(list))
	for _, a := range list {
		catalog[strings.ToLower(a.Name)] = struct{}{}
	}

	s.catalogMu.Lock()
	s.catalog = catalog
	s.catalogMu.Unlock()
	return nil
}

// toRequest builds the wire form of m. The local photo path never leaves the
// device; only an uploaded object key is sent.
func toRequest(m *models.MoodEntry) api.MoodRequest {
	return api.MoodRequest{
		MoodType:   string(m.MoodType),
		Note:       m.Note,
		PhotoURL:   m.PhotoURL,
		EntryDate:  m.EntryDate,
		EntryTime:  m.EntryTime,
		Activities: m.Activities,
	}
}

func fromResponse(r api.MoodResponse) *models.MoodEntry {
	id := r.ID
	return &models.MoodEntry{
		ServerID:   &id,
		MoodType:   common.MoodType(r.MoodType),
		Note:       r.Note,
		PhotoURL:   r.PhotoURL,
		EntryDate:  r.EntryDate,
		EntryTime:  r.EntryTime,
		Activities: r.Activities,
		IsSynced:   true,
		CreatedAt:  r.CreatedAt,
	}
}

// CreateMood stores m locally as unsynced and then tries the backend. A
// backend failure is logged and the local copy is returned with a nil error.
func (s *MoodService) CreateMood(ctx context.Context, m *models.MoodEntry) (*models.MoodEntry, error) {
	in := m.Clone()
	if err := s.prepare(in); err != nil {
		return nil, err
	}
	in.ID = 0
	in.ServerID = nil
	in.IsSynced = false

	s.gate.RLock()
	defer s.gate.RUnlock()

	saved, err := s.store.Insert(ctx, in)
	if err != nil {
		return nil, err
	}

	unlock := s.entries.Lock(saved.ID)
	defer unlock()

	// A sync may have pushed the row before the lock was taken.
	current, err := s.store.Get(ctx, saved.ID)
	if err != nil {
		return nil, err
	}
	if current.IsSynced || current.ServerID != nil {
		return current, nil
	}

	if err := s.pushCreate(ctx, current); err != nil {
		if errors.Is(err, common.ErrStorage) {
			return nil, err
		}
		s.logger.Warn(ctx, "mood kept locally, backend create failed", "local_id", current.ID, "error", err)
	}
	return current, nil
}

// pushCreate creates m on the backend and records the server id. m is
// updated in place only after the local row was updated.
func (s *MoodService) pushCreate(ctx context.Context, m *models.MoodEntry) error {
	s.ensurePhoto(ctx, m)

	sid, err := s.remote.CreateMood(ctx, toRequest(m))
	if err != nil {
		return err
	}

	synced := m.Clone()
	synced.ServerID = &sid
	synced.IsSynced = true
	if err := s.store.Update(ctx, synced); err != nil {
		return err
	}
	*m = *synced
	return nil
}

// pushUpdate sends m to the backend and marks it synced.
func (s *MoodService) pushUpdate(ctx context.Context, m *models.MoodEntry) error {
	s.ensurePhoto(ctx, m)

	if err := s.remote.UpdateMood(ctx, *m.ServerID, toRequest(m)); err != nil {
		return err
	}

	synced := m.Clone()
	synced.IsSynced = true
	if err := s.store.Update(ctx, synced); err != nil {
		return err
	}
	*m = *synced
	return nil
}

// UpdateMood stores the edit locally as unsynced. If the entry exists on the
// backend the edit is pushed and the row re-marked synced on success.
func (s *MoodService) UpdateMood(ctx context.Context, m *models.MoodEntry) (*models.MoodEntry, error) {
	in := m.Clone()
	if err := s.prepare(in); err != nil {
		return nil, err
	}

	s.gate.RLock()
	defer s.gate.RUnlock()

	unlock := s.entries.Lock(in.ID)
	defer unlock()

	return s.updateLocked(ctx, in)
}

func (s *MoodService) updateLocked(ctx context.Context, in *models.MoodEntry) (*models.MoodEntry, error) {
	current, err := s.store.Get(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	// Identity and bookkeeping come from the stored row, not the caller.
	in.ServerID = current.ServerID
	in.CreatedAt = current.CreatedAt
	in.IsSynced = false
	// The photo may have been uploaded since the caller read the row.
	if in.PhotoURL == nil && in.PhotoPath != nil && samePath(in.PhotoPath, current.PhotoPath) {
		in.PhotoURL = current.PhotoURL
	}

	if err := s.store.Update(ctx, in); err != nil {
		return nil, err
	}

	if in.ServerID == nil {
		return in, nil
	}

	if err := s.pushUpdate(ctx, in); err != nil {
		if errors.Is(err, common.ErrStorage) {
			return nil, err
		}
		s.logger.Warn(ctx, "edit kept locally, backend update failed", "local_id", in.ID, "server_id", *in.ServerID, "error", err)
	}
	return in, nil
}

// DeleteMood removes the entry locally, then tries the backend. A failed
// remote delete is logged and leaves an orphan on the server.
func (s *MoodService) DeleteMood(ctx context.Context, m *models.MoodEntry) error {
	s.gate.RLock()
	defer s.gate.RUnlock()

	unlock := s.entries.Lock(m.ID)
	defer unlock()

	current, err := s.store.Get(ctx, m.ID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, m.ID); err != nil {
		return err
	}

	if current.ServerID == nil {
		return nil
	}

	err = s.remote.DeleteMood(ctx, *current.ServerID)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrNotFound):
		s.logger.Debug(ctx, "mood already gone on backend", "server_id", *current.ServerID)
	default:
		s.logger.Warn(ctx, "backend delete failed, server copy orphaned", "server_id", *current.ServerID, "error", err)
	}
	return nil
}

// SyncUnsyncedMoods pushes every unsynced row, oldest first. A failure on one
// row does not stop the others. It returns how many rows were synced and
// fails only when the unsynced rows cannot be listed.
func (s *MoodService) SyncUnsyncedMoods(ctx context.Context) (int, error) {
	s.gate.RLock()
	defer s.gate.RUnlock()

	pending, err := s.store.ListUnsynced(ctx)
	if err != nil {
		return 0, err
	}

	if err := s.RefreshActivities(ctx); err != nil {
		s.logger.Debug(ctx, "activity catalog not refreshed", "error", err)
	}

	synced := 0
	for _, p := range pending {
		ok, err := s.syncOne(ctx, p.ID)
		switch {
		case errors.Is(err, common.ErrValidation):
			s.logger.Error(ctx, "mood rejected by backend, edit it to sync", "local_id", p.ID, "error", err)
			continue
		case err != nil:
			s.logger.Warn(ctx, "mood not synced", "local_id", p.ID, "error", err)
			continue
		}
		if ok {
			synced++
		}
	}

	if len(pending) > 0 {
		s.logger.Info(ctx, "sync finished", "pending", len(pending), "synced", synced)
	}
	return synced, nil
}

// syncOne pushes one row. It re-reads the row under its lock, since it may
// have been edited, synced or deleted since it was listed.
func (s *MoodService) syncOne(ctx context.Context, id int64) (bool, error) {
	unlock := s.entries.Lock(id)
	defer unlock()

	m, err := s.store.Get(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if m.IsSynced {
		return false, nil
	}

	if m.ServerID == nil {
		return true, s.pushCreate(ctx, m)
	}

	err = s.pushUpdate(ctx, m)
	if errors.Is(err, common.ErrNotFound) {
		// Deleted on the server in the meantime; it gets a new server id.
		s.logger.Info(ctx, "mood missing on backend, re-creating", "local_id", id, "server_id", *m.ServerID)
		return true, s.pushCreate(ctx, m)
	}
	return err == nil, err
}

// SyncMoodsFromBackend replaces the local table with the backend's entries.
// Unsynced local rows are lost, so callers push first. Local photo paths are
// kept for entries that still exist on the server.
func (s *MoodService) SyncMoodsFromBackend(ctx context.Context) error {
	s.gate.Lock()
	defer s.gate.Unlock()

	remoteMoods, err := s.remote.ListAllMoods(ctx)
	if err != nil {
		return fmt.Errorf("fetch moods from backend: %w", err)
	}

	local, err := s.store.ListAll(ctx)
	if err != nil {
		return err
	}
	photoPaths := make(map[int64]*string, len(local))
	for _, m := range local {
		if m.ServerID != nil && m.PhotoPath != nil {
			photoPaths[*m.ServerID] = m.PhotoPath
		}
	}

	entries := make([]*models.MoodEntry, 0, len(remoteMoods))
	for _, r := range remoteMoods {
		e := fromResponse(r)
		e.PhotoPath = photoPaths[r.ID]
		entries = append(entries, e)
	}

	if err := s.store.ReplaceAll(ctx, entries); err != nil {
		return err
	}
	s.logger.Info(ctx, "local moods replaced from backend", "count", len(entries))
	return nil
}

// AttachPhoto uploads the file at path and links it to the entry. When the
// upload fails the path is still stored and the entry stays unsynced, so a
// later sync retries the upload.
func (s *MoodService) AttachPhoto(ctx context.Context, id int64, path string) (*models.MoodEntry, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, common.NewValidationError("photo", err.Error())
	}

	s.gate.RLock()
	defer s.gate.RUnlock()

	unlock := s.entries.Lock(id)
	defer unlock()

	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	m.PhotoPath = &path
	m.PhotoURL = nil

	s.ensurePhoto(ctx, m)
	if m.PhotoURL == nil {
		m.IsSynced = false
		if err := s.store.Update(ctx, m); err != nil {
			return nil, err
		}
		return m, nil
	}

	return s.updateLocked(ctx, m)
}

func samePath(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ensurePhoto uploads a photo that has a local path but no remote key yet.
// Failures are logged and leave PhotoURL nil.
func (s *MoodService) ensurePhoto(ctx context.Context, m *models.MoodEntry) {
	if m.PhotoPath == nil || m.PhotoURL != nil {
		return
	}

	data, err := os.ReadFile(*m.PhotoPath)
	if err != nil {
		s.logger.Warn(ctx, "photo not readable", "local_id", m.ID, "error", err)
		return
	}

	up, err := s.remote.PresignPhotoUpload(ctx)
	if err != nil {
		s.logger.Warn(ctx, "photo upload url not issued", "local_id", m.ID, "error", err)
		return
	}
	if err := s.upload(ctx, up.URL, data); err != nil {
		s.logger.Warn(ctx, "photo upload failed", "local_id", m.ID, "error", err)
		return
	}

	key := up.Key
	m.PhotoURL = &key
}

func (s *MoodService) ListMoods(ctx context.Context) ([]*models.MoodEntry, error) {
	return s.store.ListAll(ctx)
}

func (s *MoodService) ListMoodsBetween(ctx context.Context, from, to string) ([]*models.MoodEntry, error) {
	return s.store.ListByDateRange(ctx, from, to)
}

func (s *MoodService) GetMood(ctx context.Context, id int64) (*models.MoodEntry, error) {
	return s.store.Get(ctx, id)
}

func (s *MoodService) Subscribe(ctx context.Context) (<-chan []*models.MoodEntry, error) {
	return s.store.Subscribe(ctx)
}

// PendingCount is the number of rows waiting for the backend.
func (s *MoodService) PendingCount(ctx context.Context) (int, error) {
	return s.store.CountUnsynced(ctx)
}

// DeleteAll removes every local entry. It waits for running syncs.
func (s *MoodService) DeleteAll(ctx context.Context) error {
	s.gate.Lock()
	defer s.gate.Unlock()
	return s.store.DeleteAll(ctx)
}
