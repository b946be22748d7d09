// Package session keeps the logged-in identity in memory and in the local
// metadata table, so a restarted client stays logged in.
package session

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/moodkeeper/internal/client/models"
	"github.com/dmitrijs2005/moodkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/moodkeeper/internal/common"
)

const (
	keyUserID   = "session.user_id"
	keyEmail    = "session.email"
	keyUsername = "session.username"
	keyToken    = "session.token"
)

var sessionKeys = []string{keyUserID, keyEmail, keyUsername, keyToken}

type Manager struct {
	mu      sync.RWMutex
	current models.Session
	repo    metadata.Repository
}

func NewManager(repo metadata.Repository) *Manager {
	return &Manager{repo: repo}
}

// Token returns the bearer token, or "" when logged out. It is the token
// source of the remote client.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Token
}

func (m *Manager) Current() (models.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, m.current.Token != ""
}

func (m *Manager) IsLoggedIn() bool {
	return m.Token() != ""
}

// Set persists s and then makes it current. On a storage error the previous
// session stays in effect.
func (m *Manager) Set(ctx context.Context, s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	values := map[string]string{
		keyUserID:   strconv.FormatInt(s.UserID, 10),
		keyEmail:    s.Email,
		keyUsername: s.Username,
		keyToken:    s.Token,
	}
	for _, k := range sessionKeys {
		if err := m.repo.Set(ctx, k, []byte(values[k])); err != nil {
			return fmt.Errorf("%w: save session: %w", common.ErrStorage, err)
		}
	}

	m.current = s
	return nil
}

// Load restores the stored session. A missing session is not an error.
func (m *Manager) Load(ctx context.Context) error {
	values := make(map[string]string, len(sessionKeys))
	for _, k := range sessionKeys {
		v, err := m.repo.Get(ctx, k)
		if err != nil {
			return fmt.Errorf("%w: load session: %w", common.ErrStorage, err)
		}
		values[k] = string(v)
	}

	var s models.Session
	if values[keyToken] != "" {
		id, err := strconv.ParseInt(values[keyUserID], 10, 64)
		if err != nil {
			return fmt.Errorf("%w: bad stored user id: %w", common.ErrStorage, err)
		}
		s = models.Session{UserID: id, Email: values[keyEmail], Username: values[keyUsername], Token: values[keyToken]}
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	return nil
}

// Clear logs out. Memory is wiped even if the stored keys cannot be.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = models.Session{}
	if err := m.repo.Delete(ctx, sessionKeys...); err != nil {
		return fmt.Errorf("%w: clear session: %w", common.ErrStorage, err)
	}
	return nil
}
