package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/moodkeeper/internal/api"
	"github.com/dmitrijs2005/moodkeeper/internal/client/models"
	"github.com/dmitrijs2005/moodkeeper/internal/client/remote"
	"github.com/dmitrijs2005/moodkeeper/internal/logging"
)

// SessionStore keeps the current session.
type SessionStore interface {
	Set(ctx context.Context, s models.Session) error
	Clear(ctx context.Context) error
	Current() (models.Session, bool)
}

// LocalData is wiped on logout so the next user starts empty.
type LocalData interface {
	DeleteAll(ctx context.Context) error
}

// AuthService handles account operations. Authentication has no offline
// fallback, so remote errors are returned as they are.
type AuthService struct {
	remote  remote.Client
	session SessionStore
	local   LocalData
	logger  logging.Logger
}

func NewAuthService(client remote.Client, session SessionStore, local LocalData, logger logging.Logger) *AuthService {
	return &AuthService{
		remote:  client,
		session: session,
		local:   local,
		logger:  logger.With("module", "auth_service"),
	}
}

// start stores the session for d. A session for another user than the
// previous one drops the previous user's local entries first.
func (a *AuthService) start(ctx context.Context, d *api.AuthData) (*models.Session, error) {
	if prev, ok := a.session.Current(); ok && prev.UserID != d.UserID {
		if err := a.local.DeleteAll(ctx); err != nil {
			return nil, err
		}
		a.logger.Info(ctx, "local journal of previous user dropped", "user_id", prev.UserID)
	}

	s := models.Session{UserID: d.UserID, Email: d.Email, Username: d.Username, Token: d.Token}
	if err := a.session.Set(ctx, s); err != nil {
		return nil, err
	}
	a.logger.Info(ctx, "session started", "user_id", s.UserID)
	return &s, nil
}

func (a *AuthService) Register(ctx context.Context, email, password, username string) (*models.Session, error) {
	d, err := a.remote.Register(ctx, strings.TrimSpace(email), password, strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return a.start(ctx, d)
}

func (a *AuthService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	d, err := a.remote.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return a.start(ctx, d)
}

// Logout forgets the session and the local journal.
func (a *AuthService) Logout(ctx context.Context) error {
	if err := a.session.Clear(ctx); err != nil {
		return err
	}
	return a.local.DeleteAll(ctx)
}

func (a *AuthService) Profile(ctx context.Context) (*api.Profile, error) {
	return a.remote.GetProfile(ctx)
}

func (a *AuthService) ChangePassword(ctx context.Context, current, next string) error {
	return a.remote.ChangePassword(ctx, current, next)
}

// Ping checks the REST API through GET /health.
func (a *AuthService) Ping(ctx context.Context) error {
	return a.remote.Ping(ctx)
}
