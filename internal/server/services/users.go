package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/moodkeeper/internal/api"
	"github.com/dmitrijs2005/moodkeeper/internal/common"
	"github.com/dmitrijs2005/moodkeeper/internal/server/auth"
	"github.com/dmitrijs2005/moodkeeper/internal/server/config"
	"github.com/dmitrijs2005/moodkeeper/internal/server/models"
	"github.com/dmitrijs2005/moodkeeper/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

var (
	ErrEmailTaken     = common.NewPublicError(common.ErrConflict, "Email already registered")
	ErrBadCredentials = common.NewPublicError(common.ErrUnauthorized, "Invalid email or password")
	ErrWrongPassword  = common.NewPublicError(common.ErrUnauthorized, "Current password is incorrect")
	ErrUserNotFound   = common.NewPublicError(common.ErrNotFound, "User not found")
)

var dummyPasswordHash []byte

func init() {
	// Compared against when the email is unknown so the miss costs a bcrypt
	// round like a hit does.
	h, err := bcrypt.GenerateFromPassword([]byte("moodkeeper-dummy-password"), bcryptCost)
	if err != nil {
		panic(fmt.Sprintf("dummy password hash: %v", err))
	}
	dummyPasswordHash = h
}

type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) generateAccessToken(user *models.User) (string, error) {
	return auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.accessTokenValidityDuration)
}

// Register creates the account and returns it with a fresh token.
func (s *UserService) Register(ctx context.Context, req api.RegisterRequest) (*models.User, string, error) {
	req.Email = normalizeEmail(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if err := validateStruct(req); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("error generating token: %w", err)
	}

	return user, token, nil
}

// Login checks the credentials. An unknown email and a wrong password are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, req api.LoginRequest) (*models.User, string, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return nil, "", err
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(req.Password))
			return nil, "", ErrBadCredentials
		}
		return nil, "", fmt.Errorf("error getting user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)); err != nil {
		return nil, "", ErrBadCredentials
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("error generating token: %w", err)
	}

	return user, token, nil
}

func (s *UserService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID int64, req api.ChangePasswordRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("error getting user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := repo.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}

	return nil
}
