// Package services contains server-side business logic. This file implements
// UserService: registration, login, session resolution with silent token
// renewal, and the profile summary.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tijori/tijori/internal/common"
	"github.com/tijori/tijori/internal/cryptox"
	"github.com/tijori/tijori/internal/logging"
	"github.com/tijori/tijori/internal/server/auth"
	"github.com/tijori/tijori/internal/server/config"
	"github.com/tijori/tijori/internal/server/models"
	"github.com/tijori/tijori/internal/server/repositories/repomanager"
)

var timeNow = time.Now

// Session is the outcome of resolving a presented token. RefreshedToken
// is set only when an expired token was renewed; the caller must hand it
// back to the client.
type Session struct {
	Identity       models.Identity
	RefreshedToken string
	ExpiresAt      time.Time
}

// LoginResult is a freshly issued session for a verified user.
type LoginResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// UserService provides authentication-related operations:
// - Register: create users
// - Login: verify credentials and mint tokens
// - Authenticate: resolve a token, renewing it after expiry
type UserService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	log                   logging.Logger
	jwtSecret             []byte
	tokenValidityDuration time.Duration
	refreshWindow         time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *UserService {
	return &UserService{
		db:                    db,
		repomanager:           m,
		log:                   log,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
		refreshWindow:         cfg.RefreshWindow,
	}
}

// TokenValidity is how long issued tokens (and their cookies) live.
func (s *UserService) TokenValidity() time.Duration {
	return s.tokenValidityDuration
}

func (s *UserService) Register(ctx context.Context, email, username, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" || username == "" || password == "" {
		return nil, fmt.Errorf("%w: email, username and password are required", common.ErrorValidation)
	}

	hash, salt := cryptox.HashPassword([]byte(password))
	user := &models.User{
		Email:        email,
		UserName:     username,
		PasswordHash: hash,
		Salt:         salt,
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		return nil, mapError(ctx, s.log, "create user", err)
	}

	s.log.Info(ctx, "user registered", "user", user.ID)
	return user, nil
}

// Login checks the credentials and issues a session token. Unknown email
// and wrong password are reported as distinct errors.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidEmail
		}
		return nil, mapError(ctx, s.log, "find user", err)
	}

	if !cryptox.VerifyPassword([]byte(password), user.Salt, user.PasswordHash) {
		return nil, common.ErrInvalidPassword
	}

	token, expiresAt, err := s.IssueToken(user)
	if err != nil {
		return nil, mapError(ctx, s.log, "issue token", err)
	}

	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *UserService) IssueToken(user *models.User) (string, time.Time, error) {
	return auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.tokenValidityDuration)
}

// IsLive reports whether token is correctly signed and unexpired.
func (s *UserService) IsLive(token string) bool {
	if token == "" {
		return false
	}
	_, err := auth.ParseToken(token, s.jwtSecret)
	return err == nil
}

// Authenticate resolves a presented token.
//
// A valid token yields its own identity. A correctly signed but expired
// token is renewed from the stored user: the new token carries that user's
// current identity, or common.ErrAccountGone is returned if the user was
// removed. Every other token is common.ErrInvalidToken and is never renewed.
func (s *UserService) Authenticate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, common.ErrMissingToken
	}

	claims, err := auth.ParseToken(token, s.jwtSecret)
	switch {
	case err == nil:
		return &Session{
			Identity:  models.Identity{UserID: claims.UserID, Email: claims.Email},
			ExpiresAt: claims.ExpiresAt.Time,
		}, nil
	case errors.Is(err, common.ErrTokenExpired):
		return s.refresh(ctx, token)
	default:
		return nil, common.ErrInvalidToken
	}
}

func (s *UserService) refresh(ctx context.Context, token string) (*Session, error) {
	claims, err := auth.ParseExpired(token, s.jwtSecret)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	if s.refreshWindow > 0 && timeNow().Sub(claims.ExpiresAt.Time) > s.refreshWindow {
		return nil, common.ErrInvalidToken
	}

	if !validID(claims.UserID) {
		return nil, common.ErrAccountGone
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAccountGone
		}
		return nil, mapError(ctx, s.log, "find user", err)
	}

	newToken, expiresAt, err := s.IssueToken(user)
	if err != nil {
		return nil, mapError(ctx, s.log, "issue token", err)
	}

	s.log.Info(ctx, "session token renewed", "user", user.ID)

	return &Session{
		Identity:       models.Identity{UserID: user.ID, Email: user.Email},
		RefreshedToken: newToken,
		ExpiresAt:      expiresAt,
	}, nil
}

// Profile returns the user's own record with resource counts.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	if !validID(userID) {
		return nil, common.ErrorNotFound
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, mapError(ctx, s.log, "find user", err)
	}

	collections, err := s.repomanager.Collections(s.db).CountByOwner(ctx, userID)
	if err != nil {
		return nil, mapError(ctx, s.log, "count collections", err)
	}

	files, err := s.repomanager.Files(s.db).CountByOwner(ctx, userID, "")
	if err != nil {
		return nil, mapError(ctx, s.log, "count files", err)
	}

	return &models.Profile{User: user, CollectionCount: collections, FileCount: files}, nil
}
