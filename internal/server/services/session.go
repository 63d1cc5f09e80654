// Package services contains the server-side business logic. This file
// implements SessionService, which drives the session lifecycle:
// registration, login, refresh rotation, revocation, and profile updates.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"io"
	"strings"

	"github.com/streamvault/streamvault/internal/common"
	"github.com/streamvault/streamvault/internal/dbx"
	"github.com/streamvault/streamvault/internal/logging"
	"github.com/streamvault/streamvault/internal/server/auth"
	"github.com/streamvault/streamvault/internal/server/media"
	"github.com/streamvault/streamvault/internal/server/models"
	"github.com/streamvault/streamvault/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult is returned on successful login.
type LoginResult struct {
	User   *models.User
	Tokens TokenPair
}

// RegisterParams carries the registration input. Avatar and CoverImage are
// optional streams forwarded to the media host.
type RegisterParams struct {
	Username string
	Email    string
	FullName string
	Password string

	Avatar            io.Reader
	AvatarContentType string
	Cover             io.Reader
	CoverContentType  string
}

// SessionService orchestrates the session lifecycle over the credential
// store, the token issuer, and the media host. At most one refresh token is
// valid per user at any time; every refresh rotates it and every logout
// clears it.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenIssuer
	media       media.Host
	logger      logging.Logger
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.TokenIssuer, host media.Host, logger logging.Logger) *SessionService {
	return &SessionService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		media:       host,
		logger:      logger.With("component", "session"),
	}
}

// Tokens exposes the issuer so the HTTP layer can size cookie lifetimes.
func (s *SessionService) Tokens() *auth.TokenIssuer { return s.tokens }

// Register creates a new user with an empty refresh token. Media uploads
// happen before the insert; a failed upload aborts registration.
func (s *SessionService) Register(ctx context.Context, p RegisterParams) (*models.User, error) {
	username := strings.TrimSpace(p.Username)
	email := strings.TrimSpace(p.Email)
	fullName := strings.TrimSpace(p.FullName)

	if username == "" || email == "" || fullName == "" || strings.TrimSpace(p.Password) == "" {
		return nil, common.ErrorValidation
	}

	user := &models.User{Username: username, Email: email, FullName: fullName}

	if p.Avatar != nil {
		url, err := s.media.Upload(ctx, p.Avatar, p.AvatarContentType)
		if err != nil {
			s.logger.Error(ctx, "avatar upload failed", "err", err)
			return nil, common.ErrorUpstream
		}
		user.AvatarURL = url
	}
	if p.Cover != nil {
		url, err := s.media.Upload(ctx, p.Cover, p.CoverContentType)
		if err != nil {
			s.logger.Error(ctx, "cover upload failed", "err", err)
			return nil, common.ErrorUpstream
		}
		user.CoverImageURL = url
	}

	hash, err := auth.HashPassword(p.Password)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "err", err)
		return nil, common.ErrorInternal
	}
	user.PasswordHash = hash

	created, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.ErrorConflict
		}
		s.logger.Error(ctx, "user insert failed", "err", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user registered", "username", created.Username)
	return created.Sanitize(), nil
}

// Login verifies the password for the user matching identifier (username or
// email), then issues and persists a fresh token pair. Unknown identifier
// and wrong password are indistinguishable to the caller.
func (s *SessionService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, common.ErrorValidation
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.FindByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Info(ctx, "login rejected: unknown identifier")
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "user lookup failed", "err", err)
		return nil, common.ErrorInternal
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		s.logger.Info(ctx, "login rejected: bad password", "user_id", user.ID)
		return nil, common.ErrorUnauthorized
	}

	pair, err := s.generateTokenPair(user.ID)
	if err != nil {
		s.logger.Error(ctx, "token issuance failed", "err", err)
		return nil, common.ErrorInternal
	}
	if err := repo.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		s.logger.Error(ctx, "persisting refresh token failed", "err", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "login", "user_id", user.ID)
	return &LoginResult{User: user.Sanitize(), Tokens: *pair}, nil
}

// Refresh exchanges a valid refresh token for a new pair and rotates the
// stored token. Expiry, bad signature, a superseded token, and a lost
// rotation race all surface as the same unauthorized error so the endpoint
// leaks nothing; the log lines stay distinct.
func (s *SessionService) Refresh(ctx context.Context, presented string) (*TokenPair, error) {
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return nil, common.ErrorUnauthorized
	}

	userID, err := s.tokens.VerifyRefreshToken(presented)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			s.logger.Info(ctx, "refresh rejected: token expired")
		} else {
			s.logger.Warn(ctx, "refresh rejected: invalid token")
		}
		return nil, common.ErrorUnauthorized
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "refresh rejected: unknown user", "user_id", userID)
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "user lookup failed", "err", err)
		return nil, common.ErrorInternal
	}

	if subtle.ConstantTimeCompare([]byte(user.RefreshToken), []byte(presented)) != 1 {
		s.logger.Warn(ctx, "refresh rejected: superseded or revoked token", "user_id", userID)
		return nil, common.ErrorUnauthorized
	}

	pair, err := s.generateTokenPair(userID)
	if err != nil {
		s.logger.Error(ctx, "token issuance failed", "err", err)
		return nil, common.ErrorInternal
	}

	// CAS against the stored value: if a concurrent refresh already rotated
	// the token, this request loses.
	rotated, err := repo.RotateRefreshToken(ctx, userID, presented, pair.RefreshToken)
	if err != nil {
		s.logger.Error(ctx, "refresh rotation failed", "err", err)
		return nil, common.ErrorInternal
	}
	if !rotated {
		s.logger.Warn(ctx, "refresh rejected: lost rotation race", "user_id", userID)
		return nil, common.ErrorUnauthorized
	}

	s.logger.Info(ctx, "refresh", "user_id", userID)
	return pair, nil
}

// Logout clears the stored refresh token, permanently invalidating every
// outstanding refresh token for the user. Safe to call repeatedly.
func (s *SessionService) Logout(ctx context.Context, userID string) error {
	err := s.repomanager.Users(s.db).SetRefreshToken(ctx, userID, "")
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "logout failed", "err", err)
		return common.ErrorInternal
	}
	s.logger.Info(ctx, "logout", "user_id", userID)
	return nil
}

// CurrentUser returns the sanitized record for userID.
func (s *SessionService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "user lookup failed", "err", err)
		return nil, common.ErrorInternal
	}
	return user.Sanitize(), nil
}

// UpdateProfile changes full name and email.
func (s *SessionService) UpdateProfile(ctx context.Context, userID, fullName, email string) (*models.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	if fullName == "" || email == "" {
		return nil, common.ErrorValidation
	}

	user, err := s.repomanager.Users(s.db).UpdateProfile(ctx, userID, fullName, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorConflict) {
			return nil, err
		}
		s.logger.Error(ctx, "profile update failed", "err", err)
		return nil, common.ErrorInternal
	}
	return user.Sanitize(), nil
}

// UpdateAvatar uploads a new avatar to the media host and stores its URL.
func (s *SessionService) UpdateAvatar(ctx context.Context, userID string, r io.Reader, contentType string) (*models.User, error) {
	return s.updateImage(ctx, userID, r, contentType, s.repomanager.Users(s.db).UpdateAvatar)
}

// UpdateCoverImage uploads a new cover image and stores its URL.
func (s *SessionService) UpdateCoverImage(ctx context.Context, userID string, r io.Reader, contentType string) (*models.User, error) {
	return s.updateImage(ctx, userID, r, contentType, s.repomanager.Users(s.db).UpdateCoverImage)
}

func (s *SessionService) updateImage(ctx context.Context, userID string, r io.Reader, contentType string,
	store func(ctx context.Context, userID, url string) (*models.User, error)) (*models.User, error) {

	if r == nil {
		return nil, common.ErrorValidation
	}

	url, err := s.media.Upload(ctx, r, contentType)
	if err != nil {
		s.logger.Error(ctx, "media upload failed", "err", err)
		return nil, common.ErrorUpstream
	}

	user, err := store(ctx, userID, url)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "image update failed", "err", err)
		return nil, common.ErrorInternal
	}
	return user.Sanitize(), nil
}

// ChangePassword verifies the old password and stores a hash of the new
// one. The verify-then-update sequence runs inside a transaction so the
// check and the write see the same record.
func (s *SessionService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return common.ErrorValidation
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.FindByID(ctx, userID)
		if err != nil {
			return err
		}

		if !auth.CheckPassword(oldPassword, user.PasswordHash) {
			return common.ErrorUnauthorized
		}

		hash, err := auth.HashPassword(newPassword)
		if err != nil {
			return err
		}
		return repo.UpdatePasswordHash(ctx, userID, hash)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorUnauthorized) {
			return err
		}
		s.logger.Error(ctx, "password change failed", "err", err)
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "password changed", "user_id", userID)
	return nil
}

func (s *SessionService) generateTokenPair(userID string) (*TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(userID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
