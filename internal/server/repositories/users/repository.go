// Package users declares the credential-store contract: persistence of user
// records and of the single currently valid refresh token per user.
package users

import (
	"context"

	"github.com/streamvault/streamvault/internal/server/models"
)

// Repository is the credential store. The backing store must enforce
// uniqueness of username (case-insensitive) and email, and provide atomic
// per-row updates.
type Repository interface {
	// Create inserts a new user and returns it with the assigned ID.
	// Returns common.ErrorConflict when username or email is taken.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// FindByID returns the user with the given ID or common.ErrorNotFound.
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByUsernameOrEmail resolves a login identifier: it matches the
	// username case-insensitively or the email address.
	FindByUsernameOrEmail(ctx context.Context, identifier string) (*models.User, error)

	// UpdateProfile mutates full name and email of an existing user.
	UpdateProfile(ctx context.Context, userID, fullName, email string) (*models.User, error)

	// UpdateAvatar and UpdateCoverImage store new media URLs.
	UpdateAvatar(ctx context.Context, userID, url string) (*models.User, error)
	UpdateCoverImage(ctx context.Context, userID, url string) (*models.User, error)

	// UpdatePasswordHash replaces the stored password digest.
	UpdatePasswordHash(ctx context.Context, userID, hash string) error

	// SetRefreshToken unconditionally overwrites the stored refresh token.
	// An empty token revokes all outstanding refresh tokens for the user.
	SetRefreshToken(ctx context.Context, userID, token string) error

	// RotateRefreshToken performs a compare-and-set: the stored token is
	// replaced by next only if it still equals current. Returns false when
	// the stored value changed in the meantime (superseded token).
	RotateRefreshToken(ctx context.Context, userID, current, next string) (bool, error)
}
