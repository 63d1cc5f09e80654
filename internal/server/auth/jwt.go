// Package auth implements the credential primitives of the service:
// password hashing/verification and issuing/verifying the signed access
// and refresh tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/streamvault/streamvault/internal/common"
)

// Claims extends the registered JWT claims with the subject user ID.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// TokenIssuer signs and verifies access and refresh tokens. The two token
// kinds use distinct secrets and lifetimes; issuing a refresh token does not
// persist it anywhere, that is the session service's job.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenIssuer(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// AccessTTL returns the access token lifetime (used for cookie expiry).
func (t *TokenIssuer) AccessTTL() time.Duration { return t.accessTTL }

// RefreshTTL returns the refresh token lifetime.
func (t *TokenIssuer) RefreshTTL() time.Duration { return t.refreshTTL }

// IssueAccessToken returns a short-lived signed token with sub = userID.
func (t *TokenIssuer) IssueAccessToken(userID string) (string, error) {
	return generateToken(userID, t.accessSecret, t.accessTTL)
}

// IssueRefreshToken returns a long-lived signed token with sub = userID.
func (t *TokenIssuer) IssueRefreshToken(userID string) (string, error) {
	return generateToken(userID, t.refreshSecret, t.refreshTTL)
}

// VerifyAccessToken validates signature and expiry of an access token and
// returns the subject user ID.
func (t *TokenIssuer) VerifyAccessToken(token string) (string, error) {
	return userIDFromToken(token, t.accessSecret)
}

// VerifyRefreshToken validates signature and expiry of a refresh token and
// returns the subject user ID.
func (t *TokenIssuer) VerifyRefreshToken(token string) (string, error) {
	return userIDFromToken(token, t.refreshSecret)
}

func generateToken(userID string, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	// The jti makes every issued token unique, so rotating a refresh token
	// always produces a different stored value.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

func userIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
