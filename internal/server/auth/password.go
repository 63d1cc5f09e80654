package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/streamvault/streamvault/internal/common"
)

// HashPassword derives a salted one-way digest from the plaintext password.
// The salt is embedded in the digest, so two hashes of the same plaintext
// are never equal byte-for-byte. The plaintext buffer handed to bcrypt is
// wiped before returning.
func HashPassword(plaintext string) (string, error) {
	buf := []byte(plaintext)
	defer common.WipeByteArray(buf)

	digest, err := bcrypt.GenerateFromPassword(buf, bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(digest), nil
}

// CheckPassword reports whether plaintext re-hashes to digest under its
// embedded salt. A mismatch is not an error; bcrypt's comparison does not
// leak the mismatch position through timing.
func CheckPassword(plaintext, digest string) bool {
	buf := []byte(plaintext)
	defer common.WipeByteArray(buf)

	return bcrypt.CompareHashAndPassword([]byte(digest), buf) == nil
}
