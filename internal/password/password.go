// Package password wraps bcrypt hashing for stored credentials.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt work factor used for every new digest.
const HashCost = 10

// ErrEmptyPassword is returned when a caller tries to hash an empty string.
var ErrEmptyPassword = errors.New("password must not be empty")

// ErrCorruptDigest is returned by Verify when the stored digest is not a
// valid bcrypt hash. A plain mismatch is not an error.
var ErrCorruptDigest = errors.New("stored password digest is corrupt")

// Hash derives a bcrypt digest from the plaintext. Each call produces a
// distinct digest because bcrypt embeds a fresh salt.
func Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), HashCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	return string(digest), nil
}

// Verify reports whether plaintext matches the stored digest. A wrong
// password returns (false, nil); an error is returned only when the digest
// itself cannot be parsed.
func Verify(plaintext, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}

	return false, fmt.Errorf("%w: %v", ErrCorruptDigest, err)
}
