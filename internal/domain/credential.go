package domain

import (
	"strings"
	"time"
)

// Credential is the directory record binding an email to a password hash and
// role. One exists per account; the email is unique after normalization.
type Credential struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	UserName     string     `json:"user_name"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// Identity is the client-safe projection of a credential. It is the only
// account shape that ever appears in a response body; the password hash
// stays behind the json:"-" tag above and is never copied here.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Identity returns the safe projection of the credential.
func (c *Credential) Identity() Identity {
	return Identity{ID: c.ID, Email: c.Email, Role: c.Role}
}

// TokenPair holds an access and refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// NormalizeEmail lowercases and trims an email address so uniqueness and
// lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
