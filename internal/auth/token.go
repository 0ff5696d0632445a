// Package auth issues and verifies the three JWT kinds the account system
// uses: access, refresh, and password-reset. Each kind is signed with its
// own secret, so a token of one kind never verifies as another.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "cs11-backend"

var (
	// ErrTokenExpired is returned when a token's exp claim has passed.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenInvalid is returned when a token fails signature or claim
	// checks, including tokens signed for a different kind.
	ErrTokenInvalid = errors.New("token is invalid")

	// ErrTokenMalformed is returned when the string is not a JWT at all.
	ErrTokenMalformed = errors.New("token is malformed")
)

// AccessClaims carry the authenticated identity on access tokens.
type AccessClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// SessionClaims carry only the account email. Refresh and reset tokens use
// this shape; the verifier re-reads the account before trusting anything
// beyond the address.
type SessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies all three token kinds.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	resetSecret   []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	resetTTL      time.Duration
}

// NewTokenManager builds a manager from per-kind secrets and lifetimes.
func NewTokenManager(accessSecret, refreshSecret, resetSecret string, accessTTL, refreshTTL, resetTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		resetSecret:   []byte(resetSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		resetTTL:      resetTTL,
	}
}

// GenerateAccessToken signs an access token with the configured lifetime.
func (m *TokenManager) GenerateAccessToken(userID, email, role string) (string, error) {
	return m.generateAccessToken(userID, email, role, m.accessTTL)
}

// GenerateAccessTokenWithTTL signs an access token with an explicit
// lifetime, overriding the configured one. The refresh grant uses this to
// issue a fixed 15 minute token regardless of environment.
func (m *TokenManager) GenerateAccessTokenWithTTL(userID, email, role string, ttl time.Duration) (string, error) {
	return m.generateAccessToken(userID, email, role, ttl)
}

func (m *TokenManager) generateAccessToken(userID, email, role string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &AccessClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.accessSecret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	return signedToken, nil
}

// GenerateRefreshToken signs a refresh token carrying only the email.
func (m *TokenManager) GenerateRefreshToken(email string) (string, error) {
	return m.generateSessionToken(email, m.refreshSecret, m.refreshTTL, "refresh")
}

// GenerateResetToken signs a password-reset token carrying only the email.
func (m *TokenManager) GenerateResetToken(email string) (string, error) {
	return m.generateSessionToken(email, m.resetSecret, m.resetTTL, "reset")
}

func (m *TokenManager) generateSessionToken(email string, secret []byte, ttl time.Duration, kind string) (string, error) {
	now := time.Now().UTC()
	claims := &SessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}

	return signedToken, nil
}

// VerifyAccessToken parses and verifies an access token.
func (m *TokenManager) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.accessSecret, nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// VerifyRefreshToken parses and verifies a refresh token.
func (m *TokenManager) VerifyRefreshToken(tokenString string) (*SessionClaims, error) {
	return m.verifySessionToken(tokenString, m.refreshSecret)
}

// VerifyResetToken parses and verifies a password-reset token.
func (m *TokenManager) VerifyResetToken(tokenString string) (*SessionClaims, error) {
	return m.verifySessionToken(tokenString, m.resetSecret)
}

func (m *TokenManager) verifySessionToken(tokenString string, secret []byte) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	default:
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
}
