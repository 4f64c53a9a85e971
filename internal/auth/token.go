// Package auth issues and verifies the JWT access and refresh tokens used by
// the HTTP layer, and hashes user passwords with bcrypt.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TokenKind distinguishes access from refresh tokens.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// Config contains the token settings.
type Config struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// DefaultConfig returns the default token configuration. The secret must be
// set by the caller.
func DefaultConfig() *Config {
	return &Config{
		Issuer:     "offer-service",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}

// Claims is the token payload: standard registered claims plus the token
// kind and the user's email.
type Claims struct {
	jwt.RegisteredClaims
	Kind  TokenKind `json:"kind"`
	Email string    `json:"email"`
}

var (
	// ErrInvalidToken is returned for malformed, expired or mis-signed tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrWrongTokenKind is returned when a refresh token is presented where
	// an access token is expected, or vice versa.
	ErrWrongTokenKind = errors.New("wrong token kind")
)

// TokenManager signs and verifies tokens with a shared HMAC secret.
type TokenManager struct {
	config *Config
}

// NewTokenManager creates a token manager.
func NewTokenManager(config *Config) (*TokenManager, error) {
	if config == nil {
		return nil, errors.New("auth: nil config")
	}
	if config.Secret == "" {
		return nil, errors.New("auth: empty signing secret")
	}
	return &TokenManager{config: config}, nil
}

// Issue creates a signed token of the given kind for a user.
func (m *TokenManager) Issue(userID int64, email string, kind TokenKind) (string, error) {
	ttl := m.config.AccessTTL
	if kind == TokenRefresh {
		ttl = m.config.RefreshTTL
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.config.Issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind:  kind,
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.config.Secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and checks the signature, expiry and kind.
func (m *TokenManager) Verify(tokenString string, kind TokenKind) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(m.config.Secret), nil
	}, jwt.WithIssuer(m.config.Issuer))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind {
		return nil, ErrWrongTokenKind
	}
	return claims, nil
}

// UserID returns the subject claim as an int64.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
