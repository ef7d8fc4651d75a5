// Package session issues and verifies the signed, stateless tokens that
// prove a prior login. Tokens are HS256 JWTs carrying the user ID and a
// payload-level expiry that is checked in addition to the standard exp
// claim.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/spendwise/spendwise/internal/auth"
)

// TokenTTL is the session lifetime. Tokens are never refreshed; a new one is
// minted only by a fresh login.
const TokenTTL = 7 * 24 * time.Hour

// Claims are the session token contents. ExpiresAtMillis duplicates the
// registered exp claim so verification can enforce expiry at the payload
// level even if a library ever skipped its own check.
type Claims struct {
	jwt.RegisteredClaims
	UserID          string `json:"user_id"`
	ExpiresAtMillis int64  `json:"expires_at_ms"`
}

// Manager signs and verifies session tokens with one process-wide secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager fails when the secret is empty: issuing or verifying with an
// unset key must never silently work.
func NewManager(secret string) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("session: signing secret is required")
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    TokenTTL,
		now:    time.Now,
	}, nil
}

// Issue builds and signs a token for userID, returning the compact string
// and its expiry time.
func (m *Manager) Issue(userID string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:          userID,
		ExpiresAtMillis: expiresAt.UnixMilli(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a token. Every failure mode (bad signature,
// non-HMAC algorithm, missing claims, expiry by either check) comes back as
// auth.ErrInvalidToken.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, auth.ErrInvalidToken
	}

	if claims.UserID == "" || claims.ExpiresAtMillis == 0 {
		return nil, auth.ErrInvalidToken
	}
	if time.UnixMilli(claims.ExpiresAtMillis).Before(m.now()) {
		return nil, auth.ErrInvalidToken
	}

	return claims, nil
}
