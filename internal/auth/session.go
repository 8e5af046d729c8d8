// Package auth issues and verifies the session tokens carried in the
// session cookie, and hashes user passwords.
//
// A session token is an HS256-signed JWT whose subject is the user id and
// whose jti identifies the session for revocation. Logout records the jti
// in a RevocationList until the token would have expired anyway.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrAuthenticationRequired is returned for a missing, malformed, expired,
// forged or revoked session token.
var ErrAuthenticationRequired = errors.New("user not authenticated")

type SessionManager struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationList
	now     func() time.Time
}

func NewSessionManager(secret string, ttl time.Duration, revoked RevocationList) *SessionManager {
	if revoked == nil {
		revoked = NewMemoryRevocationList()
	}
	return &SessionManager{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: revoked,
		now:     time.Now,
	}
}

// TTL is the lifetime of issued tokens.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Issue mints a token for userID, returning it with its expiry.
func (m *SessionManager) Issue(userID string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// Resolve returns the user id a valid, unrevoked token was issued for.
func (m *SessionManager) Resolve(ctx context.Context, tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrAuthenticationRequired
	}

	claims, err := m.parse(tokenString)
	if err != nil {
		return "", err
	}

	revoked, err := m.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return "", fmt.Errorf("check session revocation: %w", err)
	}
	if revoked {
		return "", ErrAuthenticationRequired
	}
	return claims.Subject, nil
}

// Revoke invalidates tokenString until its natural expiry. Tokens that do
// not verify are ignored since they cannot authenticate anyway.
func (m *SessionManager) Revoke(ctx context.Context, tokenString string) error {
	if tokenString == "" {
		return nil
	}
	claims, err := m.parse(tokenString)
	if err != nil {
		return nil
	}
	return m.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (m *SessionManager) parse(tokenString string) (*jwt.RegisteredClaims, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrAuthenticationRequired
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrAuthenticationRequired
	}
	return &claims, nil
}
