// Package auth turns bearer tokens into principals and decides what a
// principal may do with an athlete profile.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/okian/prospect/internal/domain/model"
)

const issuer = "prospect"

// Claims is the JWT payload carried by bearer tokens.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator signs and verifies HS256 tokens.
type Authenticator struct {
	key []byte
	now func() time.Time
}

// NewAuthenticator returns an Authenticator keyed by secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{key: []byte(secret), now: time.Now}
}

// Issue signs a token for p that expires after ttl. It backs the seeder
// and tests; the service itself never issues tokens.
func (a *Authenticator) Issue(p model.Principal, ttl time.Duration) (string, error) {
	if p.Anonymous() || !p.Role.Valid() {
		return "", fmt.Errorf("%w: cannot issue for %+v", ErrInvalidToken, p)
	}
	now := a.now()
	claims := &Claims{
		Role: string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.key)
}

// Parse verifies raw and returns its principal.
func (a *Authenticator) Parse(raw string) (model.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid {
		return model.Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	p := model.Principal{UserID: claims.Subject, Role: model.Role(claims.Role)}
	if p.Anonymous() || !p.Role.Valid() {
		return model.Principal{}, fmt.Errorf("%w: missing subject or unknown role", ErrInvalidToken)
	}
	return p, nil
}

// FromHeader parses an Authorization header value. An empty header yields
// the anonymous principal.
func (a *Authenticator) FromHeader(header string) (model.Principal, error) {
	if header == "" {
		return model.Principal{}, nil
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return model.Principal{}, fmt.Errorf("%w: expected bearer token", ErrInvalidToken)
	}
	return a.Parse(strings.TrimSpace(raw))
}

// IsInvalidToken reports whether err came from token verification.
func IsInvalidToken(err error) bool { return errors.Is(err, ErrInvalidToken) }
