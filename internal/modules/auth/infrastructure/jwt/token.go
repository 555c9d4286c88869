// Package jwt mints and verifies the bearer tokens that guard the snaplabel
// API. Tokens are HS256 signed, issued by "snaplabel" and carry a
// space-separated scope list.
package jwt

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// Issuer is set on every token and required on validation.
	Issuer = "snaplabel"

	// ScopeAnalyze grants access to the upload, analyze and result endpoints.
	ScopeAnalyze = "analyze"
)

// ErrEmptySecret is returned when signing or verifying without a secret.
var ErrEmptySecret = errors.New("jwt secret is empty")

type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// HasScope reports whether scope is one of the token's scopes.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(strings.Fields(c.Scope), scope)
}

// GenerateToken signs a token for subject valid for ttl. Multiple scopes are
// joined with spaces.
func GenerateToken(secret string, ttl time.Duration, subject string, scopes ...string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	now := time.Now()
	claims := Claims{
		Scope: strings.Join(scopes, " "),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ValidateToken parses tokenStr and checks its signature, issuer and expiry.
func ValidateToken(tokenStr, secret string) (*Claims, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims,
		func(*jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
