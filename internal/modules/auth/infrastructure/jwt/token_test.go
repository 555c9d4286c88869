package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	tok, err := GenerateToken("secret", time.Hour, "ci-runner", ScopeAnalyze)
	require.NoError(t, err)

	claims, err := ValidateToken(tok, "secret")
	require.NoError(t, err)
	assert.Equal(t, "ci-runner", claims.Subject)
	assert.Equal(t, Issuer, claims.Issuer)
	assert.True(t, claims.HasScope(ScopeAnalyze))

	_, err = ValidateToken(tok, "wrong")
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	_, err = ValidateToken("not-a-token", "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenMalformed)
}

func TestValidateToken_Rejects(t *testing.T) {
	expired, err := GenerateToken("secret", -time.Minute, "ci-runner", ScopeAnalyze)
	require.NoError(t, err)
	_, err = ValidateToken(expired, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Scope: ScopeAnalyze,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = ValidateToken(foreign, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)

	_, err = GenerateToken("", time.Hour, "x")
	assert.ErrorIs(t, err, ErrEmptySecret)
	_, err = ValidateToken(expired, "")
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestClaims_HasScope(t *testing.T) {
	c := &Claims{Scope: "read analyze"}
	assert.True(t, c.HasScope("analyze"))
	assert.True(t, c.HasScope("read"))
	assert.False(t, c.HasScope("admin"))
	assert.False(t, (&Claims{}).HasScope(ScopeAnalyze))
}
