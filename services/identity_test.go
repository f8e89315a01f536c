package services

import (
	stderrors "errors"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techagentng/carefront/config"
	errs "github.com/techagentng/carefront/errors"
	"github.com/techagentng/carefront/services/jwt"
)

func signed(t *testing.T, claims gojwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.GenerateToken(claims, secret)
	require.NoError(t, err)
	return token
}

func TestIdentityVerifier(t *testing.T) {
	v := NewIdentityVerifier(&config.Config{JWTSecret: "devsecret"})

	token := signed(t, gojwt.MapClaims{"id": "u1", "role": "admin", "email": "a@x.com"}, "devsecret")
	for _, credential := range []string{token, "Bearer " + token, "bearer " + token} {
		id, err := v.Verify(credential)
		require.NoError(t, err)
		assert.Equal(t, "u1", id.ID)
		assert.Equal(t, "a@x.com", id.Email)
		assert.True(t, id.IsPrivileged())
	}

	numeric := signed(t, gojwt.MapClaims{"id": float64(42), "role": "user"}, "devsecret")
	id, err := v.Verify(numeric)
	require.NoError(t, err)
	assert.Equal(t, "42", id.ID)
	assert.False(t, id.IsPrivileged())
}

func TestIdentityVerifier_Rejects(t *testing.T) {
	v := NewIdentityVerifier(&config.Config{JWTSecret: "devsecret"})

	_, err := v.Verify("")
	assert.True(t, stderrors.Is(err, errs.ErrUnauthenticated))
	_, err = v.Verify("Bearer ")
	assert.True(t, stderrors.Is(err, errs.ErrUnauthenticated))

	for name, token := range map[string]string{
		"garbage":   "abc.def.ghi",
		"wrong key": signed(t, gojwt.MapClaims{"id": "u1"}, "other"),
		"expired":   signed(t, gojwt.MapClaims{"id": "u1", "exp": time.Now().Add(-time.Hour).Unix()}, "devsecret"),
		"no id":     signed(t, gojwt.MapClaims{"role": "admin"}, "devsecret"),
	} {
		_, err := v.Verify(token)
		assert.True(t, stderrors.Is(err, errs.ErrInvalidCredential), name)
	}
}
