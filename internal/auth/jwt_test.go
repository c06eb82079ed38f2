package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewarden-labs/gatewarden/internal/auth"
)

var secret = []byte("test-signing-secret")

func TestVerifyToken_Roundtrip(t *testing.T) {
	token, err := auth.GenerateToken("admin-1", secret, time.Hour)
	require.NoError(t, err)

	principal, err := auth.VerifyToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", principal)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	token, err := auth.GenerateToken("admin-1", secret, time.Hour)
	require.NoError(t, err)

	_, err = auth.VerifyToken(token, []byte("other-secret"))
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyToken_Expired(t *testing.T) {
	token, err := auth.GenerateToken("admin-1", secret, -time.Minute)
	require.NoError(t, err)

	_, err = auth.VerifyToken(token, secret)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyToken_Garbage(t *testing.T) {
	_, err := auth.VerifyToken("not.a.token", secret)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
