package qrtoken_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/qrtoken"
	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/types"
)

func testCipher(t *testing.T) *qrtoken.Cipher {
	t.Helper()
	c, err := qrtoken.NewCipher([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	return c
}

func testPayload() types.QRPayload {
	return types.QRPayload{
		OwnerID:     "emp-42",
		OwnerType:   types.OwnerEmployee,
		ExpiresAt:   time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		Permissions: []string{"basic", "in"},
		Nonce:       "3f8a1c2e-9b4d-4f6a-8e2d-1a5b7c9d0e2f",
	}
}

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	c := testCipher(t)

	token, err := c.Encrypt(testPayload())
	require.NoError(t, err)

	got, err := c.Decrypt(token)
	require.NoError(t, err)
	assert.Equal(t, testPayload(), got)
}

func TestEncrypt_WireShape(t *testing.T) {
	c := testCipher(t)

	token, err := c.Encrypt(testPayload())
	require.NoError(t, err)

	parts := strings.Split(token, ":")
	require.Len(t, parts, 2, "exactly one separator")
	assert.Len(t, parts[0], qrtoken.IVSize*2, "fixed-width hex IV")
	assert.NotEmpty(t, parts[1])
}

func TestEncrypt_FreshIVPerCall(t *testing.T) {
	c := testCipher(t)
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		token, err := c.Encrypt(testPayload())
		require.NoError(t, err)
		iv := strings.SplitN(token, ":", 2)[0]
		assert.False(t, seen[iv], "iv reused across encryptions")
		seen[iv] = true
	}
}

func TestDecrypt_TamperedTokensAllFail(t *testing.T) {
	c := testCipher(t)
	token, err := c.Encrypt(testPayload())
	require.NoError(t, err)

	iv, ct, _ := strings.Cut(token, ":")

	// Flip one hex digit of the ciphertext.
	flipped := []byte(ct)
	if flipped[0] == 'a' {
		flipped[0] = 'b'
	} else {
		flipped[0] = 'a'
	}

	mutations := map[string]string{
		"truncated ciphertext": iv + ":" + ct[:len(ct)-2],
		"truncated iv":         iv[:30] + ":" + ct,
		"bit flip":             iv + ":" + string(flipped),
		"segments reversed":    ct + ":" + iv,
		"appended garbage":     token + "ff",
		"extra separator":      token + ":ff",
		"missing separator":    iv + ct,
		"empty ciphertext":     iv + ":",
		"non-hex iv":           strings.Repeat("zz", 16) + ":" + ct,
		"empty token":          "",
	}

	for name, mutated := range mutations {
		_, err := c.Decrypt(mutated)
		assert.ErrorIs(t, err, qrtoken.ErrTampered, "mutation: %s", name)
	}
}

func TestDecrypt_WrongKeyFails(t *testing.T) {
	c := testCipher(t)
	token, err := c.Encrypt(testPayload())
	require.NoError(t, err)

	other, err := qrtoken.NewCipher([]byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)

	_, err = other.Decrypt(token)
	assert.ErrorIs(t, err, qrtoken.ErrTampered)
}

func TestNewCipher_RejectsShortKey(t *testing.T) {
	_, err := qrtoken.NewCipher([]byte("short"))
	assert.Error(t, err)
}
