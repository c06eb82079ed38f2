package windowcode_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/windowcode"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestDerive_SameWindowSameCode(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC)

	a := windowcode.Derive(testSecret, 5, base)
	b := windowcode.Derive(testSecret, 5, base.Add(4*time.Minute))

	assert.Equal(t, a, b, "times inside one window must derive the same code")
	assert.Len(t, a, windowcode.CodeDigits)
}

func TestDerive_DifferentWindowsDifferentCodes(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	a := windowcode.Derive(testSecret, 5, base)
	b := windowcode.Derive(testSecret, 5, base.Add(5*time.Minute))

	assert.NotEqual(t, a, b)
}

func TestDerive_DifferentSecretsDifferentCodes(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	a := windowcode.Derive(testSecret, 5, at)
	b := windowcode.Derive([]byte("another-secret-entirely-32bytes!"), 5, at)

	assert.NotEqual(t, a, b)
}

func TestValidate_CurrentWindow(t *testing.T) {
	for _, w := range []int{1, 5, 15, 60} {
		at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
		code := windowcode.Derive(testSecret, w, at)
		assert.True(t, windowcode.Validate(code, testSecret, w, at), "window=%d", w)
	}
}

func TestValidate_OneWindowBackTolerance(t *testing.T) {
	w := 5
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	code := windowcode.Derive(testSecret, w, at)

	// Presented one window later: still accepted.
	assert.True(t, windowcode.Validate(code, testSecret, w, at.Add(5*time.Minute)))

	// Two windows later: rejected.
	assert.False(t, windowcode.Validate(code, testSecret, w, at.Add(10*time.Minute)))
}

func TestValidate_NoForwardTolerance(t *testing.T) {
	w := 5
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	// A code from the NEXT window must not validate now.
	future := windowcode.Derive(testSecret, w, at.Add(5*time.Minute))
	if future == windowcode.Derive(testSecret, w, at) {
		t.Skip("adjacent windows collided; astronomically unlikely")
	}
	assert.False(t, windowcode.Validate(future, testSecret, w, at))
}

func TestValidate_RejectsMalformedCandidates(t *testing.T) {
	at := time.Now().UTC()
	assert.False(t, windowcode.Validate("", testSecret, 5, at))
	assert.False(t, windowcode.Validate("1234567", testSecret, 5, at))
	assert.False(t, windowcode.Validate("123456789", testSecret, 5, at))
}
