// Package windowcode derives and checks time-bucketed one-time codes from
// a shared secret.  A code is valid for its own window plus one window of
// backward tolerance, so a single derived code is presentable for at most
// twice the window length.
package windowcode

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"time"
)

// CodeDigits is the fixed width of a derived code.
const CodeDigits = 8

// Derive returns the code for the window containing at.  Two calls with
// the same secret and times in the same window index yield identical
// output.
func Derive(secret []byte, windowMinutes int, at time.Time) string {
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	idx := at.Unix() / 60 / int64(windowMinutes)
	return deriveIndex(secret, idx)
}

// Validate accepts candidate if it matches the current window index or the
// immediately preceding one.  No forward tolerance.  Comparison is
// constant-time.
func Validate(candidate string, secret []byte, windowMinutes int, at time.Time) bool {
	if len(candidate) != CodeDigits {
		return false
	}
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	idx := at.Unix() / 60 / int64(windowMinutes)

	current := deriveIndex(secret, idx)
	previous := deriveIndex(secret, idx-1)

	// Evaluate both comparisons so timing does not reveal which window
	// matched.
	okCur := subtle.ConstantTimeCompare([]byte(candidate), []byte(current))
	okPrev := subtle.ConstantTimeCompare([]byte(candidate), []byte(previous))
	return okCur|okPrev == 1
}

// deriveIndex is an HOTP-style truncation of HMAC-SHA256 over the window
// index, rendered as a zero-padded decimal string.
func deriveIndex(secret []byte, idx int64) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(idx))

	mac := hmac.New(sha256.New, secret)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	v := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff
	return fmt.Sprintf("%08d", v%100000000)
}
