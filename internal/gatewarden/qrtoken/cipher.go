// Package qrtoken encrypts and decrypts the self-contained QR credential.
// The wire form is "hex(iv):hex(ciphertext)" with a fresh random 128-bit IV
// per encryption.  Decryption failures of every kind collapse to
// ErrTampered so the caller cannot learn which stage rejected the token.
package qrtoken

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/types"
)

// IVSize is the per-message initialization vector length in bytes.
const IVSize = 16

// ivHexLen is the exact width of the IV segment on the wire.
const ivHexLen = IVSize * 2

// ErrTampered covers every decryption failure: malformed structure,
// authentication failure, and deserialization failure alike.
var ErrTampered = errors.New("qr token invalid")

// Cipher seals and opens QR payloads under a fixed AES-256 key.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a Cipher from a 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("qr cipher: %w", err)
	}
	// GCM with a 16-byte nonce so the IV carries a full 128 bits of
	// per-message randomness.
	aead, err := cipher.NewGCMWithNonceSize(block, IVSize)
	if err != nil {
		return nil, fmt.Errorf("qr cipher: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt serializes payload and seals it under a fresh random IV.
// The IV comes from crypto/rand on every call; it is never a counter,
// a timestamp, or reused.
func (c *Cipher) Encrypt(payload types.QRPayload) (string, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("qr encrypt: %w", err)
	}

	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("qr encrypt: read iv: %w", err)
	}

	ct := c.aead.Seal(nil, iv, plaintext, nil)
	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ct), nil
}

// Decrypt opens a token produced by Encrypt.  Any failure — wrong shape,
// wrong IV width, non-hex segments, authentication failure, bad JSON —
// returns ErrTampered and nothing else.  Expiry is not checked here; the
// validator compares ExpiresAt against its clock so that an expired-but-
// authentic token remains distinguishable from a forged one.
func (c *Cipher) Decrypt(token string) (types.QRPayload, error) {
	var zero types.QRPayload

	ivHex, ctHex, ok := strings.Cut(token, ":")
	if !ok || len(ivHex) != ivHexLen || ctHex == "" || strings.Contains(ctHex, ":") {
		return zero, ErrTampered
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return zero, ErrTampered
	}
	ct, err := hex.DecodeString(ctHex)
	if err != nil {
		return zero, ErrTampered
	}

	plaintext, err := c.aead.Open(nil, iv, ct, nil)
	if err != nil {
		return zero, ErrTampered
	}

	var payload types.QRPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return zero, ErrTampered
	}
	if payload.Nonce == "" {
		return zero, ErrTampered
	}
	return payload, nil
}
