package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/clock"
	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/qrtoken"
	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/store"
	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/types"
)

// codeAlphabet has 32 symbols (A–Z without I and O, digits 2–9).  256 is
// divisible by 32, so mapping random bytes with a modulo is exactly
// uniform over the alphabet.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength gives 32^10 ≈ 1.1e15 possible codes, which keeps collision
// probability negligible across realistic issuance volume.
const CodeLength = 10

// maxDrawAttempts bounds the re-draw loop on uniqueness conflicts.
const maxDrawAttempts = 5

var (
	ErrInvalidOwner  = errors.New("owner id and a valid owner type are required")
	ErrInvalidPolicy = errors.New("usage limit and ttl must be positive")
	ErrCodeSpaceBusy = errors.New("could not draw a unique code")
	ErrNoPermissions = errors.New("at least one permission is required")
)

// IssueOptions carries the optional usage policy for a new passcode.
type IssueOptions struct {
	UsageLimit *int           // nil = unlimited
	TTL        *time.Duration // nil = no expiry
}

// PasscodeIssuer generates passcodes and QR tokens.  Both draw all
// randomness from crypto/rand; the store guarantees code uniqueness by
// rejecting duplicates, and the issuer re-draws rather than ever
// persisting one.
type PasscodeIssuer struct {
	creds  store.CredentialStore
	cipher *qrtoken.Cipher
	clk    clock.Clock
}

func NewPasscodeIssuer(creds store.CredentialStore, cipher *qrtoken.Cipher, clk clock.Clock) *PasscodeIssuer {
	return &PasscodeIssuer{creds: creds, cipher: cipher, clk: clk}
}

// Generate issues a new unique passcode bound to the owner.
func (i *PasscodeIssuer) Generate(ctx context.Context, ownerID string, ownerType types.OwnerType, opts IssueOptions) (types.Passcode, error) {
	if ownerID == "" || !ownerType.Valid() {
		return types.Passcode{}, ErrInvalidOwner
	}
	if opts.UsageLimit != nil && *opts.UsageLimit <= 0 {
		return types.Passcode{}, ErrInvalidPolicy
	}
	if opts.TTL != nil && *opts.TTL <= 0 {
		return types.Passcode{}, ErrInvalidPolicy
	}

	now := i.clk.Now()
	p := types.Passcode{
		OwnerID:    ownerID,
		OwnerType:  ownerType,
		CreatedAt:  now,
		UsageLimit: opts.UsageLimit,
	}
	if opts.TTL != nil {
		exp := now.Add(*opts.TTL)
		p.ExpiresAt = &exp
	}

	for attempt := 0; attempt < maxDrawAttempts; attempt++ {
		code, err := randomCode()
		if err != nil {
			return types.Passcode{}, fmt.Errorf("generate passcode: %w", err)
		}
		p.Code = code

		err = i.creds.CreatePasscode(ctx, p)
		if err == nil {
			return p, nil
		}
		if errors.Is(err, store.ErrDuplicateCode) {
			continue
		}
		return types.Passcode{}, fmt.Errorf("generate passcode: %w", err)
	}
	return types.Passcode{}, ErrCodeSpaceBusy
}

// IssueQR builds an ephemeral QR credential and returns its encrypted
// token plus the payload that went into it.  Nothing is persisted; only
// the nonce is recorded later, at validation commit.
func (i *PasscodeIssuer) IssueQR(ctx context.Context, ownerID string, ownerType types.OwnerType, permissions []string, ttl time.Duration) (string, types.QRPayload, error) {
	if ownerID == "" || !ownerType.Valid() {
		return "", types.QRPayload{}, ErrInvalidOwner
	}
	if len(permissions) == 0 {
		return "", types.QRPayload{}, ErrNoPermissions
	}
	if ttl <= 0 {
		return "", types.QRPayload{}, ErrInvalidPolicy
	}

	payload := types.QRPayload{
		OwnerID:     ownerID,
		OwnerType:   ownerType,
		ExpiresAt:   i.clk.Now().Add(ttl),
		Permissions: permissions,
		Nonce:       uuid.NewString(),
	}

	token, err := i.cipher.Encrypt(payload)
	if err != nil {
		return "", types.QRPayload{}, fmt.Errorf("issue qr: %w", err)
	}
	return token, payload, nil
}

// randomCode draws CodeLength symbols uniformly from codeAlphabet.
func randomCode() (string, error) {
	var buf [CodeLength]byte
	if _, err := io.ReadFull(rand.Reader, buf[:]); err != nil {
		return "", err
	}
	out := make([]byte, CodeLength)
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out), nil
}
