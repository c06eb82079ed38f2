package store

import (
	"context"
	"errors"
	"time"

	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/types"
)

var (
	// ErrNotFound is returned for any lookup miss, including malformed
	// input.  Store implementations must never surface a parse or
	// validation error for a bad code — a probe gets the same answer as
	// a genuinely absent credential.
	ErrNotFound = errors.New("credential not found")

	// ErrDuplicateCode is returned by CreatePasscode on a code collision
	// so the issuer can re-draw.
	ErrDuplicateCode = errors.New("code already exists")
)

// CredentialStore persists passcodes.  ConsumeUse is the single commit
// point of the plain-code path: the usage-limit check and the increment
// happen in one atomic operation scoped to that row, never as a read
// followed by a separate write.
type CredentialStore interface {
	CreatePasscode(ctx context.Context, p types.Passcode) error
	GetPasscode(ctx context.Context, code string) (types.Passcode, error)

	// ConsumeUse atomically increments usage_count if the passcode is
	// still consumable (not revoked, under its limit).  Returns false
	// when the guard fails, which a concurrent loser observes as the
	// usage limit having been reached.
	ConsumeUse(ctx context.Context, code string) (bool, error)

	RevokePasscode(ctx context.Context, code string, at time.Time) error
}

// NonceStore tracks consumed QR nonces for replay detection.  ConsumeNonce
// is the commit point of the QR path: record-if-absent in one atomic
// operation keyed by the nonce.
type NonceStore interface {
	// NonceConsumed reports whether the nonce is already recorded.
	NonceConsumed(ctx context.Context, nonce string) (bool, error)

	// ConsumeNonce records the nonce; returns false if it was already
	// present (replay).
	ConsumeNonce(ctx context.Context, nonce string, expiresAt time.Time) (bool, error)

	// PruneNonces removes consumed nonces whose tokens expired before
	// cutoff.  Retention housekeeping only; replay safety within a
	// token's lifetime never depends on it.
	PruneNonces(ctx context.Context, cutoff time.Time) (int64, error)
}
