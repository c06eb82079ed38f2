package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/clock"
	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/qrtoken"
	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/store"
	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/types"
	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/windowcode"
	"github.com/gatewarden-labs/gatewarden/internal/logging"
)

// Input ceilings.  Anything longer never reaches the store — it is
// answered with the same generic failure as an absent credential, so
// oversized probes learn nothing.
const (
	maxCodeLen      = 64
	maxQRContentLen = 4096
)

// DefaultDeviceClass is assumed for devices that are not provisioned.
const DefaultDeviceClass = "basic"

// WindowSecretFn resolves the shared window-code secret for a device.
type WindowSecretFn func(deviceID string) []byte

// AccessValidator runs the validation state machines for all three
// submission paths.  Validation failure is a data outcome: every method
// returns a ValidationResult unless the storage layer itself fails, which
// is the only error a caller ever sees.
type AccessValidator struct {
	creds         store.CredentialStore
	nonces        store.NonceStore
	registry      *DeviceRegistry
	events        store.AccessEventStore
	cipher        *qrtoken.Cipher
	clk           clock.Clock
	windowSecret  WindowSecretFn
	windowMinutes int
	log           logging.Logger
}

type ValidatorConfig struct {
	Credentials   store.CredentialStore
	Nonces        store.NonceStore
	Registry      *DeviceRegistry
	Events        store.AccessEventStore
	Cipher        *qrtoken.Cipher
	Clock         clock.Clock
	WindowSecret  WindowSecretFn
	WindowMinutes int
	Logger        logging.Logger
}

func NewAccessValidator(cfg ValidatorConfig) *AccessValidator {
	minutes := cfg.WindowMinutes
	if minutes <= 0 {
		minutes = 5
	}
	return &AccessValidator{
		creds:         cfg.Credentials,
		nonces:        cfg.Nonces,
		registry:      cfg.Registry,
		events:        cfg.Events,
		cipher:        cfg.Cipher,
		clk:           cfg.Clock,
		windowSecret:  cfg.WindowSecret,
		windowMinutes: minutes,
		log:           cfg.Logger,
	}
}

// ValidateCode runs the plain-code path:
// Lookup -> CheckRevoked -> CheckExpiry -> CheckUsage -> Commit.
func (v *AccessValidator) ValidateCode(ctx context.Context, req types.ValidateCodeRequest) (types.ValidationResult, error) {
	v.noteDevice(ctx, req.DeviceID)

	// Malformed input gets the same answer as an absent credential.
	if !plausibleCode(req.Code) {
		return v.finish(ctx, req.DeviceID, req.Direction, "code", "", "",
			types.Denied(types.MsgNotFound, types.ReasonMalformedInput)), nil
	}

	p, err := v.creds.GetPasscode(ctx, req.Code)
	if errors.Is(err, store.ErrNotFound) {
		return v.finish(ctx, req.DeviceID, req.Direction, "code", "", "",
			types.Denied(types.MsgNotFound, types.ReasonNotFound)), nil
	}
	if err != nil {
		return types.ValidationResult{}, err
	}

	owner, ownerType := p.OwnerID, string(p.OwnerType)

	switch p.StatusAt(v.clk.Now()) {
	case types.StatusRevoked:
		return v.finish(ctx, req.DeviceID, req.Direction, "code", owner, ownerType,
			types.Denied(types.MsgRevoked, types.ReasonRevoked)), nil
	case types.StatusExpired:
		return v.finish(ctx, req.DeviceID, req.Direction, "code", owner, ownerType,
			types.Denied(types.MsgExpired, types.ReasonExpired)), nil
	case types.StatusExhausted:
		return v.finish(ctx, req.DeviceID, req.Direction, "code", owner, ownerType,
			types.Denied(types.MsgUsageLimit, types.ReasonExhausted)), nil
	}

	// Commit: the store performs the limit check and increment as one
	// atomic operation on the single row.  Losing the race here looks
	// exactly like the limit check failing.
	ok, err := v.creds.ConsumeUse(ctx, req.Code)
	if err != nil {
		return types.ValidationResult{}, err
	}
	if !ok {
		return v.finish(ctx, req.DeviceID, req.Direction, "code", owner, ownerType,
			types.Denied(types.MsgUsageLimit, types.ReasonCommitLost)), nil
	}

	return v.finish(ctx, req.DeviceID, req.Direction, "code", owner, ownerType,
		types.Granted()), nil
}

// ValidateQR runs the QR path:
// Decrypt -> CheckExpiry -> CheckNonce -> CheckPermission -> Commit.
func (v *AccessValidator) ValidateQR(ctx context.Context, req types.ValidateQRRequest) (types.ValidationResult, error) {
	v.noteDevice(ctx, req.DeviceID)

	if req.QRContent == "" || len(req.QRContent) > maxQRContentLen {
		return v.finish(ctx, req.DeviceID, req.Direction, "qr", "", "",
			types.Denied(types.MsgQRInvalid, types.ReasonMalformedInput)), nil
	}

	payload, err := v.cipher.Decrypt(req.QRContent)
	if err != nil {
		// Structural, authentication and deserialization failures all
		// land here and all look the same outward.
		return v.finish(ctx, req.DeviceID, req.Direction, "qr", "", "",
			types.Denied(types.MsgQRInvalid, types.ReasonQRTampered)), nil
	}

	owner, ownerType := payload.OwnerID, string(payload.OwnerType)

	// Expiry is the one distinguishable QR failure: reaching it requires
	// a token that decrypted, i.e. possession, not guessing.
	if v.clk.Now().After(payload.ExpiresAt) {
		return v.finish(ctx, req.DeviceID, req.Direction, "qr", owner, ownerType,
			types.Denied(types.MsgQRExpired, types.ReasonQRExpired)), nil
	}

	consumed, err := v.nonces.NonceConsumed(ctx, payload.Nonce)
	if err != nil {
		return types.ValidationResult{}, err
	}
	if consumed {
		// Replay is indistinguishable from tamper on the wire.
		return v.finish(ctx, req.DeviceID, req.Direction, "qr", owner, ownerType,
			types.Denied(types.MsgQRInvalid, types.ReasonQRReplayed)), nil
	}

	if !v.permitted(ctx, payload, req.DeviceID, req.Direction) {
		return v.finish(ctx, req.DeviceID, req.Direction, "qr", owner, ownerType,
			types.Denied(types.MsgNotPermitted, types.ReasonNotPermitted)), nil
	}

	// Commit: record-if-absent is atomic, so a concurrent replay of the
	// same token leaves exactly one winner.
	ok, err := v.nonces.ConsumeNonce(ctx, payload.Nonce, payload.ExpiresAt)
	if err != nil {
		return types.ValidationResult{}, err
	}
	if !ok {
		return v.finish(ctx, req.DeviceID, req.Direction, "qr", owner, ownerType,
			types.Denied(types.MsgQRInvalid, types.ReasonQRReplayed)), nil
	}

	return v.finish(ctx, req.DeviceID, req.Direction, "qr", owner, ownerType,
		types.Granted()), nil
}

// ValidateWindowCode checks a time-bucketed code against the device's
// provisioned window secret.  Same closed vocabulary as the plain path.
func (v *AccessValidator) ValidateWindowCode(ctx context.Context, req types.ValidateWindowRequest) (types.ValidationResult, error) {
	v.noteDevice(ctx, req.DeviceID)

	if !plausibleCode(req.Code) {
		return v.finish(ctx, req.DeviceID, "", "window", "", "",
			types.Denied(types.MsgNotFound, types.ReasonMalformedInput)), nil
	}

	_, provisioned, err := v.registry.Resolve(ctx, req.DeviceID)
	if err != nil {
		return types.ValidationResult{}, err
	}
	if !provisioned || v.windowSecret == nil {
		// Devices without a provisioned secret cannot accept window
		// codes; answer as if the code did not exist.
		return v.finish(ctx, req.DeviceID, "", "window", "", "",
			types.Denied(types.MsgNotFound, types.ReasonNoWindowSecret)), nil
	}

	secret := v.windowSecret(req.DeviceID)
	if !windowcode.Validate(req.Code, secret, v.windowMinutes, v.clk.Now()) {
		return v.finish(ctx, req.DeviceID, "", "window", "", "",
			types.Denied(types.MsgNotFound, types.ReasonWindowMismatch)), nil
	}

	return v.finish(ctx, req.DeviceID, "", "window", "", "", types.Granted()), nil
}

// permitted checks the payload's permission set against the submitting
// device's class and the requested direction.  Either grants access.
func (v *AccessValidator) permitted(ctx context.Context, payload types.QRPayload, deviceID, direction string) bool {
	class := DefaultDeviceClass
	if rec, ok, err := v.registry.Resolve(ctx, deviceID); err == nil && ok && rec.Class != "" {
		class = rec.Class
	}
	return payload.HasPermission(class) || (direction != "" && payload.HasPermission(direction))
}

// finish records the decision in the audit log and returns the result.
// A failed audit write never blocks the device's answer.
func (v *AccessValidator) finish(ctx context.Context, deviceID, direction, method, ownerID, ownerType string, res types.ValidationResult) types.ValidationResult {
	rec := store.AccessEventRecord{
		DeviceID:  deviceID,
		Direction: direction,
		Method:    method,
		OwnerID:   ownerID,
		OwnerType: ownerType,
		Granted:   res.Success,
		Reason:    res.Reason,
		DecidedAt: v.clk.Now(),
	}
	if err := v.events.RecordEvent(ctx, rec); err != nil {
		v.log.Warn(ctx, "audit write failed", "device_id", deviceID, "err", err)
	}
	return res
}

func (v *AccessValidator) noteDevice(ctx context.Context, deviceID string) {
	if err := v.registry.NoteSeen(ctx, deviceID, v.clk.Now()); err != nil {
		v.log.Warn(ctx, "device mark-seen failed", "device_id", deviceID, "err", err)
	}
}

// plausibleCode bounds length and restricts to printable ASCII.  Anything
// else is structurally impossible as an issued code and is reported as
// not found, never as a distinct parse failure.
func plausibleCode(code string) bool {
	if code == "" || len(code) > maxCodeLen {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c < 0x21 || c > 0x7e {
			return false
		}
	}
	return !strings.ContainsAny(code, `'";`)
}
