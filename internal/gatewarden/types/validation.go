package types

// ReasonCode classifies why a validation ended the way it did.  It exists
// for audit events and metrics only and is never serialized to a device —
// devices see only the Message vocabulary below.
type ReasonCode string

const (
	ReasonGranted        ReasonCode = "granted"
	ReasonNotFound       ReasonCode = "not_found"
	ReasonMalformedInput ReasonCode = "malformed_input"
	ReasonRevoked        ReasonCode = "revoked"
	ReasonExpired        ReasonCode = "expired"
	ReasonExhausted      ReasonCode = "exhausted"
	ReasonCommitLost     ReasonCode = "commit_lost"
	ReasonQRTampered     ReasonCode = "qr_tampered"
	ReasonQRExpired      ReasonCode = "qr_expired"
	ReasonQRReplayed     ReasonCode = "qr_replayed"
	ReasonNotPermitted   ReasonCode = "not_permitted"
	ReasonWindowMismatch ReasonCode = "window_mismatch"
	ReasonNoWindowSecret ReasonCode = "no_window_secret"
)

// The closed outward message vocabulary.  Nothing outside this set is ever
// written into a ValidationResult message.
const (
	MsgGranted      = "access granted"
	MsgNotFound     = "credential not found"
	MsgExpired      = "expired"
	MsgRevoked      = "revoked"
	MsgUsageLimit   = "usage limit reached"
	MsgQRInvalid    = "QR invalid"
	MsgQRExpired    = "QR expired"
	MsgNotPermitted = "access not permitted"
)

// ValidationResult is the outcome of a validation attempt.  Success and
// Message are the only parts a device ever sees; Reason stays internal.
type ValidationResult struct {
	Success bool
	Message string
	Reason  ReasonCode
}

// Granted returns the single success result.
func Granted() ValidationResult {
	return ValidationResult{Success: true, Message: MsgGranted, Reason: ReasonGranted}
}

// Denied builds a failure result with the given outward message and
// internal reason.
func Denied(msg string, reason ReasonCode) ValidationResult {
	return ValidationResult{Success: false, Message: msg, Reason: reason}
}
