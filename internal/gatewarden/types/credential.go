package types

import "time"

// OwnerType identifies who a credential was issued to.
type OwnerType string

const (
	OwnerEmployee OwnerType = "employee"
	OwnerVisitor  OwnerType = "visitor"
)

// Valid reports whether t is one of the known owner types.
func (t OwnerType) Valid() bool {
	return t == OwnerEmployee || t == OwnerVisitor
}

// Status is the derived lifecycle state of a passcode.  It is never stored;
// Revoked is the only state reached by an explicit mutation.
type Status string

const (
	StatusActive    Status = "active"
	StatusExhausted Status = "exhausted"
	StatusExpired   Status = "expired"
	StatusRevoked   Status = "revoked"
)

// Passcode is a stored alphanumeric credential bound to an owner.
// UsageCount is incremented exclusively by the validator's commit step.
type Passcode struct {
	Code       string
	OwnerID    string
	OwnerType  OwnerType
	CreatedAt  time.Time
	ExpiresAt  *time.Time // nil = no expiry
	UsageLimit *int       // nil = unlimited
	UsageCount int
	RevokedAt  *time.Time
}

// StatusAt derives the passcode's status at the given instant.
// Revocation wins over expiry, expiry over exhaustion.
func (p Passcode) StatusAt(now time.Time) Status {
	if p.RevokedAt != nil {
		return StatusRevoked
	}
	if p.ExpiresAt != nil && now.After(*p.ExpiresAt) {
		return StatusExpired
	}
	if p.UsageLimit != nil && p.UsageCount >= *p.UsageLimit {
		return StatusExhausted
	}
	return StatusActive
}

// QRPayload is the transient credential carried inside an encrypted QR
// token.  It is never persisted as a row; only its nonce is recorded once
// consumed.
type QRPayload struct {
	OwnerID     string    `json:"owner_id"`
	OwnerType   OwnerType `json:"owner_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Permissions []string  `json:"permissions"`
	Nonce       string    `json:"nonce"`
}

// HasPermission reports whether the payload grants p.
func (q QRPayload) HasPermission(p string) bool {
	for _, have := range q.Permissions {
		if have == p {
			return true
		}
	}
	return false
}
