package store

import (
	"context"
	"time"

	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/types"
)

// AccessEventRecord captures a single validation decision for the audit
// log.  Reason carries the internal reason code — this is the only place
// it is persisted; it never reaches a device.
type AccessEventRecord struct {
	DeviceID  string
	Direction string
	Method    string // "code" | "qr" | "window"
	OwnerID   string // empty when the credential never resolved
	OwnerType string
	Granted   bool
	Reason    types.ReasonCode
	DecidedAt time.Time
}

// AccessEventStore persists validation decisions as an append-only audit log.
type AccessEventStore interface {
	RecordEvent(ctx context.Context, rec AccessEventRecord) error
}
