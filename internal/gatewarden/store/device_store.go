package store

import (
	"context"
	"time"
)

// DeviceRecord describes a provisioned entry device.
type DeviceRecord struct {
	DeviceID string
	Class    string // permission class, e.g. "basic", "restricted"
	Enabled  bool
	LastSeen time.Time
}

// DeviceStore knows which entry devices have been provisioned.  Unknown
// devices are not rejected outright (the validator falls back to the
// default class) but are still tracked via MarkSeen.
type DeviceStore interface {
	// Resolve returns the device record and whether it is provisioned.
	Resolve(ctx context.Context, deviceID string) (DeviceRecord, bool, error)

	// MarkSeen updates the device's last-seen time, creating a
	// placeholder row for unprovisioned devices.
	MarkSeen(ctx context.Context, deviceID string, t time.Time) error
}
