package service

import (
	"context"
	"strings"
	"time"

	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/store"
)

// DeviceRegistry fronts the DeviceStore with input hygiene.
type DeviceRegistry struct {
	store store.DeviceStore
}

func NewDeviceRegistry(st store.DeviceStore) *DeviceRegistry {
	return &DeviceRegistry{store: st}
}

func (r *DeviceRegistry) Resolve(ctx context.Context, deviceID string) (store.DeviceRecord, bool, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return store.DeviceRecord{}, false, nil
	}
	return r.store.Resolve(ctx, deviceID)
}

func (r *DeviceRegistry) NoteSeen(ctx context.Context, deviceID string, t time.Time) error {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil
	}
	return r.store.MarkSeen(ctx, deviceID, t)
}
