package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/store"
)

type DeviceStore struct {
	mu      sync.RWMutex
	devices map[string]store.DeviceRecord
}

// NewDeviceStore seeds provisioned devices from "id:class" pairs.  A bare
// id gets the "basic" class.
func NewDeviceStore(seeds []string) *DeviceStore {
	devices := make(map[string]store.DeviceRecord, len(seeds))
	for _, seed := range seeds {
		seed = strings.TrimSpace(seed)
		if seed == "" {
			continue
		}
		id, class, ok := strings.Cut(seed, ":")
		if !ok || strings.TrimSpace(class) == "" {
			class = "basic"
		}
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		devices[id] = store.DeviceRecord{
			DeviceID: id,
			Class:    strings.TrimSpace(class),
			Enabled:  true,
		}
	}
	return &DeviceStore{devices: devices}
}

func (s *DeviceStore) Resolve(_ context.Context, deviceID string) (store.DeviceRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.devices[deviceID]
	if !ok || !rec.Enabled {
		return store.DeviceRecord{}, false, nil
	}
	return rec, true, nil
}

func (s *DeviceStore) MarkSeen(_ context.Context, deviceID string, t time.Time) error {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil
	}
	if t.IsZero() {
		t = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.devices[deviceID]
	if !ok {
		rec = store.DeviceRecord{DeviceID: deviceID, Class: "basic"}
	}
	rec.LastSeen = t
	s.devices[deviceID] = rec
	return nil
}
