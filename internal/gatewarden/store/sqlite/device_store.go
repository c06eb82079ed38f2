package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/gatewarden-labs/gatewarden/internal/db"
	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/store"
)

type DeviceStore struct {
	db     *sql.DB
	writer *dbpkg.Writer
}

func NewDeviceStore(db *sql.DB, writer *dbpkg.Writer) *DeviceStore {
	return &DeviceStore{db: db, writer: writer}
}

// Resolve treats "provisioned" as enabled=1.  Placeholder rows created by
// MarkSeen for unknown devices start disabled, so they resolve as
// unprovisioned until an admin (or the dev seeder) enables them.
func (s *DeviceStore) Resolve(ctx context.Context, deviceID string) (store.DeviceRecord, bool, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return store.DeviceRecord{}, false, nil
	}

	var (
		rec      store.DeviceRecord
		enabled  int
		lastSeen sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT device_id, class, enabled, last_seen_at_ms
FROM devices
WHERE device_id = ?;
`, deviceID).Scan(&rec.DeviceID, &rec.Class, &enabled, &lastSeen)

	if err == sql.ErrNoRows {
		return store.DeviceRecord{}, false, nil
	}
	if err != nil {
		return store.DeviceRecord{}, false, fmt.Errorf("Resolve query: %w", err)
	}

	if enabled != 1 {
		return store.DeviceRecord{}, false, nil
	}
	rec.Enabled = true
	if lastSeen.Valid {
		rec.LastSeen = time.UnixMilli(lastSeen.Int64).UTC()
	}
	return rec, true, nil
}

// MarkSeen ensures a row exists for the device (disabled when new) and
// updates last_seen.
func (s *DeviceStore) MarkSeen(ctx context.Context, deviceID string, t time.Time) error {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil
	}
	if t.IsZero() {
		t = time.Now().UTC()
	}
	ms := t.UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO devices(device_id, enabled, created_at_ms, updated_at_ms)
VALUES (?, 0, ?, ?);
`, deviceID, ms, ms); err != nil {
			return fmt.Errorf("MarkSeen insert device: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
UPDATE devices
SET last_seen_at_ms = ?,
    updated_at_ms   = ?
WHERE device_id = ?;
`, ms, ms, deviceID); err != nil {
			return fmt.Errorf("MarkSeen update device: %w", err)
		}

		return nil
	})
}
