package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type SeedDevOptions struct {
	// Devices to pre-provision, as "id" or "id:class" entries.
	Devices []string
}

// SeedDev provisions starter devices for dev environments.  Re-running is
// safe; existing rows keep their provisioning but are re-enabled.
func SeedDev(ctx context.Context, db *sql.DB, opt SeedDevOptions) error {
	now := time.Now().UTC().UnixMilli()

	devices := opt.Devices
	if len(devices) == 0 {
		devices = []string{"door-entry-01:basic"}
	}

	for _, seed := range devices {
		id, class, ok := strings.Cut(strings.TrimSpace(seed), ":")
		if !ok || strings.TrimSpace(class) == "" {
			class = "basic"
		}
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}

		if _, err := db.ExecContext(ctx, `
INSERT INTO devices(device_id, class, enabled, created_at_ms, updated_at_ms)
VALUES (?, ?, 1, ?, ?)
ON CONFLICT(device_id) DO UPDATE SET
  class = excluded.class,
  enabled = 1,
  updated_at_ms = excluded.updated_at_ms;
`, id, strings.TrimSpace(class), now, now); err != nil {
			return fmt.Errorf("seed device %s: %w", id, err)
		}
	}

	return nil
}
