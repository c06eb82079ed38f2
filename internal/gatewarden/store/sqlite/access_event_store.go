package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/gatewarden-labs/gatewarden/internal/db"
	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/store"
)

type AccessEventStore struct {
	db     *sql.DB
	writer *dbpkg.Writer
}

func NewAccessEventStore(db *sql.DB, writer *dbpkg.Writer) *AccessEventStore {
	return &AccessEventStore{db: db, writer: writer}
}

func (s *AccessEventStore) RecordEvent(ctx context.Context, rec store.AccessEventRecord) error {
	if rec.DecidedAt.IsZero() {
		rec.DecidedAt = time.Now().UTC()
	}
	decidedMs := rec.DecidedAt.UTC().UnixMilli()

	var granted int
	if rec.Granted {
		granted = 1
	}

	var ownerID, ownerType any
	if rec.OwnerID != "" {
		ownerID = rec.OwnerID
	}
	if rec.OwnerType != "" {
		ownerType = rec.OwnerType
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO access_events(
  device_id, direction, method, owner_id, owner_type,
  granted, reason, decided_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`,
			rec.DeviceID, rec.Direction, rec.Method, ownerID, ownerType,
			granted, string(rec.Reason), decidedMs,
		); err != nil {
			return fmt.Errorf("RecordEvent insert: %w", err)
		}
		return nil
	})
}
