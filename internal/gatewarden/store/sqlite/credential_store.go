// Package sqlite implements the store ports over a single SQLite database.
// All writes go through the shared single-writer transaction goroutine;
// reads hit the pool directly.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/gatewarden-labs/gatewarden/internal/db"
	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/store"
	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/types"
)

type CredentialStore struct {
	db     *sql.DB
	writer *dbpkg.Writer
}

func NewCredentialStore(db *sql.DB, writer *dbpkg.Writer) *CredentialStore {
	return &CredentialStore{db: db, writer: writer}
}

func (s *CredentialStore) CreatePasscode(ctx context.Context, p types.Passcode) error {
	createdMs := p.CreatedAt.UTC().UnixMilli()

	var expiresMs any
	if p.ExpiresAt != nil {
		expiresMs = p.ExpiresAt.UTC().UnixMilli()
	}
	var limit any
	if p.UsageLimit != nil {
		limit = *p.UsageLimit
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM passcodes WHERE code = ?;`, p.Code).Scan(&one)
		if err == nil {
			return store.ErrDuplicateCode
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("CreatePasscode check: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
INSERT INTO passcodes(
  code, owner_id, owner_type, created_at_ms, expires_at_ms,
  usage_limit, usage_count
) VALUES (?, ?, ?, ?, ?, ?, 0);
`, p.Code, p.OwnerID, string(p.OwnerType), createdMs, expiresMs, limit); err != nil {
			return fmt.Errorf("CreatePasscode insert: %w", err)
		}
		return nil
	})
}

func (s *CredentialStore) GetPasscode(ctx context.Context, code string) (types.Passcode, error) {
	var (
		p         types.Passcode
		ownerType string
		createdMs int64
		expiresMs sql.NullInt64
		limit     sql.NullInt64
		revokedMs sql.NullInt64
	)

	err := s.db.QueryRowContext(ctx, `
SELECT code, owner_id, owner_type, created_at_ms, expires_at_ms,
       usage_limit, usage_count, revoked_at_ms
FROM passcodes
WHERE code = ?;
`, code).Scan(&p.Code, &p.OwnerID, &ownerType, &createdMs, &expiresMs,
		&limit, &p.UsageCount, &revokedMs)

	if err == sql.ErrNoRows {
		return types.Passcode{}, store.ErrNotFound
	}
	if err != nil {
		return types.Passcode{}, fmt.Errorf("GetPasscode query: %w", err)
	}

	p.OwnerType = types.OwnerType(ownerType)
	p.CreatedAt = time.UnixMilli(createdMs).UTC()
	if expiresMs.Valid {
		t := time.UnixMilli(expiresMs.Int64).UTC()
		p.ExpiresAt = &t
	}
	if limit.Valid {
		n := int(limit.Int64)
		p.UsageLimit = &n
	}
	if revokedMs.Valid {
		t := time.UnixMilli(revokedMs.Int64).UTC()
		p.RevokedAt = &t
	}
	return p, nil
}

// ConsumeUse performs the commit step of the plain-code path: the guard
// and the increment are a single UPDATE on the one row, so two racing
// validations of a limit-1 code can never both succeed.
func (s *CredentialStore) ConsumeUse(ctx context.Context, code string) (bool, error) {
	var consumed bool

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE passcodes
SET usage_count = usage_count + 1
WHERE code = ?
  AND revoked_at_ms IS NULL
  AND (usage_limit IS NULL OR usage_count < usage_limit);
`, code)
		if err != nil {
			return fmt.Errorf("ConsumeUse update: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("ConsumeUse rows: %w", err)
		}
		consumed = n == 1
		return nil
	})
	return consumed, err
}

func (s *CredentialStore) RevokePasscode(ctx context.Context, code string, at time.Time) error {
	atMs := at.UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE passcodes
SET revoked_at_ms = COALESCE(revoked_at_ms, ?)
WHERE code = ?;
`, atMs, code)
		if err != nil {
			return fmt.Errorf("RevokePasscode update: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("RevokePasscode rows: %w", err)
		}
		if n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

func (s *CredentialStore) NonceConsumed(ctx context.Context, nonce string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM consumed_nonces WHERE nonce = ?;`, nonce).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("NonceConsumed query: %w", err)
	}
	return true, nil
}

// ConsumeNonce is the commit step of the QR path: INSERT OR IGNORE makes
// record-if-absent atomic, so a replayed token loses the race exactly once.
func (s *CredentialStore) ConsumeNonce(ctx context.Context, nonce string, expiresAt time.Time) (bool, error) {
	expiresMs := expiresAt.UTC().UnixMilli()
	nowMs := time.Now().UTC().UnixMilli()

	var consumed bool
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO consumed_nonces(nonce, expires_at_ms, consumed_at_ms)
VALUES (?, ?, ?);
`, nonce, expiresMs, nowMs)
		if err != nil {
			return fmt.Errorf("ConsumeNonce insert: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("ConsumeNonce rows: %w", err)
		}
		consumed = n == 1
		return nil
	})
	return consumed, err
}

// PruneNonces deletes consumed nonces whose tokens expired before cutoff.
// Uses the idx_nonces_expiry index for an efficient range scan.
func (s *CredentialStore) PruneNonces(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffMs := cutoff.UTC().UnixMilli()

	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
DELETE FROM consumed_nonces
WHERE expires_at_ms < ?;
`, cutoffMs)
		if err != nil {
			return fmt.Errorf("PruneNonces: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}
