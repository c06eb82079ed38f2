package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/gatewarden-labs/gatewarden/internal/db"
	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/store/sqlite"
)

func TestDeviceStore_UnknownDevice_Unprovisioned(t *testing.T) {
	conn := openTestDB(t)
	ds := sqlite.NewDeviceStore(conn, newTestWriter(t, conn))

	_, ok, err := ds.Resolve(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ok {
		t.Error("expected unknown device to resolve as unprovisioned")
	}
}

func TestDeviceStore_SeededDevice_Resolves(t *testing.T) {
	conn := openTestDB(t)
	ds := sqlite.NewDeviceStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	if err := db.SeedDev(ctx, conn, db.SeedDevOptions{Devices: []string{"lobby-01:restricted"}}); err != nil {
		t.Fatalf("SeedDev: %v", err)
	}

	rec, ok, err := ds.Resolve(ctx, "lobby-01")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ok {
		t.Fatal("expected seeded device to be provisioned")
	}
	if rec.Class != "restricted" {
		t.Errorf("expected class=restricted, got %q", rec.Class)
	}
}

func TestDeviceStore_MarkSeen_CreatesDisabledPlaceholder(t *testing.T) {
	conn := openTestDB(t)
	ds := sqlite.NewDeviceStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	when := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	if err := ds.MarkSeen(ctx, "rogue-device", when); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}

	// Placeholder rows stay unprovisioned.
	_, ok, err := ds.Resolve(ctx, "rogue-device")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ok {
		t.Error("expected placeholder device to remain unprovisioned")
	}
}

func TestDeviceStore_MarkSeen_UpdatesLastSeen(t *testing.T) {
	conn := openTestDB(t)
	ds := sqlite.NewDeviceStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	if err := db.SeedDev(ctx, conn, db.SeedDevOptions{Devices: []string{"lobby-01"}}); err != nil {
		t.Fatalf("SeedDev: %v", err)
	}

	when := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	if err := ds.MarkSeen(ctx, "lobby-01", when); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}

	rec, ok, err := ds.Resolve(ctx, "lobby-01")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ok {
		t.Fatal("expected seeded device to be provisioned")
	}
	if !rec.LastSeen.Equal(when) {
		t.Errorf("expected last_seen %v, got %v", when, rec.LastSeen)
	}
}
