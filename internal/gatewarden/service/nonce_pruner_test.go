package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/service"
	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/store/memory"
	"github.com/gatewarden-labs/gatewarden/internal/logging"
)

func TestNoncePruner_DisabledWhenRetentionZero(t *testing.T) {
	cs := memory.NewCredentialStore()
	pruner := service.NewNoncePruner(cs, service.NoncePrunerConfig{
		RetentionDays: 0,
		IntervalHours: 1,
	}, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pruner.Start(ctx)
	// Stop should return immediately.
	pruner.Stop()
}

func TestNoncePruner_RemovesExpiredNonces(t *testing.T) {
	cs := memory.NewCredentialStore()
	ctx := context.Background()

	// A nonce whose token expired 40 days ago, and one still current.
	if _, err := cs.ConsumeNonce(ctx, "stale", time.Now().UTC().Add(-40*24*time.Hour)); err != nil {
		t.Fatalf("consume stale: %v", err)
	}
	if _, err := cs.ConsumeNonce(ctx, "live", time.Now().UTC().Add(time.Hour)); err != nil {
		t.Fatalf("consume live: %v", err)
	}

	pruner := service.NewNoncePruner(cs, service.NoncePrunerConfig{
		RetentionDays: 30,
		IntervalHours: 1,
	}, logging.Discard())

	ctx2, cancel := context.WithCancel(context.Background())
	defer cancel()
	pruner.Start(ctx2) // runs an immediate prune
	pruner.Stop()

	stale, err := cs.NonceConsumed(ctx, "stale")
	if err != nil {
		t.Fatalf("NonceConsumed stale: %v", err)
	}
	if stale {
		t.Error("expected stale nonce to be pruned")
	}

	live, err := cs.NonceConsumed(ctx, "live")
	if err != nil {
		t.Fatalf("NonceConsumed live: %v", err)
	}
	if !live {
		t.Error("expected live nonce to survive")
	}
}
