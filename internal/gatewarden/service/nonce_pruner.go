package service

import (
	"context"
	"time"

	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/store"
	"github.com/gatewarden-labs/gatewarden/internal/logging"
)

// NoncePruner periodically deletes consumed-nonce records whose tokens
// are past expiry plus a retention margin.  This is storage housekeeping
// only: a nonce can never validate again after expiry regardless of
// whether its row still exists.
//
// A retention of 0 disables pruning entirely.
type NoncePruner struct {
	store     store.NonceStore
	retention time.Duration
	interval  time.Duration
	log       logging.Logger
	cancel    context.CancelFunc
	done      chan struct{}
}

// NoncePrunerConfig holds the parameters for NewNoncePruner.
type NoncePrunerConfig struct {
	// RetentionDays is how long to keep consumed nonces after their
	// token expired.  0 means keep everything (pruner will not start).
	RetentionDays int

	// IntervalHours is how often the pruner runs.  Defaults to 6.
	IntervalHours int
}

// NewNoncePruner creates a pruner but does not start it.
// Call Start to begin the background loop.
func NewNoncePruner(s store.NonceStore, cfg NoncePrunerConfig, log logging.Logger) *NoncePruner {
	interval := time.Duration(cfg.IntervalHours) * time.Hour
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	return &NoncePruner{
		store:     s,
		retention: time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		interval:  interval,
		log:       log,
		done:      make(chan struct{}),
	}
}

// Start begins the background pruning loop.  It runs an immediate prune
// on startup, then repeats on the configured interval.  The loop exits
// when ctx is cancelled or Stop is called.
func (p *NoncePruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		p.log.Info(ctx, "nonce pruner disabled", "retention_days", 0)
		close(p.done)
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)

	go p.loop(ctx)

	p.log.Info(ctx, "nonce pruner started",
		"retention_days", int(p.retention.Hours()/24),
		"interval_hours", int(p.interval.Hours()))
}

// Stop signals the pruner to exit and waits for it to finish.
func (p *NoncePruner) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	<-p.done
}

func (p *NoncePruner) loop(ctx context.Context) {
	defer close(p.done)

	// Run immediately on startup to clean up any backlog.
	p.prune(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *NoncePruner) prune(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-p.retention)
	deleted, err := p.store.PruneNonces(ctx, cutoff)
	if err != nil {
		p.log.Error(ctx, "nonce prune failed", "err", err)
		return
	}
	if deleted > 0 {
		p.log.Info(ctx, "nonce prune", "deleted", deleted, "cutoff", cutoff.Format(time.RFC3339))
	}
}
