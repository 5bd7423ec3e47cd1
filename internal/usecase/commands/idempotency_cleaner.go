package commands

import (
	"context"
	"log/slog"
	"time"
)

const idempotencyCleanInterval = time.Hour

// IdempotencyCleaner periodically purges expired idempotency keys. Keys stop
// guarding replays once their TTL passes, so the rows are dead weight; the
// partial index on expires_at keeps the sweep cheap.
type IdempotencyCleaner struct {
	repo     IdempotencyRepository
	interval time.Duration
}

func NewIdempotencyCleaner(repo IdempotencyRepository) *IdempotencyCleaner {
	return &IdempotencyCleaner{
		repo:     repo,
		interval: idempotencyCleanInterval,
	}
}

// Sweep deletes all keys past their expiry and reports how many were removed.
func (c *IdempotencyCleaner) Sweep(ctx context.Context) (int64, error) {
	removed, err := c.repo.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		slog.Info("purged expired idempotency keys", "removed", removed)
	}
	return removed, nil
}

// Run sweeps on a fixed interval until the context is cancelled.
func (c *IdempotencyCleaner) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.Sweep(ctx); err != nil {
				slog.Error("idempotency key sweep failed", "error", err.Error())
			}
		}
	}
}
