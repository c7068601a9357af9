package workers

import (
	"context"
	"log/slog"
	"time"

	"comms-hub/ratelimit"
)

// CleanupWorker prunes expired rate-limit entries so the admission table
// stays proportional to active callers, not to every caller ever seen.
type CleanupWorker struct {
	log      *slog.Logger
	limiter  *ratelimit.Limiter
	interval time.Duration
}

func NewCleanupWorker(log *slog.Logger, limiter *ratelimit.Limiter, interval time.Duration) *CleanupWorker {
	return &CleanupWorker{log: log, limiter: limiter, interval: interval}
}

func (w *CleanupWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if removed := w.limiter.Prune(); removed > 0 {
				w.log.Debug("Pruned expired rate-limit entries", "removed", removed)
			}
		}
	}
}
