package repo

import (
	"context"
	"log/slog"
	"time"
)

// RunBlacklistPruner deletes expired blacklist rows every interval until ctx
// is done. A non-positive interval disables pruning.
func (r *GormRepo) RunBlacklistPruner(ctx context.Context, interval time.Duration, l *slog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := r.PruneBlacklist(ctx, now)
			if err != nil {
				l.Error("blacklist_prune_error", "error", err)
				continue
			}
			if n > 0 {
				l.Info("blacklist_prune_success", "deleted", n)
			}
		}
	}
}
