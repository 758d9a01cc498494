package utils

import (
	"context"
	"log/slog"
	"time"
)

// CodeStore clears one-time codes that expired before cutoff.
type CodeStore interface {
	ClearExpiredCodes(ctx context.Context, cutoff time.Time) (int64, error)
}

// SweepExpiredCodes clears codes that expired more than retention ago. Codes that
// expired recently are kept so verifying them still reports them as expired.
func SweepExpiredCodes(ctx context.Context, store CodeStore, retention time.Duration, now time.Time) {
	n, err := store.ClearExpiredCodes(ctx, now.Add(-retention))
	if err != nil {
		slog.ErrorContext(ctx, "sweep expired codes failed", "error", err)
		return
	}
	if n > 0 {
		slog.InfoContext(ctx, "swept expired codes", "accounts", n)
	}
}

// StartCodeSweeper runs one sweep now and then one every interval until ctx is done.
func StartCodeSweeper(ctx context.Context, store CodeStore, retention, interval time.Duration) {
	SweepExpiredCodes(ctx, store, retention, time.Now().UTC())

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				SweepExpiredCodes(ctx, store, retention, time.Now().UTC())
			}
		}
	}()

	slog.Info("code sweeper started", "interval", interval, "retention", retention)
}
