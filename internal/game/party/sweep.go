package party

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is how often RunSweepLoop drops dead invites.
const DefaultSweepInterval = time.Minute

// RunSweepLoop calls SweepInvites every interval until ctx is cancelled.
func (c *Coordinator) RunSweepLoop(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("invite sweep loop started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("invite sweep loop stopping")
			return ctx.Err()
		case <-ticker.C:
			if n := c.SweepInvites(); n > 0 {
				slog.Debug("swept party invites", "removed", n)
			}
		}
	}
}
