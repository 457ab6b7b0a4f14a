package session

import (
	"context"
	"log"
	"time"
)

// RunSweeper calls SweepExpired every interval until ctx is done.
func RunSweeper(ctx context.Context, store Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := store.SweepExpired(ctx, now)
			if err != nil {
				log.Printf("session sweep: %v", err)
				continue
			}
			if removed > 0 {
				log.Printf("session sweep: removed %d expired session(s)", removed)
			}
		}
	}
}
