package camps

import (
	"context"
	"time"
)

// StartRefreshLoop reloads every live session's camps on each tick until ctx
// is done. A non-positive interval disables the loop.
func StartRefreshLoop(ctx context.Context, interval time.Duration, sessions *Sessions) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sessions.RefreshAll(ctx)
			}
		}
	}()
}
