package tracker

import (
	"context"
	"time"
)

// Start launches the periodic refresh driver: one immediate cycle, then one
// per interval, with results delivered through the OnUpdate callback so the
// caller never blocks. Starting an already-started driver is a no-op.
func (t *Tracker) Start(ctx context.Context, interval time.Duration) {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	if t.running {
		return
	}
	t.running = true
	stopped := make(chan struct{})
	t.stopped = stopped

	go func() {
		t.RefreshAll(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				t.logger.Debug().Msg("refresh driver stopping: context done")
				// Clear the running flag so a later Start with a live
				// context works. Stop may have raced us and installed a
				// new driver already, so only clear our own run.
				t.runMu.Lock()
				if t.stopped == stopped {
					t.running = false
					t.stopped = nil
				}
				t.runMu.Unlock()
				return
			case <-stopped:
				return
			case <-ticker.C:
				t.RefreshAll(ctx)
			}
		}
	}()
}

// Stop halts the periodic driver. Stopping an already-stopped driver is a
// no-op.
func (t *Tracker) Stop() {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	if !t.running {
		return
	}
	t.running = false
	close(t.stopped)
	t.stopped = nil
}
