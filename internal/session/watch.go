package session

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/dayrun/dayrun/internal/logging"
	"github.com/dayrun/dayrun/internal/platform"
)

var watchLog = logging.ForComponent(logging.CompTracker)

// pollInterval is the fallback cadence for filesystems where fsnotify
// does not deliver events.
var pollInterval = 2 * time.Second

// WaitForClear blocks until no live detached session remains: the
// monitor removes its marker, a dead monitor's stale marker self-heals,
// or ctx is cancelled. File events drive the wakeups where fsnotify
// works; a poll ticker covers filesystems that swallow events (network
// mounts, 9p under WSL).
func WaitForClear(ctx context.Context, env *Environment, tracker *Tracker) error {
	if status, _ := tracker.Status(); status != TrackerRunning {
		return nil
	}

	if warning := platform.CheckFsnotifySupport(env.Dir); warning != "" {
		watchLog.Warn("fsnotify may be unreliable here, relying on polling", "detail", warning)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan struct{}, 1)
	g, watchCtx := errgroup.WithContext(watchCtx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		watchLog.Warn("fsnotify unavailable, polling only", "error", err)
	} else {
		target := env.TrackerPath()
		g.Go(func() error {
			defer watcher.Close()
			if err := watcher.Add(env.Dir); err != nil {
				watchLog.Warn("failed to watch dayrun dir", "dir", env.Dir, "error", err)
				return nil
			}
			for {
				select {
				case <-watchCtx.Done():
					return nil
				case ev, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if ev.Name != target {
						continue
					}
					// Coalesce; the checker only needs a nudge.
					select {
					case events <- struct{}{}:
					default:
					}
				case _, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
				}
			}
		})
	}

	g.Go(func() error {
		defer cancel()
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-watchCtx.Done():
				return ctx.Err()
			case <-events:
			case <-ticker.C:
			}
			if status, _ := tracker.Status(); status != TrackerRunning {
				return nil
			}
		}
	})

	return g.Wait()
}
