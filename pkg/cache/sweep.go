package cache

import (
	"context"
	"time"

	"github.com/aegiskit/aegis/pkg/xrun"
)

// Sweeper is implemented by Adapters that can actively scan for and
// evict expired entries, rather than relying solely on lazy expiry
// checked by Get/Add/Update on read. cachememory's LRU implements it;
// Ristretto and the networked backends rely on their own store's TTL
// mechanism instead and do not implement it.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// DefaultSweepInterval is used by StartSweep when interval is zero.
const DefaultSweepInterval = time.Minute

// StartSweep returns an xrun.ServiceFunc that calls adapter.Sweep on a
// fixed interval until its context is cancelled. Wire it into an
// xrun.Group (or xrun.Run) alongside the rest of a process's services:
//
//	g, ctx := xrun.NewGroup(ctx)
//	g.GoWithName("cache-sweep", cache.StartSweep(adapter, 0))
//
// Sweeping only reclaims memory held by keys nobody reads again before
// they expire; the expiration contract itself is already satisfied by
// lazy checks on every read, whether or not a sweep has run yet.
func StartSweep(adapter Sweeper, interval time.Duration) xrun.ServiceFunc {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if _, err := adapter.Sweep(ctx); err != nil {
					return err
				}
			}
		}
	}
}

// StartSweepCron is StartSweep driven by a cron expression instead of a
// flat interval, for deployments that want sweeps confined to a
// maintenance window (e.g. "0 3 * * *"). Returns an error immediately
// if spec does not parse.
func StartSweepCron(adapter Sweeper, spec string) (xrun.ServiceFunc, error) {
	return xrun.CronTicker(spec, func(ctx context.Context) error {
		_, err := adapter.Sweep(ctx)
		return err
	})
}
