package checks

import (
	"context"
	"time"

	"github.com/driftline/foundry/internal/cache"
	"github.com/driftline/foundry/internal/monitoring"
)

const defaultCacheTimeout = 2 * time.Second

// CacheStore returns a probe for the distributed cache tier. An absent or
// unreachable store reports degraded rather than down: the field cascade
// keeps working against the persistent store without it.
func CacheStore(store cache.Store, timeout time.Duration) monitoring.Check {
	return monitoring.NewCheck("cache", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if store == nil {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusDegraded,
				Details:  "cache store not configured",
				Duration: time.Since(start),
			}
		}

		probeCtx, cancel := context.WithTimeout(ctx, chooseTimeout(timeout, defaultCacheTimeout))
		defer cancel()

		if err := store.Ping(probeCtx); err != nil {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusDegraded,
				Details:  err.Error(),
				Duration: time.Since(start),
			}
		}

		return monitoring.ProbeResult{
			Status:   monitoring.StatusUp,
			Duration: time.Since(start),
		}
	})
}
