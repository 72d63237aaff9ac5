package feeds

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// newSourceLimiter builds a limiter allowing at most one call per
// minInterval. No adapter calls it or waitTurn, so no source's calls are
// spaced by this package.
func newSourceLimiter(minInterval time.Duration) *rate.Limiter {
	return rate.NewLimiter(rate.Every(minInterval), 1)
}

// waitTurn blocks until the limiter permits the next call or ctx is done.
func waitTurn(ctx context.Context, limiter *rate.Limiter) error {
	return limiter.Wait(ctx)
}
