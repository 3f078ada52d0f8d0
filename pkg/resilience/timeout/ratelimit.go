package timeout

import (
	"fmt"

	"github.com/go-redis/redis_rate/v10"

	"github.com/aegiskit/aegis/pkg/pipeline"
)

// ErrRateLimited is returned when WithRateLimiter's admission check
// rejects the call before it reaches the inner Thunk.
type ErrRateLimited struct {
	Key string
}

func (e *ErrRateLimited) Error() string {
	return fmt.Sprintf("timeout: rate limit exceeded for %q", e.Key)
}

// WithRateLimiter adds an admission check ahead of the deadline race:
// every invocation consults limiter for keyFn(ctx), rejecting with
// *ErrRateLimited when the limit is exceeded. No other package in this
// module installs it; the hedge middlewares have no rate-limit option.
func WithRateLimiter(limiter *redis_rate.Limiter, limit redis_rate.Limit, keyFn func(*pipeline.Ctx) string) Option {
	return func(c *config) {
		c.admit = func(ctx *pipeline.Ctx) error {
			key := keyFn(ctx)
			res, err := limiter.Allow(ctx, key, limit)
			if err != nil {
				return err
			}
			if res.Allowed == 0 {
				return &ErrRateLimited{Key: key}
			}
			return nil
		}
	}
}
