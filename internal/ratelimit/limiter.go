// Package ratelimit implements fixed-window request counters in Redis,
// keyed by (scope, identifier). The same limiter throttles per-IP traffic
// and per-email OTP requests.
//
// A window opens on the first increment and closes only when the counter
// key expires. Nothing resets a counter early.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/studentversedubai-rgb/website-backend/internal/domain"
	"github.com/studentversedubai-rgb/website-backend/internal/metrics"
)

const keyPrefix = "ratelimit"

// Scopes in use by the service.
const (
	ScopeOTPRequest = "otp-request"
	ScopeJoinIP     = "ip:join"
	ScopeVerifyIP   = "ip:verify"
	ScopeContactIP  = "ip:contact"
)

// INCR and PEXPIRE run as one script so a crash between them cannot leave a
// counter without a TTL. A key found without a TTL gets one as well.
var fixedWindow = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 or redis.call('PTTL', KEYS[1]) == -1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return count
`)

// Policy bundles the window parameters for one scope.
type Policy struct {
	Scope  string
	Window time.Duration
	Max    int
}

type Limiter struct {
	redis redis.UniversalClient
}

func New(redisClient redis.UniversalClient) *Limiter {
	return &Limiter{redis: redisClient}
}

// Allow increments the (scope, identifier) counter and reports whether the
// resulting count is within max. A store failure is returned as an error
// wrapping domain.ErrStorageUnavailable; the caller decides what it means.
func (l *Limiter) Allow(ctx context.Context, scope, identifier string, window time.Duration, max int) (bool, error) {
	count, err := fixedWindow.Run(ctx, l.redis, []string{key(scope, identifier)}, window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: rate counter: %v", domain.ErrStorageUnavailable, err)
	}

	if count > int64(max) {
		metrics.RateLimitedTotal.WithLabelValues(scope).Inc()
		return false, nil
	}
	return true, nil
}

// Check is Allow with the parameters taken from p.
func (l *Limiter) Check(ctx context.Context, p Policy, identifier string) (bool, error) {
	return l.Allow(ctx, p.Scope, identifier, p.Window, p.Max)
}

func key(scope, identifier string) string {
	return keyPrefix + ":" + scope + ":" + identifier
}
