package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/thanghienlanh/web33/internal/validation"
)

const redisKeyPrefix = "ratelimit:"

// fixedWindowScript counts a request and opens the window in one step. A key
// found without an expiry gets one, so a window can never outlive its length.
var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 or redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RedisLimiter shares fixed windows between instances. The window opens with
// the first request and expires with the key.
type RedisLimiter struct {
	client *redis.Client
}

var _ Limiter = (*RedisLimiter)(nil)

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

func (l *RedisLimiter) Check(ctx context.Context, identifier string, maxRequests int, windowLen time.Duration) (validation.Result, error) {
	key := redisKeyPrefix + identifier

	count, err := fixedWindowScript.Run(ctx, l.client, []string{key}, windowLen.Milliseconds()).Int64()
	if err != nil {
		return validation.Result{}, fmt.Errorf("rate limit check: %w", err)
	}

	if count > int64(maxRequests) {
		return exceeded(maxRequests, windowLen), nil
	}
	return validation.OK(), nil
}
