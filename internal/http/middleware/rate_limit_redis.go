package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// INCR + PEXPIRE must be atomic or the first request of a window can
// leave an immortal counter behind.
var fixedWindowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

// RedisFixedWindowLimiter counts requests per key in fixed windows,
// shared across instances.
type RedisFixedWindowLimiter struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisFixedWindowLimiter(client redis.UniversalClient, prefix string) *RedisFixedWindowLimiter {
	if prefix == "" {
		prefix = "rl"
	}
	return &RedisFixedWindowLimiter{client: client, prefix: prefix}
}

func (l *RedisFixedWindowLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	if l.client == nil {
		return false, window, fmt.Errorf("redis client is nil")
	}
	if key == "" {
		key = "unknown"
	}
	windowMS := msOrSecond(window)

	raw, err := fixedWindowScript.Run(ctx, l.client, []string{l.prefix + ":" + key}, windowMS).Result()
	if err != nil {
		return false, window, err
	}
	count, ttlMS, err := decodeWindowReply(raw)
	if err != nil {
		return false, window, err
	}

	if ttlMS <= 0 {
		// PTTL can report -1/-2 if the key raced away between calls.
		ttlMS = msOrSecond(window)
	}
	return count <= int64(limit), time.Duration(ttlMS) * time.Millisecond, nil
}

func msOrSecond(window time.Duration) int64 {
	if ms := window.Milliseconds(); ms > 0 {
		return ms
	}
	return 1000
}

func decodeWindowReply(raw any) (count, ttlMS int64, err error) {
	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return 0, 0, fmt.Errorf("unexpected redis script reply %T", raw)
	}
	if count, err = toInt64(values[0]); err != nil {
		return 0, 0, err
	}
	if ttlMS, err = toInt64(values[1]); err != nil {
		return 0, 0, err
	}
	return count, ttlMS, nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case uint64:
		return int64(n), nil
	case int:
		return int64(n), nil
	}
	return 0, fmt.Errorf("unexpected redis reply element %T", v)
}
