package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Sorted set per key: members are request ids scored by their timestamp in ms.
// Entries older than the window are dropped before counting.
const slidingWindowScript = `
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", now - window)
local current = redis.call("ZCARD", KEYS[1])
if current >= limit then
  return 0
end
redis.call("ZADD", KEYS[1], now, ARGV[4])
redis.call("PEXPIRE", KEYS[1], window)
return 1
`

// RedisLimiter is a sliding-window limiter shared across instances through Redis.
// It fails open: if Redis is unreachable the request is allowed.
type RedisLimiter struct {
	client  *redis.Client
	rule    Rule
	prefix  string
	script  *redis.Script
	timeout time.Duration
	logger  zerolog.Logger
	now     func() time.Time
}

// NewRedisLimiter returns nil when client is nil so callers can fall back
func NewRedisLimiter(client *redis.Client, rule Rule, prefix string, logger zerolog.Logger) *RedisLimiter {
	if client == nil {
		return nil
	}
	return &RedisLimiter{
		client:  client,
		rule:    rule,
		prefix:  prefix,
		script:  redis.NewScript(slidingWindowScript),
		timeout: 250 * time.Millisecond,
		logger:  logger,
		now:     time.Now,
	}
}

// Allow records the request and reports whether it is within the limit
func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	if key == "" || l.rule.disabled() {
		return true
	}
	redisKey := key
	if l.prefix != "" {
		redisKey = l.prefix + ":" + key
	}
	windowMs := l.rule.Window.Milliseconds()
	if windowMs <= 0 {
		windowMs = 1
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	nowMs := strconv.FormatInt(l.now().UnixMilli(), 10)
	allowed, err := l.script.Run(ctx, l.client, []string{redisKey}, nowMs, windowMs, l.rule.Limit, uuid.NewString()).Int64()
	if err != nil {
		l.logger.Warn().Err(err).Str("key", redisKey).Msg("Rate limiter unavailable, allowing request")
		return true
	}
	return allowed == 1
}
