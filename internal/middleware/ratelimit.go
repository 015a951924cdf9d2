package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/kolade/campus-election/internal/config"
)

// tokenBucketScript implements an atomic token bucket in Redis. It
// refills tokens based on elapsed time, consumes one token per
// request, and returns {allowed, tokens_left, retry_after_ms}.
const tokenBucketScript = `
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local refill_tokens = tonumber(ARGV[2])
local refill_interval_ms = tonumber(ARGV[3])
local now_ms = tonumber(ARGV[4])
local ttl_ms = tonumber(ARGV[5])

local data = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(data[1])
local ts = tonumber(data[2])

if tokens == nil then
  tokens = capacity
  ts = now_ms
else
  local elapsed = now_ms - ts
  if elapsed > 0 then
    local refills = math.floor(elapsed / refill_interval_ms)
    if refills > 0 then
      tokens = math.min(capacity, tokens + refills * refill_tokens)
      ts = ts + refills * refill_interval_ms
    end
  end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
  allowed = 1
  tokens = tokens - 1
else
  retry_after_ms = refill_interval_ms - (now_ms - ts)
  if retry_after_ms < 0 then retry_after_ms = 0 end
end

redis.call('HSET', key, 'tokens', tokens, 'ts', ts)
redis.call('PEXPIRE', key, ttl_ms)

return {allowed, tokens, retry_after_ms}
`

// NewTokenBucket returns a Redis-backed token-bucket rate limiter.
// When rdb is nil or the config disables limiting, the middleware is
// a no-op. Redis errors fail open so the election stays reachable
// when Redis is down.
func NewTokenBucket(rdb *redis.Client, cfg config.RateLimitConfig) echo.MiddlewareFunc {
	script := redis.NewScript(tokenBucketScript)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if rdb == nil || !cfg.Enabled {
				return next(c)
			}

			key := buildRateKey(c, cfg)
			now := time.Now().UnixMilli()

			ctx, cancel := context.WithTimeout(c.Request().Context(), 500*time.Millisecond)
			defer cancel()

			res, err := script.Run(ctx, rdb, []string{key},
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				now,
				cfg.TTL.Milliseconds(),
			).Result()
			if err != nil {
				return next(c)
			}

			vals, ok := res.([]interface{})
			if !ok || len(vals) != 3 {
				return next(c)
			}
			allowed := asInt64(vals[0]) == 1
			remaining := asInt64(vals[1])
			retryAfterMs := asInt64(vals[2])

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if !allowed {
				retrySec := (retryAfterMs + 999) / 1000
				if retrySec < 1 {
					retrySec = 1
				}
				h.Set("Retry-After", strconv.FormatInt(retrySec, 10))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error": "too_many_requests",
				})
			}
			return next(c)
		}
	}
}

// buildRateKey derives the bucket key from the request according to
// the configured strategy. "user_route" prefers the authenticated
// user id and falls back to the client IP.
func buildRateKey(c echo.Context, cfg config.RateLimitConfig) string {
	route := c.Path()
	switch cfg.KeyStrategy {
	case "user_route":
		if uid := currentUserID(c); uid != "" {
			return fmt.Sprintf("%s:u:%s:%s", cfg.Prefix, uid, route)
		}
		fallthrough
	default: // ip_route
		return fmt.Sprintf("%s:ip:%s:%s", cfg.Prefix, c.RealIP(), route)
	}
}

func currentUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	}
	return ""
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	}
	return 0
}
