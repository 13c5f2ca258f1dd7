package ratelimit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/world-explorer/internal/pkg/logger"
	"go.uber.org/zap"
)

// Evaler runs a Lua script. *redis.Client satisfies it.
type Evaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error)
}

// Config 限流配置
type Config struct {
	Enabled       bool   `mapstructure:"enabled"`
	MaxRequests   int    `mapstructure:"max_requests"`
	WindowSeconds int    `mapstructure:"window_seconds"`
	Prefix        string `mapstructure:"prefix"`

	// ExemptLoopback lets requests from this host through, e.g. the server's
	// own news client calling its proxy.
	ExemptLoopback bool `mapstructure:"exempt_loopback"`
}

// sliding window over a ZSET keyed by client; members are unique per request
const slidingWindow = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local current = redis.call('ZCARD', key)
if current < limit then
	redis.call('ZADD', key, now, member)
	redis.call('EXPIRE', key, window)
	return {1, limit - current - 1, now + window}
end
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')[2]
return {0, 0, tonumber(oldest) + window}
`

// Middleware limits requests per client IP. Preflights and, when configured,
// loopback peers are not counted. When the store errors the request goes through.
func Middleware(store Evaler, cfg Config, log *logger.Logger) gin.HandlerFunc {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 60
	}
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = 60
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "rate_limit"
	}

	return func(c *gin.Context) {
		if exempt(c, cfg) {
			c.Next()
			return
		}

		key := fmt.Sprintf("%s:ip:%s", cfg.Prefix, c.ClientIP())
		allowed, remaining, reset, err := check(c.Request.Context(), store, key, cfg)
		if err != nil {
			log.Warn("rate limiter unavailable, letting request through", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(reset, 10))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(cfg.WindowSeconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":  "error",
				"code":    "rateLimited",
				"message": fmt.Sprintf("too many requests, please try again in %d seconds", cfg.WindowSeconds),
			})
			return
		}
		c.Next()
	}
}

// RemoteIP is the direct peer, so a forwarded header cannot claim loopback
func exempt(c *gin.Context, cfg Config) bool {
	if c.Request.Method == http.MethodOptions {
		return true
	}
	if !cfg.ExemptLoopback {
		return false
	}
	ip := net.ParseIP(c.RemoteIP())
	return ip != nil && ip.IsLoopback()
}

func check(ctx context.Context, store Evaler, key string, cfg Config) (bool, int, int64, error) {
	now := time.Now()
	member := strconv.FormatInt(now.UnixNano(), 10)

	res, err := store.Eval(ctx, slidingWindow, []string{key}, now.Unix(), cfg.WindowSeconds, cfg.MaxRequests, member)
	if err != nil {
		return false, 0, 0, err
	}

	parts, ok := res.([]interface{})
	if !ok || len(parts) != 3 {
		return false, 0, 0, fmt.Errorf("invalid rate limit result: %v", res)
	}
	allowed, _ := parts[0].(int64)
	remaining, _ := parts[1].(int64)
	reset, _ := parts[2].(int64)
	return allowed == 1, int(remaining), reset, nil
}
