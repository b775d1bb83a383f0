package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"go-talentbridge-backend/internal/delivery/http/response"
	"go-talentbridge-backend/pkg/logger"
	"go-talentbridge-backend/pkg/redis"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Time window duration
	Window time.Duration
	// Key prefix for Redis counters
	KeyPrefix string
}

// DefaultRateLimitConfig returns sensible defaults for API rate limiting
func DefaultRateLimitConfig(limit, windowSeconds int) RateLimitConfig {
	return RateLimitConfig{
		Limit:     limit,
		Window:    time.Duration(windowSeconds) * time.Second,
		KeyPrefix: "rl:ip:",
	}
}

// Lua script for atomic increment with TTL on first set.
// KEYS[1] = counter key, ARGV[1] = TTL seconds.
// Returns: [current_count, ttl_remaining]
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

// rateLimitEntry tracks request count for a key (in-memory fallback)
type rateLimitEntry struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

var (
	rateLimitStore sync.Map
	cleanupOnce    sync.Once
)

func startCleanup() {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		for range ticker.C {
			now := time.Now()
			rateLimitStore.Range(func(key, value interface{}) bool {
				entry := value.(*rateLimitEntry)
				entry.mu.Lock()
				if now.After(entry.resetAt) {
					rateLimitStore.Delete(key)
				}
				entry.mu.Unlock()
				return true
			})
		}
	}()
}

// RateLimit throttles per client IP. Counters live in Redis when available
// so limits hold across replicas; otherwise an in-memory fallback keeps a
// single instance protected.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	cleanupOnce.Do(startCleanup)

	return func(c *gin.Context) {
		key := cfg.KeyPrefix + c.ClientIP()

		var count, retryAfter int
		if rdb := redis.Client(); rdb != nil {
			count, retryAfter = redisCount(c, rdb, key, cfg)
		} else {
			count, retryAfter = memoryCount(key, cfg)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		remaining := cfg.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > cfg.Limit {
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			response.Error(c, http.StatusTooManyRequests, "Too many requests. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

func redisCount(c *gin.Context, rdb *goredis.Client, key string, cfg RateLimitConfig) (count, retryAfter int) {
	ttlSeconds := int(cfg.Window.Seconds())
	result, err := rdb.Eval(c.Request.Context(), rateLimitLuaScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		// Fail open on Redis trouble; the in-memory fallback still counts.
		logger.Log.Warn("Rate limit Redis eval failed, falling back", "error", err)
		return memoryCount(key, cfg)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return 0, ttlSeconds
	}
	countVal, _ := values[0].(int64)
	ttlVal, _ := values[1].(int64)
	return int(countVal), int(ttlVal)
}

func memoryCount(key string, cfg RateLimitConfig) (count, retryAfter int) {
	now := time.Now()
	actual, _ := rateLimitStore.LoadOrStore(key, &rateLimitEntry{resetAt: now.Add(cfg.Window)})
	entry := actual.(*rateLimitEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if now.After(entry.resetAt) {
		entry.count = 0
		entry.resetAt = now.Add(cfg.Window)
	}
	entry.count++
	return entry.count, int(time.Until(entry.resetAt).Seconds()) + 1
}
