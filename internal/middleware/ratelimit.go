package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"todolist-kv/internal/config"
	"todolist-kv/internal/logging"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool
	RequestsPerMin int64
	Period         time.Duration

	// RedisClient switches counters to a shared Redis store. Nil keeps them in process memory.
	RedisClient *redis.Client
	RedisPrefix string
}

// NewRateLimitConfigFromEnv creates rate limit config from environment variables
func NewRateLimitConfigFromEnv() *RateLimitConfig {
	return &RateLimitConfig{
		Enabled:        config.GetEnvBool("RATE_LIMIT_ENABLED", true),
		RequestsPerMin: int64(config.GetEnvInt("RATE_LIMIT_REQUESTS_PER_MIN", 60)),
		Period:         time.Minute,
		RedisPrefix:    config.GetEnv("RATE_LIMIT_REDIS_PREFIX", "todolist:limiter"),
	}
}

// GlobalRateLimiter limits every request per client IP
func GlobalRateLimiter(cfg *RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		logging.Logger.Info("Rate limiting is disabled")
		return passThrough
	}
	logging.Logger.Infof("Rate limiting enabled: %d requests per minute", cfg.RequestsPerMin)
	return newRateLimiter(cfg, "global", cfg.RequestsPerMin, "Too many requests. Please try again later.")
}

// ReadRateLimiter allows twice the global rate for page and list reads
func ReadRateLimiter(cfg *RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passThrough
	}
	return newRateLimiter(cfg, "read", cfg.RequestsPerMin*2, "Too many read requests. Please try again later.")
}

// WriteRateLimiter allows half the global rate for create, toggle and delete
func WriteRateLimiter(cfg *RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passThrough
	}
	limit := cfg.RequestsPerMin / 2
	if limit < 1 {
		limit = 1
	}
	return newRateLimiter(cfg, "write", limit, "Too many write requests. Please try again later.")
}

func passThrough(c *gin.Context) {
	c.Next()
}

func newRateLimiter(cfg *RateLimitConfig, kind string, limit int64, message string) gin.HandlerFunc {
	period := cfg.Period
	if period <= 0 {
		period = time.Minute
	}
	rate := limiter.Rate{Period: period, Limit: limit}
	instance := limiter.New(newLimiterStore(cfg, kind), rate)

	return mgin.NewMiddleware(instance, mgin.WithLimitReachedHandler(func(c *gin.Context) {
		logging.Logger.WithFields(logrus.Fields{
			"client_ip":     c.ClientIP(),
			"path":          c.Request.URL.Path,
			"method":        c.Request.Method,
			"limit_type":    kind,
			"limit_per_min": rate.Limit,
		}).Warn("Rate limit exceeded")

		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"code":       "RATE_LIMIT_EXCEEDED",
			"message":    message,
			"retryAfter": int(rate.Period.Seconds()),
			"limit":      rate.Limit,
		})
	}))
}

// newLimiterStore gives each limiter kind its own key space so global, read and
// write counters never share buckets.
func newLimiterStore(cfg *RateLimitConfig, kind string) limiter.Store {
	if cfg.RedisClient != nil {
		store, err := sredis.NewStoreWithOptions(cfg.RedisClient, limiter.StoreOptions{
			Prefix:   cfg.RedisPrefix + ":" + kind,
			MaxRetry: 3,
		})
		if err == nil {
			return store
		}
		logging.Logger.WithError(err).Warn("Redis rate limit store unavailable, falling back to memory")
	}
	return memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          kind,
		CleanUpInterval: limiter.DefaultCleanUpInterval,
	})
}
