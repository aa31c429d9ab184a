package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todolist-kv/internal/testutil"
)

func TestNewRateLimitConfigFromEnv(t *testing.T) {
	t.Run("uses default values when env vars not set", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_ENABLED", "")
		t.Setenv("RATE_LIMIT_REQUESTS_PER_MIN", "")

		cfg := NewRateLimitConfigFromEnv()

		assert.True(t, cfg.Enabled)
		assert.Equal(t, int64(60), cfg.RequestsPerMin)
		assert.Equal(t, time.Minute, cfg.Period)
		assert.Equal(t, "todolist:limiter", cfg.RedisPrefix)
		assert.Nil(t, cfg.RedisClient)
	})

	t.Run("uses custom values from environment", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_ENABLED", "false")
		t.Setenv("RATE_LIMIT_REQUESTS_PER_MIN", "100")

		cfg := NewRateLimitConfigFromEnv()

		assert.False(t, cfg.Enabled)
		assert.Equal(t, int64(100), cfg.RequestsPerMin)
	})

	t.Run("falls back on invalid numbers", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_REQUESTS_PER_MIN", "invalid")

		assert.Equal(t, int64(60), NewRateLimitConfigFromEnv().RequestsPerMin)
	})
}

func countStatuses(router *gin.Engine, method string, n int, remoteAddr string) (ok, limited int) {
	for i := 0; i < n; i++ {
		req := httptest.NewRequest(method, "/test", nil)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		switch w.Code {
		case http.StatusOK:
			ok++
		case http.StatusTooManyRequests:
			limited++
		}
	}
	return ok, limited
}

func limitedRouter(mw gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(mw)
	router.Handle(http.MethodGet, "/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})
	router.Handle(http.MethodPost, "/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})
	return router
}

func TestGlobalRateLimiter(t *testing.T) {
	setupTest()

	t.Run("allows requests when disabled", func(t *testing.T) {
		router := limitedRouter(GlobalRateLimiter(&RateLimitConfig{Enabled: false}))

		ok, limited := countStatuses(router, "GET", 100, "192.168.1.1:12345")
		assert.Equal(t, 100, ok)
		assert.Zero(t, limited)
	})

	t.Run("enforces rate limit when enabled", func(t *testing.T) {
		router := limitedRouter(GlobalRateLimiter(&RateLimitConfig{Enabled: true, RequestsPerMin: 5}))

		ok, limited := countStatuses(router, "GET", 10, "192.168.1.1:12345")
		assert.Equal(t, 5, ok)
		assert.Equal(t, 5, limited)
	})

	t.Run("tracks clients separately", func(t *testing.T) {
		router := limitedRouter(GlobalRateLimiter(&RateLimitConfig{Enabled: true, RequestsPerMin: 1}))

		ok1, _ := countStatuses(router, "GET", 1, "192.168.1.3:1000")
		ok2, _ := countStatuses(router, "GET", 1, "192.168.1.4:1000")
		assert.Equal(t, 1, ok1)
		assert.Equal(t, 1, ok2)
	})

	t.Run("returns correct error format when rate limited", func(t *testing.T) {
		router := limitedRouter(GlobalRateLimiter(&RateLimitConfig{Enabled: true, RequestsPerMin: 1}))

		req1 := httptest.NewRequest("GET", "/test", nil)
		req1.RemoteAddr = "192.168.1.2:12345"
		w1 := httptest.NewRecorder()
		router.ServeHTTP(w1, req1)
		assert.Equal(t, http.StatusOK, w1.Code)

		req2 := httptest.NewRequest("GET", "/test", nil)
		req2.RemoteAddr = "192.168.1.2:12345"
		w2 := httptest.NewRecorder()
		router.ServeHTTP(w2, req2)

		require.Equal(t, http.StatusTooManyRequests, w2.Code)
		assert.Contains(t, w2.Body.String(), "RATE_LIMIT_EXCEEDED")
		assert.Contains(t, w2.Body.String(), "retryAfter")
	})
}

func TestReadRateLimiter(t *testing.T) {
	setupTest()

	t.Run("allows requests when disabled", func(t *testing.T) {
		router := limitedRouter(ReadRateLimiter(&RateLimitConfig{Enabled: false}))

		ok, _ := countStatuses(router, "GET", 20, "10.0.0.1:1")
		assert.Equal(t, 20, ok)
	})

	t.Run("applies double the global limit", func(t *testing.T) {
		router := limitedRouter(ReadRateLimiter(&RateLimitConfig{Enabled: true, RequestsPerMin: 5}))

		ok, limited := countStatuses(router, "GET", 12, "10.0.0.1:1")
		assert.Equal(t, 10, ok)
		assert.Equal(t, 2, limited)
	})
}

func TestWriteRateLimiter(t *testing.T) {
	setupTest()

	t.Run("allows requests when disabled", func(t *testing.T) {
		router := limitedRouter(WriteRateLimiter(&RateLimitConfig{Enabled: false}))

		ok, _ := countStatuses(router, "POST", 20, "10.0.0.2:1")
		assert.Equal(t, 20, ok)
	})

	t.Run("applies half the global limit", func(t *testing.T) {
		router := limitedRouter(WriteRateLimiter(&RateLimitConfig{Enabled: true, RequestsPerMin: 10}))

		ok, limited := countStatuses(router, "POST", 8, "10.0.0.2:1")
		assert.Equal(t, 5, ok)
		assert.Equal(t, 3, limited)
	})

	t.Run("never drops below one request", func(t *testing.T) {
		router := limitedRouter(WriteRateLimiter(&RateLimitConfig{Enabled: true, RequestsPerMin: 1}))

		ok, limited := countStatuses(router, "POST", 2, "10.0.0.3:1")
		assert.Equal(t, 1, ok)
		assert.Equal(t, 1, limited)
	})
}

func TestRedisBackedRateLimiter(t *testing.T) {
	setupTest()
	mr, client := testutil.SetupTestRedis(t)

	cfg := &RateLimitConfig{
		Enabled:        true,
		RequestsPerMin: 2,
		RedisClient:    client,
		RedisPrefix:    "test:limiter",
	}
	router := limitedRouter(GlobalRateLimiter(cfg))

	ok, limited := countStatuses(router, "GET", 3, "172.16.0.1:1")
	assert.Equal(t, 2, ok)
	assert.Equal(t, 1, limited)

	var found bool
	for _, key := range mr.Keys() {
		if strings.HasPrefix(key, "test:limiter:global:") {
			found = true
		}
	}
	assert.True(t, found, "expected counter under the global prefix, got %v", mr.Keys())

	t.Run("a second router shares the counters", func(t *testing.T) {
		other := limitedRouter(GlobalRateLimiter(cfg))

		ok, limited := countStatuses(other, "GET", 1, "172.16.0.1:1")
		assert.Zero(t, ok)
		assert.Equal(t, 1, limited)
	})
}
