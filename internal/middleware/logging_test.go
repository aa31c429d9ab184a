package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"todolist-kv/internal/logging"
)

func captureLogs(t *testing.T, jsonFormat bool) *bytes.Buffer {
	t.Helper()
	setupTest()
	logging.InitLogger(&logging.LogConfig{
		Enabled:    false,
		Level:      "trace",
		JSONFormat: jsonFormat,
	})
	var buf bytes.Buffer
	logging.Logger.SetOutput(&buf)
	return &buf
}

func TestRequestLogger(t *testing.T) {
	t.Run("logs successful requests", func(t *testing.T) {
		buf := captureLogs(t, false)

		router := gin.New()
		router.Use(RequestLogger())
		router.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "success"})
		})

		req := httptest.NewRequest("GET", "/test", http.NoBody)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		out := buf.String()
		assert.Contains(t, out, "Request completed")
		assert.Contains(t, out, "method=GET")
		assert.Contains(t, out, "path=/test")
		assert.Contains(t, out, "status=200")
		assert.Contains(t, out, "latency_ms")
	})

	t.Run("tags list routes with list id", func(t *testing.T) {
		buf := captureLogs(t, true)

		router := gin.New()
		router.Use(RequestLogger())
		router.POST("/lists/:listId", func(c *gin.Context) {
			c.Redirect(http.StatusSeeOther, "/lists/"+c.Param("listId"))
		})

		req := httptest.NewRequest("POST", "/lists/groceries", http.NoBody)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		out := buf.String()
		assert.Contains(t, out, `"list_id":"groceries"`)
		assert.Contains(t, out, `"msg":"Redirect"`)
	})

	t.Run("omits list id elsewhere", func(t *testing.T) {
		buf := captureLogs(t, false)

		router := gin.New()
		router.Use(RequestLogger())
		router.GET("/health", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest("GET", "/health", http.NoBody)
		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.NotContains(t, buf.String(), "list_id")
	})

	t.Run("logs query and user agent", func(t *testing.T) {
		buf := captureLogs(t, true)

		router := gin.New()
		router.Use(RequestLogger())
		router.GET("/test", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest("GET", "/test?param=value", http.NoBody)
		req.Header.Set("User-Agent", "TestAgent/1.0")
		router.ServeHTTP(httptest.NewRecorder(), req)

		out := buf.String()
		assert.Contains(t, out, `"query":"param=value"`)
		assert.Contains(t, out, `"user_agent":"TestAgent/1.0"`)
	})

	t.Run("marks rate limited requests", func(t *testing.T) {
		buf := captureLogs(t, false)

		router := gin.New()
		router.Use(RequestLogger())
		router.GET("/test", func(c *gin.Context) {
			c.Status(http.StatusTooManyRequests)
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", http.NoBody))

		assert.Contains(t, buf.String(), "rate_limited=true")
	})
}

func TestLogLevels(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		levelStr   string
	}{
		{"2xx success", 200, "info"},
		{"303 redirect", 303, "info"},
		{"400 bad request", 400, "warning"},
		{"404 not found", 404, "warning"},
		{"429 rate limited", 429, "warning"},
		{"500 server error", 500, "error"},
		{"503 unavailable", 503, "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := captureLogs(t, false)

			router := gin.New()
			router.Use(RequestLogger())
			router.GET("/test", func(c *gin.Context) {
				c.Status(tc.statusCode)
			})

			req := httptest.NewRequest("GET", "/test", http.NoBody)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.statusCode, w.Code)
			assert.Contains(t, buf.String(), "level="+tc.levelStr)
		})
	}
}
