package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todolist-kv/internal/logging"
)

// RequestLogger logs one line per request, tagged with the list id when the route carries one
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		entry := logging.Logger.WithFields(logrus.Fields{
			"client_ip":     c.ClientIP(),
			"method":        c.Request.Method,
			"path":          c.Request.URL.Path,
			"status":        status,
			"latency_ms":    time.Since(start).Milliseconds(),
			"response_size": c.Writer.Size(),
		})

		if listID := c.Param("listId"); listID != "" {
			entry = entry.WithField("list_id", listID)
		}
		if query := c.Request.URL.RawQuery; query != "" {
			entry = entry.WithField("query", query)
		}
		if ua := c.GetHeader("User-Agent"); ua != "" {
			entry = entry.WithField("user_agent", ua)
		}
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}
		if status == http.StatusTooManyRequests {
			entry = entry.WithField("rate_limited", true)
		}

		switch {
		case status >= 500:
			entry.Error("Server error")
		case status >= 400:
			entry.Warn("Client error")
		case status >= 300:
			entry.Info("Redirect")
		default:
			entry.Info("Request completed")
		}
	}
}
