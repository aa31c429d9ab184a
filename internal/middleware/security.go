package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todolist-kv/internal/config"
	"todolist-kv/internal/logging"
)

// SecurityConfig holds security middleware configuration
type SecurityConfig struct {
	MaxRequestBodySize int64
	TrustedProxies     []string
}

// NewSecurityConfigFromEnv creates security config from environment variables
func NewSecurityConfigFromEnv() *SecurityConfig {
	return &SecurityConfig{
		MaxRequestBodySize: int64(config.GetEnvInt("MAX_REQUEST_BODY_SIZE", 64*1024)),
		TrustedProxies:     config.ParseCommaSeparated(config.GetEnv("TRUSTED_PROXIES", "")),
	}
}

// contentSecurityPolicy permits the list page's inline stylesheet and its same-origin forms, nothing else
const contentSecurityPolicy = "default-src 'none'; style-src 'unsafe-inline'; form-action 'self'; frame-ancestors 'none'; base-uri 'none'"

// SecurityHeaders adds security-related HTTP headers
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Content-Security-Policy", contentSecurityPolicy)
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Cache-Control", "no-store")

		c.Next()
	}
}

// RequestSizeLimit limits the size of incoming request bodies
func RequestSizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			logging.Logger.WithFields(logrus.Fields{
				"client_ip":      c.ClientIP(),
				"content_length": c.Request.ContentLength,
				"max_size":       maxSize,
			}).Warn("Request body too large")

			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"code":           "REQUEST_TOO_LARGE",
				"message":        "Request body too large",
				"max_size_bytes": maxSize,
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// ErrorSanitizer logs errors attached to the context and replaces any 5xx body
// a handler failed to write with a generic message.
func ErrorSanitizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		fields := logrus.Fields{
			"client_ip": c.ClientIP(),
			"path":      c.Request.URL.Path,
			"method":    c.Request.Method,
			"status":    c.Writer.Status(),
			"error":     c.Errors.Last().Error(),
		}
		if listID := c.Param("listId"); listID != "" {
			fields["list_id"] = listID
		}
		logging.Logger.WithFields(fields).Error("Request error")

		if c.Writer.Status() >= 500 && !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "An internal error occurred. Please try again later.",
			})
		}
	}
}

var listIDPattern = regexp.MustCompile(`^[A-Za-z0-9._~-]{1,128}$`)

// ValidListID reports whether id can be used as a list identifier in a storage key
func ValidListID(id string) bool {
	return listIDPattern.MatchString(id)
}

// ListIDValidator rejects requests whose path parameter is not a usable list id
func ListIDValidator(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param(param)
		if !ValidListID(id) {
			logging.Logger.WithFields(logrus.Fields{
				"client_ip": c.ClientIP(),
				"path":      c.Request.URL.Path,
				"param":     param,
			}).Warn("Invalid list id")

			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_LIST_ID",
				"message": "Invalid list ID",
				"field":   param,
			})
			return
		}
		c.Next()
	}
}
