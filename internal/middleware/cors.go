package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todolist-kv/internal/config"
	"todolist-kv/internal/logging"
)

// CORSConfig holds CORS configuration for the JSON API
type CORSConfig struct {
	Enabled          bool
	AllowedOrigins   []string // ["*"] allows every origin
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int // seconds
}

// NewCORSConfigFromEnv creates CORS config from environment variables
func NewCORSConfigFromEnv() *CORSConfig {
	origins := []string{"*"}
	if raw := config.GetEnv("CORS_ALLOWED_ORIGINS", "*"); raw != "*" {
		origins = config.ParseCommaSeparated(raw)
	}

	return &CORSConfig{
		Enabled:          config.GetEnvBool("CORS_ENABLED", true),
		AllowedOrigins:   origins,
		AllowedMethods:   config.ParseCommaSeparated(config.GetEnv("CORS_ALLOWED_METHODS", "GET,POST,DELETE,OPTIONS")),
		AllowedHeaders:   config.ParseCommaSeparated(config.GetEnv("CORS_ALLOWED_HEADERS", "Origin,Content-Type,Accept")),
		ExposeHeaders:    config.ParseCommaSeparated(config.GetEnv("CORS_EXPOSE_HEADERS", "Content-Length,Content-Type")),
		AllowCredentials: config.GetEnvBool("CORS_ALLOW_CREDENTIALS", false),
		MaxAge:           config.GetEnvInt("CORS_MAX_AGE", 3600),
	}
}

// CORS handles Cross-Origin Resource Sharing
func CORS(cfg *CORSConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		if !isOriginAllowed(origin, cfg.AllowedOrigins) {
			logging.Logger.WithFields(logrus.Fields{
				"client_ip": c.ClientIP(),
				"origin":    origin,
				"path":      c.Request.URL.Path,
			}).Warn("CORS request from disallowed origin")
			c.Next()
			return
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Vary", "Origin")
		if cfg.AllowCredentials {
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		if len(cfg.ExposeHeaders) > 0 {
			c.Header("Access-Control-Expose-Headers", strings.Join(cfg.ExposeHeaders, ", "))
		}

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", strings.Join(cfg.AllowedMethods, ", "))
			c.Header("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ", "))
			c.Header("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))

			logging.Logger.WithFields(logrus.Fields{
				"client_ip": c.ClientIP(),
				"origin":    origin,
			}).Debug("CORS preflight request")

			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// isOriginAllowed checks an origin against exact entries, "*" and "*.domain" patterns
func isOriginAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
		if strings.HasPrefix(a, "*.") && strings.HasSuffix(origin, "."+strings.TrimPrefix(a, "*.")) {
			return true
		}
	}
	return false
}
