package handlers

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"todolist-kv/internal/kv"
)

// Version is reported by the detailed health check. Overridden at build time with
// -ldflags "-X todolist-kv/internal/handlers.Version=...".
var Version = "dev"

const pingTimeout = 2 * time.Second

// HealthHandler handles health check requests
type HealthHandler struct {
	backend   string
	store     kv.Pinger
	db        *gorm.DB // nil unless the backend is SQL
	startTime time.Time
}

// NewHealthHandler creates a health handler probing store. db enables pool stats and
// migration status for SQL backends.
func NewHealthHandler(backend string, store kv.Pinger, db *gorm.DB) *HealthHandler {
	return &HealthHandler{
		backend:   backend,
		store:     store,
		db:        db,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Uptime    string                 `json:"uptime"`
	Version   string                 `json:"version"`
	Backend   string                 `json:"backend"`
	Checks    map[string]HealthCheck `json:"checks"`
}

// HealthCheck represents an individual health check
type HealthCheck struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// BasicHealth handles GET /health
func (h *HealthHandler) BasicHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

// DetailedHealth handles GET /health/detailed
func (h *HealthHandler) DetailedHealth(c *gin.Context) {
	checks := make(map[string]HealthCheck)
	overallStatus := "healthy"

	storageCheck := h.checkStorage(c.Request.Context())
	checks["storage"] = storageCheck
	if storageCheck.Status != "healthy" {
		overallStatus = "unhealthy"
	}

	checks["migrations"] = h.checkMigrations()
	checks["system"] = h.getSystemInfo()

	response := HealthResponse{
		Status:    overallStatus,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    formatDuration(time.Since(h.startTime)),
		Version:   Version,
		Backend:   h.backend,
		Checks:    checks,
	}

	if overallStatus == "unhealthy" {
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ReadinessProbe handles GET /health/ready
func (h *HealthHandler) ReadinessProbe(c *gin.Context) {
	storageCheck := h.checkStorage(c.Request.Context())

	if storageCheck.Status != "healthy" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not_ready",
			"reason":  "storage_unavailable",
			"message": storageCheck.Message,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessProbe handles GET /health/live
func (h *HealthHandler) LivenessProbe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (h *HealthHandler) checkStorage(ctx context.Context) HealthCheck {
	if h.store == nil {
		return HealthCheck{
			Status:  "unhealthy",
			Message: "Storage not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		return HealthCheck{
			Status:  "unhealthy",
			Message: "Storage ping failed",
			Details: map[string]interface{}{
				"error": err.Error(),
			},
		}
	}

	check := HealthCheck{
		Status:  "healthy",
		Message: "Storage is healthy",
		Details: map[string]interface{}{
			"backend": h.backend,
		},
	}

	if h.db != nil {
		if sqlDB, err := h.db.DB(); err == nil {
			stats := sqlDB.Stats()
			check.Details["open_connections"] = stats.OpenConnections
			check.Details["in_use"] = stats.InUse
			check.Details["idle"] = stats.Idle
			check.Details["wait_count"] = stats.WaitCount
			check.Details["wait_duration_ms"] = stats.WaitDuration.Milliseconds()
		}
	}

	return check
}

func (h *HealthHandler) checkMigrations() HealthCheck {
	if h.db == nil {
		return HealthCheck{
			Status:  "skipped",
			Message: "Backend has no schema",
		}
	}

	if !h.db.Migrator().HasTable("schema_migrations") {
		return HealthCheck{
			Status:  "unknown",
			Message: "Migration table not found",
		}
	}

	var version uint
	var dirty bool
	err := h.db.Raw(`
		SELECT version, dirty
		FROM schema_migrations
		LIMIT 1
	`).Row().Scan(&version, &dirty)
	if err != nil {
		return HealthCheck{
			Status:  "unknown",
			Message: "Could not read migration status",
		}
	}

	status := "healthy"
	message := "Migrations are up to date"
	if dirty {
		status = "warning"
		message = "Database is in dirty state - manual intervention required"
	}

	return HealthCheck{
		Status:  status,
		Message: message,
		Details: map[string]interface{}{
			"version": version,
			"dirty":   dirty,
		},
	}
}

func (h *HealthHandler) getSystemInfo() HealthCheck {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return HealthCheck{
		Status:  "info",
		Message: "System information",
		Details: map[string]interface{}{
			"goroutines":      runtime.NumGoroutine(),
			"memory_alloc_mb": m.Alloc / 1024 / 1024,
			"memory_sys_mb":   m.Sys / 1024 / 1024,
			"num_gc":          m.NumGC,
			"go_version":      runtime.Version(),
		},
	}
}

// formatDuration renders d as "1d 2h 3m 4s", dropping leading zero units
func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
