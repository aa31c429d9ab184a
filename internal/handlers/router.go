package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"todolist-kv/internal/logging"
	"todolist-kv/internal/middleware"
)

// RouterConfig collects the handlers and middleware settings NewRouter wires together
type RouterConfig struct {
	Todos     *TodoHandler
	Health    *HealthHandler
	Metrics   http.Handler // nil disables /metrics
	Security  *middleware.SecurityConfig
	CORS      *middleware.CORSConfig
	RateLimit *middleware.RateLimitConfig
}

// NewRouter builds the gin engine serving the HTML pages, the JSON API, health probes and metrics
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	if cfg.Security != nil {
		if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
			logging.Logger.WithError(err).Warn("Ignoring invalid TRUSTED_PROXIES")
		}
	}

	router.Use(middleware.SecurityHeaders())
	if cfg.CORS != nil {
		router.Use(middleware.CORS(cfg.CORS))
	}
	if cfg.Security != nil {
		router.Use(middleware.RequestSizeLimit(cfg.Security.MaxRequestBodySize))
	}
	router.Use(middleware.RequestLogger())
	router.Use(middleware.ErrorSanitizer())

	read, write := noLimit, noLimit
	if cfg.RateLimit != nil {
		router.Use(middleware.GlobalRateLimiter(cfg.RateLimit))
		read = middleware.ReadRateLimiter(cfg.RateLimit)
		write = middleware.WriteRateLimiter(cfg.RateLimit)
	}

	router.SetHTMLTemplate(Templates())

	validList := middleware.ListIDValidator("listId")

	router.GET("/", cfg.Todos.NewList)
	pages := router.Group("/lists/:listId", validList)
	{
		pages.GET("", read, cfg.Todos.ShowList)
		pages.POST("", write, cfg.Todos.PostAction)
	}

	v1 := router.Group("/api/v1")
	{
		todos := v1.Group("/lists/:listId/todos", validList)
		{
			todos.GET("", read, cfg.Todos.ListTodos)
			todos.POST("", write, cfg.Todos.CreateTodo)
			todos.POST("/:todoId/toggle", write, cfg.Todos.ToggleTodo)
			todos.DELETE("/:todoId", write, cfg.Todos.DeleteTodo)
		}
	}

	if cfg.Health != nil {
		health := router.Group("/health")
		{
			health.GET("", cfg.Health.BasicHealth)
			health.GET("/detailed", cfg.Health.DetailedHealth)
			health.GET("/ready", cfg.Health.ReadinessProbe)
			health.GET("/live", cfg.Health.LivenessProbe)
		}
	}

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	return router
}

func noLimit(c *gin.Context) {
	c.Next()
}
