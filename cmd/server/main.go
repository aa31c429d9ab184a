package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"todolist-kv/internal/config"
	"todolist-kv/internal/database"
	"todolist-kv/internal/handlers"
	"todolist-kv/internal/kv"
	"todolist-kv/internal/logging"
	"todolist-kv/internal/metrics"
	"todolist-kv/internal/middleware"
	tlsconfig "todolist-kv/internal/tls"
)

const shutdownTimeout = 10 * time.Second

// backend is the opened KV engine plus the handles health checks and rate limiting reuse
type backend struct {
	store kv.Store
	db    *gorm.DB
	redis *redis.Client
	close func()
}

func openBackend(cfg *kv.Config) (*backend, error) {
	switch cfg.Backend {
	case kv.BackendMemory:
		logging.Logger.Warn("Using in-memory storage, lists are lost on restart")
		return &backend{
			store: kv.Instrumented(kv.NewMemoryStore(), cfg.Backend),
			close: func() {},
		}, nil

	case kv.BackendRedis:
		store := kv.NewRedisStore(kv.NewRedisClient(cfg), kv.WithPrefix(cfg.RedisPrefix), kv.WithTTL(cfg.RedisTTL))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}

		logging.Logger.WithField("addr", cfg.RedisAddr).Info("Redis storage initialized")
		return &backend{
			store: kv.Instrumented(store, cfg.Backend),
			redis: store.Client(),
			close: func() { _ = store.Close() },
		}, nil

	case kv.BackendPostgres, kv.BackendSQLite:
		dbConfig := database.NewConfigFromEnv()
		dbConfig.Driver = cfg.Backend

		db, err := database.Connect(dbConfig)
		if err != nil {
			return nil, err
		}
		if dbConfig.AutoMigrate {
			if err := database.AutoMigrate(db); err != nil {
				return nil, err
			}
		}

		store := kv.NewSQLStore(db)
		logging.Logger.WithField("driver", cfg.Backend).Info("SQL storage initialized")
		return &backend{
			store: kv.Instrumented(store, cfg.Backend),
			db:    store.DB(),
			close: func() {
				if sqlDB, err := store.DB().DB(); err == nil {
					_ = sqlDB.Close()
				}
			},
		}, nil

	default:
		return nil, errors.New("unsupported KV_BACKEND: " + cfg.Backend)
	}
}

func main() {
	logging.InitLogger(logging.NewLogConfigFromEnv())
	gin.SetMode(config.GetEnv("GIN_MODE", gin.ReleaseMode))

	kvConfig := kv.NewConfigFromEnv()
	be, err := openBackend(kvConfig)
	if err != nil {
		logging.Logger.Fatalf("Failed to open %s storage: %v", kvConfig.Backend, err)
	}
	defer be.close()

	rateLimitConfig := middleware.NewRateLimitConfigFromEnv()
	rateLimitConfig.RedisClient = be.redis

	var pinger kv.Pinger
	if p, ok := be.store.(kv.Pinger); ok {
		pinger = p
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Todos:     handlers.NewTodoHandler(be.store),
		Health:    handlers.NewHealthHandler(kvConfig.Backend, pinger, be.db),
		Metrics:   metrics.Handler(),
		Security:  middleware.NewSecurityConfigFromEnv(),
		CORS:      middleware.NewCORSConfigFromEnv(),
		RateLimit: rateLimitConfig,
	})

	servers, err := newServers(router, tlsconfig.NewConfigFromEnv())
	if err != nil {
		logging.Logger.Fatalf("Failed to configure server: %v", err)
	}

	errCh := make(chan error, len(servers))
	for _, s := range servers {
		go func(s *server) {
			logging.Logger.Infof("Starting %s server on %s...", s.name, s.Addr)
			if err := s.listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}(s)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logging.Logger.Infof("Received %s, shutting down", sig)
	case err := <-errCh:
		logging.Logger.Errorf("Server failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, s := range servers {
		if err := s.Shutdown(ctx); err != nil {
			logging.Logger.Errorf("Failed to shut down %s server: %v", s.name, err)
		}
	}
	logging.Logger.Info("Server stopped")
}

type server struct {
	*http.Server
	name   string
	listen func() error
}

// newServers returns the plain HTTP server, or the HTTPS server plus an optional redirect listener
func newServers(router http.Handler, tlsCfg *tlsconfig.Config) ([]*server, error) {
	if !tlsCfg.Enabled {
		s := &http.Server{
			Addr:              ":" + config.GetEnv("PORT", "8080"),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		return []*server{{Server: s, name: "HTTP", listen: s.ListenAndServe}}, nil
	}

	tlsConf, err := tlsCfg.CreateTLSConfig()
	if err != nil {
		return nil, err
	}

	https := &http.Server{
		Addr:              ":" + tlsCfg.Port,
		Handler:           router,
		TLSConfig:         tlsConf,
		ReadHeaderTimeout: 10 * time.Second,
	}
	servers := []*server{{
		Server: https,
		name:   "HTTPS",
		listen: func() error { return https.ListenAndServeTLS("", "") },
	}}

	if tlsCfg.RedirectHTTP {
		redirect := &http.Server{
			Addr:              ":" + tlsCfg.HTTPPort,
			Handler:           tlsconfig.HTTPSRedirectHandler(tlsCfg.Port),
			ReadHeaderTimeout: 10 * time.Second,
		}
		servers = append(servers, &server{Server: redirect, name: "HTTP redirect", listen: redirect.ListenAndServe})
	}

	return servers, nil
}
