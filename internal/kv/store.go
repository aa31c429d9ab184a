// Package kv is the key-value port the todo manager persists through,
// plus the engines that implement it.
package kv

import (
	"context"
	"errors"
	"time"

	"todolist-kv/internal/config"
)

// ErrNotFound is returned by Get when the key holds no value
var ErrNotFound = errors.New("key not found")

// Store is an opaque get/put service keyed by string.
// It offers no transactions or conditional writes.
type Store interface {
	// Get returns the stored value or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
}

// Pinger is implemented by engines that can report connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// Backend names accepted by KV_BACKEND
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config selects and configures the engine
type Config struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	RedisTTL      time.Duration // 0 keeps records forever
}

// NewConfigFromEnv creates engine config from environment variables
func NewConfigFromEnv() *Config {
	return &Config{
		Backend:       config.GetEnv("KV_BACKEND", BackendMemory),
		RedisAddr:     config.GetEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: config.GetEnv("REDIS_PASSWORD", ""),
		RedisDB:       config.GetEnvInt("REDIS_DB", 0),
		RedisPrefix:   config.GetEnv("REDIS_KEY_PREFIX", ""),
		RedisTTL:      config.GetEnvDuration("REDIS_TTL", 0),
	}
}

// IsSQL reports whether the backend is served by the SQL engine
func (c *Config) IsSQL() bool {
	return c.Backend == BackendPostgres || c.Backend == BackendSQLite
}
