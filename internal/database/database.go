package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"todolist-kv/internal/config"
	"todolist-kv/internal/logging"
	"todolist-kv/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds database connection settings
type Config struct {
	Driver          string // "postgres" or "sqlite"
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// NewConfigFromEnv creates a Config from environment variables
func NewConfigFromEnv() *Config {
	return &Config{
		Driver:          config.GetEnv("KV_BACKEND", "postgres"),
		Host:            config.GetEnv("DB_HOST", "localhost"),
		Port:            config.GetEnv("DB_PORT", "5432"),
		User:            config.GetEnv("DB_USER", "postgres"),
		Password:        config.GetEnv("DB_PASSWORD", "postgres"),
		Name:            config.GetEnv("DB_NAME", "todolist"),
		SSLMode:         config.GetEnv("DB_SSL_MODE", "disable"),
		SQLitePath:      config.GetEnv("DB_SQLITE_PATH", "./data/todolist.db"),
		MaxOpenConns:    config.GetEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    config.GetEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: config.GetEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		AutoMigrate:     config.GetEnvBool("DB_AUTO_MIGRATE", true),
	}
}

// DSN returns the keyword/value connection string for Postgres
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// URL returns the postgres:// form used by the migration tool
func (c *Config) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// Connect opens a GORM connection for the configured driver
func Connect(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	case "sqlite":
		if err := ensureSQLiteDir(cfg.SQLitePath); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	logging.Logger.WithField("driver", cfg.Driver).Info("Database connection established")
	return db, nil
}

// ensureSQLiteDir creates the parent directory of a file-backed database
func ensureSQLiteDir(path string) error {
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

// AutoMigrate creates the kv_entries table when it is missing
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.KVEntry{}); err != nil {
		return fmt.Errorf("failed to migrate kv_entries: %w", err)
	}
	return nil
}
