package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"todolist-kv/internal/logging"
	"todolist-kv/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigFromEnv(t *testing.T) {
	t.Run("uses defaults", func(t *testing.T) {
		for _, key := range []string{"KV_BACKEND", "DB_HOST", "DB_PORT", "DB_NAME", "DB_CONN_MAX_LIFETIME", "DB_AUTO_MIGRATE"} {
			t.Setenv(key, "")
		}

		cfg := NewConfigFromEnv()

		assert.Equal(t, "postgres", cfg.Driver)
		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, "5432", cfg.Port)
		assert.Equal(t, "todolist", cfg.Name)
		assert.Equal(t, 5*time.Minute, cfg.ConnMaxLifetime)
		assert.True(t, cfg.AutoMigrate)
	})

	t.Run("reads overrides", func(t *testing.T) {
		t.Setenv("KV_BACKEND", "sqlite")
		t.Setenv("DB_SQLITE_PATH", "/tmp/kv.db")
		t.Setenv("DB_MAX_OPEN_CONNS", "3")

		cfg := NewConfigFromEnv()

		assert.Equal(t, "sqlite", cfg.Driver)
		assert.Equal(t, "/tmp/kv.db", cfg.SQLitePath)
		assert.Equal(t, 3, cfg.MaxOpenConns)
	})
}

func TestConnectionStrings(t *testing.T) {
	cfg := &Config{Host: "db", Port: "5433", User: "u", Password: "p", Name: "n", SSLMode: "require"}

	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=require", cfg.DSN())
	assert.Equal(t, "postgres://u:p@db:5433/n?sslmode=require", cfg.URL())
}

func TestConnect(t *testing.T) {
	logging.InitLogger(&logging.LogConfig{Enabled: false, Level: "error"})

	t.Run("rejects unknown driver", func(t *testing.T) {
		_, err := Connect(&Config{Driver: "oracle"})
		assert.ErrorContains(t, err, "unsupported database driver")
	})

	t.Run("opens sqlite and migrates", func(t *testing.T) {
		db, err := Connect(&Config{
			Driver:       "sqlite",
			SQLitePath:   filepath.Join(t.TempDir(), "kv.db"),
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		})
		require.NoError(t, err)
		defer func() {
			sqlDB, _ := db.DB()
			sqlDB.Close()
		}()

		require.NoError(t, AutoMigrate(db))
		assert.True(t, db.Migrator().HasTable(&models.KVEntry{}))
	})

	t.Run("creates missing sqlite directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data", "nested", "todolist.db")

		db, err := Connect(&Config{Driver: "sqlite", SQLitePath: path, MaxOpenConns: 1, MaxIdleConns: 1})
		require.NoError(t, err)
		defer func() {
			sqlDB, _ := db.DB()
			sqlDB.Close()
		}()

		require.NoError(t, AutoMigrate(db))
		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("leaves in-memory sqlite alone", func(t *testing.T) {
		assert.NoError(t, ensureSQLiteDir(":memory:"))
		assert.NoError(t, ensureSQLiteDir("file::memory:?cache=shared"))
	})
}
