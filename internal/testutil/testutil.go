package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"todolist-kv/internal/kv"
	"todolist-kv/internal/logging"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database holding the kv_entries table.
// The schema mirrors the Postgres migration with SQLite column types.
func SetupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open test database")

	err = db.Exec(`CREATE TABLE IF NOT EXISTS kv_entries (
		entry_key TEXT PRIMARY KEY,
		entry_value BLOB NOT NULL,
		updated_at DATETIME
	)`).Error
	require.NoError(t, err, "Failed to create kv_entries table")

	return db
}

// CleanupTestDB closes the test database
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

// SetupTestRedis starts a miniredis server and a client pointed at it.
// Both are closed when the test ends.
func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err, "Failed to start miniredis")

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

var loggerOnce sync.Once

// SetupTestLogger initializes the global logger without file output
func SetupTestLogger() {
	loggerOnce.Do(func() {
		logging.InitLogger(&logging.LogConfig{
			Enabled: false,
			Level:   "error",
		})
	})
}

// FailingStore is a key-value store whose calls fail with Err.
// GetErr and PutErr override Err per operation when set.
type FailingStore struct {
	Err    error
	GetErr error
	PutErr error
	Data   map[string][]byte

	mu   sync.Mutex
	Puts int
}

// Get returns Data[key] unless a failure is configured
func (s *FailingStore) Get(_ context.Context, key string) ([]byte, error) {
	if err := firstErr(s.GetErr, s.Err); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.Data[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return value, nil
}

// Put records the write unless a failure is configured
func (s *FailingStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Puts++
	if err := firstErr(s.PutErr, s.Err); err != nil {
		return err
	}
	if s.Data == nil {
		s.Data = make(map[string][]byte)
	}
	s.Data[key] = value
	return nil
}

// Ping fails with Err
func (s *FailingStore) Ping(_ context.Context) error {
	return s.Err
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// MakeJSONRequest creates an HTTP request with JSON body
func MakeJSONRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	var bodyReader *bytes.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err, "Failed to marshal request body")
		bodyReader = bytes.NewReader(jsonBody)
	} else {
		bodyReader = bytes.NewReader([]byte{})
	}

	req := httptest.NewRequest(method, target, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// MakeFormRequest creates a urlencoded form POST request
func MakeFormRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// ParseJSONResponse parses a JSON response into a target structure
func ParseJSONResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	err := json.Unmarshal(w.Body.Bytes(), target)
	require.NoError(t, err, "Failed to parse JSON response")
}
