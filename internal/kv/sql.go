package kv

import (
	"context"
	"fmt"

	"todolist-kv/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLStore implements Store on the kv_entries table using GORM
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore creates a SQL-backed store
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Get reads the value for key
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entries []models.KVEntry
	result := s.db.WithContext(ctx).Where("entry_key = ?", key).Limit(1).Find(&entries)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to read kv entry: %w", result.Error)
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return entries[0].Value, nil
}

// Put upserts the value for key
func (s *SQLStore) Put(ctx context.Context, key string, value []byte) error {
	entry := models.KVEntry{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"entry_value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write kv entry: %w", err)
	}
	return nil
}

// Ping checks the database connection
func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// DB exposes the GORM handle for health checks
func (s *SQLStore) DB() *gorm.DB {
	return s.db
}
