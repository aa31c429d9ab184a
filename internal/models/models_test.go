package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestTodoJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Todo{ID: "a1", Text: "Buy milk", Completed: true})
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":"a1","text":"Buy milk","completed":true}`, string(data))
}

func TestKVEntryTable(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&KVEntry{}))

	t.Run("uses kv_entries table", func(t *testing.T) {
		assert.True(t, db.Migrator().HasTable("kv_entries"))
		assert.True(t, db.Migrator().HasColumn(&KVEntry{}, "entry_key"))
		assert.True(t, db.Migrator().HasColumn(&KVEntry{}, "entry_value"))
	})

	t.Run("stamps updated_at on create", func(t *testing.T) {
		entry := &KVEntry{Key: "todos:a", Value: []byte("[]")}
		require.NoError(t, db.Create(entry).Error)
		assert.False(t, entry.UpdatedAt.IsZero())
	})
}
