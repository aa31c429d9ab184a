package models

import "time"

// Todo is a single entry of a list
type Todo struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// KVEntry is one row of the SQL key-value table
type KVEntry struct {
	Key       string    `gorm:"column:entry_key;primaryKey;size:512"`
	Value     []byte    `gorm:"column:entry_value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name used by migrations
func (KVEntry) TableName() string {
	return "kv_entries"
}

// CreateTodoRequest is the JSON body for creating a todo
type CreateTodoRequest struct {
	Text string `json:"text" binding:"required,max=1000"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
