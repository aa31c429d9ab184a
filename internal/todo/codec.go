package todo

import (
	"encoding/json"
	"errors"
	"unicode/utf8"

	"todolist-kv/internal/models"
)

// ErrInvalidUTF8 is returned by Encode for strings JSON cannot carry unchanged
var ErrInvalidUTF8 = errors.New("todo contains invalid UTF-8")

// Encode serializes a list as a JSON array. A nil list encodes as "[]".
func Encode(todos []models.Todo) ([]byte, error) {
	if todos == nil {
		todos = []models.Todo{}
	}
	for _, t := range todos {
		if !utf8.ValidString(t.ID) || !utf8.ValidString(t.Text) {
			return nil, ErrInvalidUTF8
		}
	}
	return json.Marshal(todos)
}

// Decode parses a stored list. Empty input is the empty list.
func Decode(data []byte) ([]models.Todo, error) {
	todos := []models.Todo{}
	if len(data) == 0 {
		return todos, nil
	}
	if err := json.Unmarshal(data, &todos); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []models.Todo{}
	}
	return todos, nil
}
