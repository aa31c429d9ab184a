// Package todo maintains one todo list stored as a single key-value record.
//
// Every operation reads the whole list, applies one change and writes the whole
// list back. There is no locking: concurrent writers to the same key race and
// the last write wins.
package todo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"todolist-kv/internal/kv"
	"todolist-kv/internal/models"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrStorageFailure = errors.New("storage failure")
)

// MaxTextLength caps item text, counted in runes
const MaxTextLength = 1000

// KeyPrefix is prepended to a list id to form its storage key
const KeyPrefix = "todos:"

// ListKey returns the storage key of a list
func ListKey(listID string) string {
	return KeyPrefix + listID
}

// Manager runs read-modify-write cycles against one list key.
// Build one per request; it holds no state between calls.
type Manager struct {
	store kv.Store
	key   string
	newID func() string
}

// NewManager creates a manager for the list stored under key
func NewManager(store kv.Store, key string) *Manager {
	return &Manager{
		store: store,
		key:   key,
		newID: uuid.NewString,
	}
}

// Key returns the storage key the manager works on
func (m *Manager) Key() string {
	return m.key
}

// List returns the items in display order. A list never written reads as empty.
func (m *Manager) List(ctx context.Context) ([]models.Todo, error) {
	return m.load(ctx)
}

// ValidateText reports why text cannot be stored as an item, or nil.
// Text must be valid UTF-8 so the encoded record decodes back to the same bytes.
func ValidateText(text string) error {
	switch {
	case strings.TrimSpace(text) == "":
		return fmt.Errorf("%w: text must not be empty", ErrInvalidInput)
	case !utf8.ValidString(text):
		return fmt.Errorf("%w: text must be valid UTF-8", ErrInvalidInput)
	case utf8.RuneCountInString(text) > MaxTextLength:
		return fmt.Errorf("%w: text exceeds %d characters", ErrInvalidInput, MaxTextLength)
	}
	return nil
}

// Create appends a new incomplete item. Invalid text is rejected before storage is touched.
func (m *Manager) Create(ctx context.Context, text string) error {
	if err := ValidateText(text); err != nil {
		return err
	}

	todos, err := m.load(ctx)
	if err != nil {
		return err
	}

	todos = append(todos, models.Todo{
		ID:        m.uniqueID(todos),
		Text:      text,
		Completed: false,
	})
	return m.save(ctx, todos)
}

// Toggle flips the completed flag of the item with the given id.
// An unknown id is not an error and leaves storage untouched.
func (m *Manager) Toggle(ctx context.Context, id string) error {
	todos, err := m.load(ctx)
	if err != nil {
		return err
	}

	i := indexOf(todos, id)
	if i < 0 {
		return nil
	}
	todos[i].Completed = !todos[i].Completed
	return m.save(ctx, todos)
}

// Delete removes the item with the given id, keeping the order of the rest.
// An unknown id is not an error and leaves storage untouched.
func (m *Manager) Delete(ctx context.Context, id string) error {
	todos, err := m.load(ctx)
	if err != nil {
		return err
	}

	i := indexOf(todos, id)
	if i < 0 {
		return nil
	}
	todos = append(todos[:i], todos[i+1:]...)
	return m.save(ctx, todos)
}

func (m *Manager) load(ctx context.Context) ([]models.Todo, error) {
	data, err := m.store.Get(ctx, m.key)
	if errors.Is(err, kv.ErrNotFound) {
		return []models.Todo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrStorageFailure, m.key, err)
	}

	todos, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrStorageFailure, m.key, err)
	}
	return todos, nil
}

func (m *Manager) save(ctx context.Context, todos []models.Todo) error {
	data, err := Encode(todos)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrStorageFailure, m.key, err)
	}
	if err := m.store.Put(ctx, m.key, data); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrStorageFailure, m.key, err)
	}
	return nil
}

// uniqueID draws ids until one is not already used in todos
func (m *Manager) uniqueID(todos []models.Todo) string {
	for {
		id := m.newID()
		if indexOf(todos, id) < 0 {
			return id
		}
	}
}

func indexOf(todos []models.Todo, id string) int {
	for i := range todos {
		if todos[i].ID == id {
			return i
		}
	}
	return -1
}
