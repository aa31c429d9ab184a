package todo

import (
	"context"
	"fmt"

	"todolist-kv/internal/metrics"
	"todolist-kv/internal/models"
)

// Command is one of CreateCommand, ToggleCommand, DeleteCommand or ListCommand
type Command interface {
	// Name is the intent the command was decoded from
	Name() string
	isCommand()
}

// CreateCommand appends a new item
type CreateCommand struct {
	Text string
}

// ToggleCommand flips an item's completed flag
type ToggleCommand struct {
	ID string
}

// DeleteCommand removes an item
type DeleteCommand struct {
	ID string
}

// ListCommand reads the list
type ListCommand struct{}

func (CreateCommand) Name() string { return "create" }
func (ToggleCommand) Name() string { return "toggle" }
func (DeleteCommand) Name() string { return "delete" }
func (ListCommand) Name() string   { return "list" }

func (CreateCommand) isCommand() {}
func (ToggleCommand) isCommand() {}
func (DeleteCommand) isCommand() {}
func (ListCommand) isCommand()   {}

// Execute runs cmd against the list. Only ListCommand returns items.
func (m *Manager) Execute(ctx context.Context, cmd Command) ([]models.Todo, error) {
	var (
		todos []models.Todo
		err   error
	)

	switch c := cmd.(type) {
	case CreateCommand:
		err = m.Create(ctx, c.Text)
	case ToggleCommand:
		err = m.Toggle(ctx, c.ID)
	case DeleteCommand:
		err = m.Delete(ctx, c.ID)
	case ListCommand:
		todos, err = m.List(ctx)
	default:
		return nil, fmt.Errorf("%w: unsupported command %T", ErrInvalidInput, cmd)
	}

	metrics.TodoCommands.WithLabelValues(cmd.Name(), metrics.Result(err)).Inc()
	return todos, err
}
