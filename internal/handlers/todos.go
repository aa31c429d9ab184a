package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"todolist-kv/internal/kv"
	"todolist-kv/internal/models"
	"todolist-kv/internal/todo"
)

// Form intents accepted by POST /lists/:listId
const (
	IntentCreate = "create"
	IntentToggle = "toggle"
	IntentDelete = "delete"
)

// TodoHandler serves the list page, its form actions and the JSON API.
// A Manager is built per request for the list named in the path.
type TodoHandler struct {
	store kv.Store
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(store kv.Store) *TodoHandler {
	return &TodoHandler{store: store}
}

func (h *TodoHandler) manager(c *gin.Context) *todo.Manager {
	return todo.NewManager(h.store, todo.ListKey(c.Param("listId")))
}

// NewList handles GET / by redirecting to a fresh list
func (h *TodoHandler) NewList(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/lists/"+uuid.NewString())
}

// ShowList handles GET /lists/:listId
func (h *TodoHandler) ShowList(c *gin.Context) {
	listID := c.Param("listId")
	m := h.manager(c)

	todos, err := m.Execute(c.Request.Context(), todo.ListCommand{})
	if err != nil {
		h.storageError(c, "Failed to load list", err)
		return
	}

	c.HTML(http.StatusOK, ListPageTemplate, gin.H{
		"ListID": listID,
		"Todos":  todos,
	})
}

// PostAction handles POST /lists/:listId form submissions
func (h *TodoHandler) PostAction(c *gin.Context) {
	listID := c.Param("listId")
	m := h.manager(c)

	cmd, errResp := commandFromForm(c)
	if errResp != nil {
		c.JSON(http.StatusBadRequest, errResp)
		return
	}

	if _, err := m.Execute(c.Request.Context(), cmd); err != nil {
		if errors.Is(err, todo.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, invalidText)
			return
		}
		h.storageError(c, "Failed to "+cmd.Name()+" todo", err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/lists/"+listID)
}

var (
	invalidText   = models.ErrorResponse{Code: "INVALID_TEXT", Message: "Invalid text"}
	invalidID     = models.ErrorResponse{Code: "INVALID_ID", Message: "Invalid ID"}
	invalidIntent = models.ErrorResponse{Code: "INVALID_INTENT", Message: "Invalid intent"}
)

// commandFromForm validates the posted fields for the chosen intent. An id may be
// any string, including empty: unknown ids are no-ops further down.
func commandFromForm(c *gin.Context) (todo.Command, *models.ErrorResponse) {
	switch c.PostForm("intent") {
	case IntentCreate:
		text, ok := c.GetPostForm("text")
		if !ok || todo.ValidateText(text) != nil {
			return nil, &invalidText
		}
		return todo.CreateCommand{Text: text}, nil
	case IntentToggle:
		id, ok := c.GetPostForm("id")
		if !ok {
			return nil, &invalidID
		}
		return todo.ToggleCommand{ID: id}, nil
	case IntentDelete:
		id, ok := c.GetPostForm("id")
		if !ok {
			return nil, &invalidID
		}
		return todo.DeleteCommand{ID: id}, nil
	default:
		return nil, &invalidIntent
	}
}

// ListTodos handles GET /api/v1/lists/:listId/todos
func (h *TodoHandler) ListTodos(c *gin.Context) {
	m := h.manager(c)

	todos, err := m.List(c.Request.Context())
	if err != nil {
		h.storageError(c, "Failed to retrieve todos", err)
		return
	}

	c.JSON(http.StatusOK, todos)
}

// CreateTodo handles POST /api/v1/lists/:listId/todos
func (h *TodoHandler) CreateTodo(c *gin.Context) {
	m := h.manager(c)

	var req models.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    "INVALID_INPUT",
			Message: "Invalid request body",
			Details: map[string]interface{}{"error": err.Error()},
		})
		return
	}

	if _, err := m.Execute(c.Request.Context(), todo.CreateCommand{Text: req.Text}); err != nil {
		if errors.Is(err, todo.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Code:    "INVALID_INPUT",
				Message: "Text must be non-blank UTF-8 of at most 1000 characters",
			})
			return
		}
		h.storageError(c, "Failed to create todo", err)
		return
	}

	h.respondWithList(c, m, http.StatusCreated)
}

// ToggleTodo handles POST /api/v1/lists/:listId/todos/:todoId/toggle
func (h *TodoHandler) ToggleTodo(c *gin.Context) {
	m := h.manager(c)

	if _, err := m.Execute(c.Request.Context(), todo.ToggleCommand{ID: c.Param("todoId")}); err != nil {
		h.storageError(c, "Failed to toggle todo", err)
		return
	}

	h.respondWithList(c, m, http.StatusOK)
}

// DeleteTodo handles DELETE /api/v1/lists/:listId/todos/:todoId
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	m := h.manager(c)

	if _, err := m.Execute(c.Request.Context(), todo.DeleteCommand{ID: c.Param("todoId")}); err != nil {
		h.storageError(c, "Failed to delete todo", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *TodoHandler) respondWithList(c *gin.Context, m *todo.Manager, status int) {
	todos, err := m.List(c.Request.Context())
	if err != nil {
		h.storageError(c, "Failed to retrieve todos", err)
		return
	}
	c.JSON(status, todos)
}

// storageError attaches the failure for ErrorSanitizer to log and answers with a generic 500
func (h *TodoHandler) storageError(c *gin.Context, message string, err error) {
	_ = c.Error(fmt.Errorf("%s: %w", message, err))
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Code:    "INTERNAL_ERROR",
		Message: message,
	})
}
