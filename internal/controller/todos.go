package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"

	"todo-api/internal/apperr"
	"todo-api/internal/cache"
	"todo-api/internal/middleware"
	"todo-api/internal/models"
	"todo-api/internal/queue"
	"todo-api/internal/repository"
	"todo-api/internal/upload"
	"todo-api/pkg/logger"
)

// TodoController serves the ownership-scoped todo CRUD surface. Reads are
// cache-first per scope; writes go straight to Postgres, then invalidate
// the local cache and publish a change event for peer replicas.
type TodoController struct {
	todos      *repository.TodoRepository
	cache      *cache.Cache
	events     *queue.Publisher
	uploads    *upload.Store
	guestLimit int
	listGroup  singleflight.Group
}

func NewTodoController(todos *repository.TodoRepository, c *cache.Cache, events *queue.Publisher, uploads *upload.Store, guestLimit int) *TodoController {
	return &TodoController{
		todos:      todos,
		cache:      c,
		events:     events,
		uploads:    uploads,
		guestLimit: guestLimit,
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// List returns the todos visible in the request's scope as JSON, serving
// cached raw bytes when possible and coalescing concurrent cache misses.
func (tc *TodoController) List(c *gin.Context) {
	ctx := c.Request.Context()
	scope := middleware.Scope(c)

	if b, ok := tc.cache.GetRawTodos(ctx, scope); ok {
		c.Data(http.StatusOK, "application/json", b)
		return
	}

	v, err, _ := tc.listGroup.Do(scope.CacheKey(), func() (interface{}, error) {
		todos, err := tc.todos.List(context.Background(), scope)
		if err != nil {
			return nil, err
		}
		return json.Marshal(todos)
	})
	if err != nil {
		if ctx.Err() != nil || isContextErr(err) {
			return
		}
		logger.Error(ctx, "List todos failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch todos"})
		return
	}
	b := v.([]byte)
	c.Data(http.StatusOK, "application/json", b)
	tc.cache.SetRawTodosAsync(scope, b)
}

// GetByID returns a single todo in the request's scope. A todo owned by a
// different scope gets the same 404 as a missing one.
func (tc *TodoController) GetByID(c *gin.Context) {
	ctx := c.Request.Context()
	scope := middleware.Scope(c)

	todo, err := tc.todos.GetByID(ctx, c.Param("id"), scope)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFoundOrForbidden) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
			return
		}
		logger.Error(ctx, "Get todo failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch todo"})
		return
	}
	c.JSON(http.StatusOK, todo)
}

// Create inserts a todo from a multipart form (text, description, optional
// image). Guest creation is capped; the flag in the 403 body lets the
// frontend prompt sign-up.
func (tc *TodoController) Create(c *gin.Context) {
	ctx := c.Request.Context()
	scope := middleware.Scope(c)

	name := c.PostForm("text")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Todo text is required"})
		return
	}
	description := c.PostForm("description")

	if !scope.Owned() {
		count, err := tc.todos.CountGuest(ctx)
		if err != nil {
			logger.Error(ctx, "Guest count failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add todo"})
			return
		}
		if count >= tc.guestLimit {
			c.JSON(http.StatusForbidden, gin.H{
				"error":             "Guest limit reached. Please sign up or login to create more todos.",
				"guestLimitReached": true,
			})
			return
		}
	}

	var imagePath *string
	if fh, err := c.FormFile("image"); err == nil {
		path, err := tc.uploads.Save(fh)
		if err != nil {
			if errors.Is(err, upload.ErrUnsupportedImage) || errors.Is(err, upload.ErrFileTooLarge) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			logger.Error(ctx, "Image upload failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add todo"})
			return
		}
		imagePath = &path
	}

	todo, err := tc.todos.Create(ctx, name, description, imagePath, scope)
	if err != nil {
		logger.Error(ctx, "Create todo failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add todo"})
		return
	}

	tc.notify(ctx, "create", todo.ID, scope)
	c.JSON(http.StatusCreated, todo)
}

// Update rewrites name, description and completed within the request's
// scope. Missing and foreign todos are indistinguishable in the response.
func (tc *TodoController) Update(c *gin.Context) {
	ctx := c.Request.Context()
	scope := middleware.Scope(c)

	var body struct {
		Data struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Completed   bool   `json:"completed"`
		} `json:"data"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if body.Data.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Todo name is required"})
		return
	}

	todo, err := tc.todos.Update(ctx, c.Param("id"), body.Data.Name, body.Data.Description, body.Data.Completed, scope)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFoundOrForbidden) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found or access denied"})
			return
		}
		logger.Error(ctx, "Update todo failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to edit todo"})
		return
	}

	tc.notify(ctx, "update", todo.ID, scope)
	c.JSON(http.StatusOK, todo)
}

// Delete removes a todo within the request's scope.
func (tc *TodoController) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	scope := middleware.Scope(c)
	id := c.Param("id")

	if err := tc.todos.Delete(ctx, id, scope); err != nil {
		if errors.Is(err, apperr.ErrNotFoundOrForbidden) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found or access denied"})
			return
		}
		logger.Error(ctx, "Delete todo failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete todo"})
		return
	}

	tc.notify(ctx, "delete", id, scope)
	c.JSON(http.StatusOK, gin.H{"message": "Todo deleted successfully"})
}

// GuestCount reports the guest todo count against the cap, for frontend UI.
func (tc *TodoController) GuestCount(c *gin.Context) {
	ctx := c.Request.Context()

	count, ok := tc.cache.GetGuestCount(ctx)
	if !ok {
		var err error
		count, err = tc.todos.CountGuest(ctx)
		if err != nil {
			logger.Error(ctx, "Guest count failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get guest todo count"})
			return
		}
		tc.cache.SetGuestCount(ctx, count)
	}

	remaining := tc.guestLimit - count
	if remaining < 0 {
		remaining = 0
	}
	c.JSON(http.StatusOK, gin.H{"count": count, "limit": tc.guestLimit, "remaining": remaining})
}

// notify drops the scope's cache entries and publishes a change event so
// other replicas drop theirs. Best-effort on purpose: the row is already
// committed.
func (tc *TodoController) notify(ctx context.Context, action, id string, scope models.Scope) {
	tc.cache.Invalidate(ctx, scope)
	tc.events.PublishTodoEvent(ctx, &models.TodoEvent{
		Action:     action,
		ID:         id,
		OwnerID:    scope.OwnerRef(),
		OccurredAt: time.Now(),
	})
}
