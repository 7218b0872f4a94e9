package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"todo-api/internal/apperr"
	"todo-api/internal/models"
	"todo-api/pkg/logger"
)

const todoColumns = `id, name, description, image_path, completed, user_id, created_at, updated_at`

// TodoRepository runs ownership-scoped CRUD over the todos table. Every
// scoped query compares user_id with IS NOT DISTINCT FROM, so guest scope
// (NULL owner) and owned scope share one statement, and a row outside the
// caller's scope is indistinguishable from a missing one.
type TodoRepository struct {
	db *sql.DB
}

func NewTodoRepository(db *sql.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

// List returns the todos visible in the given scope, newest first.
func (r *TodoRepository) List(ctx context.Context, scope models.Scope) ([]models.Todo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE user_id IS NOT DISTINCT FROM $1 ORDER BY created_at DESC`,
		scope.OwnerArg())
	if err != nil {
		logger.Error(ctx, "Repository List failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.ImagePath, &t.Completed, &t.UserID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			logger.Error(ctx, "Repository scan todo failed", "error", err)
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// CountGuest returns the number of guest todos (NULL owner). Used to
// enforce the unauthenticated creation cap.
func (r *TodoRepository) CountGuest(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM todos WHERE user_id IS NULL`).Scan(&count)
	if err != nil {
		logger.Error(ctx, "Repository CountGuest failed", "error", err)
		return 0, err
	}
	return count, nil
}

// GetByID returns the todo matching id within the given scope. A todo that
// exists but belongs to another scope yields ErrNotFoundOrForbidden, same
// as a nonexistent id.
func (r *TodoRepository) GetByID(ctx context.Context, id string, scope models.Scope) (models.Todo, error) {
	var t models.Todo
	err := r.db.QueryRowContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = $1 AND user_id IS NOT DISTINCT FROM $2`,
		id, scope.OwnerArg()).
		Scan(&t.ID, &t.Name, &t.Description, &t.ImagePath, &t.Completed, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Todo{}, apperr.ErrNotFoundOrForbidden
	}
	if err != nil {
		logger.Error(ctx, "Repository GetByID failed", "error", err, "id", id)
		return models.Todo{}, err
	}
	return t, nil
}

// Create inserts a new todo owned by the scope (NULL owner for guests) and
// returns the created record.
func (r *TodoRepository) Create(ctx context.Context, name, description string, imagePath *string, scope models.Scope) (models.Todo, error) {
	now := time.Now().UTC()
	t := models.Todo{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		ImagePath:   imagePath,
		Completed:   false,
		UserID:      scope.OwnerRef(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO todos (id, name, description, image_path, completed, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.Name, t.Description, t.ImagePath, t.Completed, t.UserID, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		logger.Error(ctx, "Repository Create failed", "error", err)
		return models.Todo{}, err
	}
	return t, nil
}

// Update rewrites name, description and completed of the todo matching
// id+scope and returns the updated row. Zero rows matched means the todo is
/// missing or owned elsewhere: ErrNotFoundOrForbidden either way.
func (r *TodoRepository) Update(ctx context.Context, id, name, description string, completed bool, scope models.Scope) (models.Todo, error) {
	var t models.Todo
	err := r.db.QueryRowContext(ctx,
		`UPDATE todos SET name = $1, description = $2, completed = $3, updated_at = $4
		 WHERE id = $5 AND user_id IS NOT DISTINCT FROM $6
		 RETURNING `+todoColumns,
		name, description, completed, time.Now().UTC(), id, scope.OwnerArg()).
		Scan(&t.ID, &t.Name, &t.Description, &t.ImagePath, &t.Completed, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Todo{}, apperr.ErrNotFoundOrForbidden
	}
	if err != nil {
		logger.Error(ctx, "Repository Update failed", "error", err, "id", id)
		return models.Todo{}, err
	}
	return t, nil
}

// Delete removes the todo matching id+scope. Zero rows affected yields
// ErrNotFoundOrForbidden.
func (r *TodoRepository) Delete(ctx context.Context, id string, scope models.Scope) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM todos WHERE id = $1 AND user_id IS NOT DISTINCT FROM $2`,
		id, scope.OwnerArg())
	if err != nil {
		logger.Error(ctx, "Repository Delete failed", "error", err, "id", id)
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.ErrNotFoundOrForbidden
	}
	return nil
}
