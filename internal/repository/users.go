package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"todo-api/internal/apperr"
	"todo-api/internal/models"
	"todo-api/pkg/logger"
)

const uniqueViolation = "23505"

const userColumns = `id, username, email, password_hash, created_at`

// UserRepository persists registered accounts. Username and email
// uniqueness is delegated to the database's unique constraints.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. A unique constraint violation on username or
// email maps to ErrDuplicateUser.
func (r *UserRepository) Create(ctx context.Context, username, email, passwordHash string) (models.User, error) {
	u := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return models.User{}, apperr.ErrDuplicateUser
		}
		logger.Error(ctx, "Repository CreateUser failed", "error", err)
		return models.User{}, err
	}
	return u, nil
}

// FindByUsernameOrEmail looks up a user by either field with a single
// parameter, matching the flexible login input.
func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1`,
		usernameOrEmail).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperr.ErrNotFound
	}
	if err != nil {
		logger.Error(ctx, "Repository FindByUsernameOrEmail failed", "error", err)
		return models.User{}, err
	}
	return u, nil
}

// FindByID returns the user with the given id, or ErrNotFound.
func (r *UserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperr.ErrNotFound
	}
	if err != nil {
		logger.Error(ctx, "Repository FindByID failed", "error", err, "id", id)
		return models.User{}, err
	}
	return u, nil
}
