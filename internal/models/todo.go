package models

import "time"

// Todo represents a todo item. UserID and ImagePath are nullable: a nil
// UserID marks a guest todo, a nil ImagePath a todo without an attachment.
type Todo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImagePath   *string   `json:"image_path"`
	Completed   bool      `json:"completed"`
	UserID      *string   `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TodoEvent is the message payload published to Kafka after a successful
// write (create/update/delete). Consumers only invalidate caches with it;
// the write itself has already been committed to Postgres.
type TodoEvent struct {
	Action     string    `json:"action"` // create, update, delete
	ID         string    `json:"id"`
	OwnerID    *string   `json:"owner_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
