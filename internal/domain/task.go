package domain

import (
	"context"
	"time"
)

// Task is a to-do item owned by a single user. CreatorID is immutable
// after creation.
type Task struct {
	ID          int64     `db:"id"`
	Description string    `db:"description"`
	Completed   bool      `db:"completed"`
	CreatorID   int64     `db:"creator_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// TaskPatch carries a partial task update. Nil fields are left untouched.
type TaskPatch struct {
	Description *string
	Completed   *bool
}

// TaskFilter narrows and orders a task listing. Limit and Skip are only
// applied when set; an absent value means unconstrained.
type TaskFilter struct {
	Completed *bool
	SortBy    string // column name, already validated by the service
	SortDesc  bool
	Limit     *uint64
	Skip      *uint64
}

// TaskRepository defines persistence operations for tasks. Every lookup is
// scoped to the owning user; an id that exists under a different owner
// behaves exactly like a missing row.
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, creatorID, id int64) (*Task, error)
	List(ctx context.Context, creatorID int64, filter TaskFilter) ([]Task, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, creatorID, id int64) error
	DeleteByCreator(ctx context.Context, creatorID int64) error
}
