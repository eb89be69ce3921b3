package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/calonsog/taskapi/internal/domain"
)

// TaskRepository implements domain.TaskRepository using SQLite.
type TaskRepository struct {
	db *sqlx.DB
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (description, completed, creator_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		task.Description, task.Completed, task.CreatorID, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	task.ID = id
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, creatorID, id int64) (*domain.Task, error) {
	task := &domain.Task{}
	err := r.db.GetContext(ctx, task,
		`SELECT id, description, completed, creator_id, created_at, updated_at
		 FROM tasks WHERE id = ? AND creator_id = ?`, id, creatorID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query task by id: %w", err)
	}
	return task, nil
}

// List builds the SELECT incrementally: the owner scope is always present,
// the completed filter, ordering, and limit/skip only when set.
func (r *TaskRepository) List(ctx context.Context, creatorID int64, filter domain.TaskFilter) ([]domain.Task, error) {
	builder := sq.Select("id", "description", "completed", "creator_id", "created_at", "updated_at").
		From("tasks").
		Where(sq.Eq{"creator_id": creatorID})

	if filter.Completed != nil {
		builder = builder.Where(sq.Eq{"completed": *filter.Completed})
	}

	if filter.SortBy != "" {
		direction := "ASC"
		if filter.SortDesc {
			direction = "DESC"
		}
		builder = builder.OrderBy(filter.SortBy + " " + direction)
	}

	if filter.Limit != nil {
		builder = builder.Limit(*filter.Limit)
	}
	if filter.Skip != nil {
		builder = builder.Offset(*filter.Skip)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build task query: %w", err)
	}

	tasks := []domain.Task{}
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET description = ?, completed = ?, updated_at = ?
		 WHERE id = ? AND creator_id = ?`,
		task.Description, task.Completed, now, task.ID, task.CreatorID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	task.UpdatedAt = now
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, creatorID, id int64) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM tasks WHERE id = ? AND creator_id = ?", id, creatorID,
	)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) DeleteByCreator(ctx context.Context, creatorID int64) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM tasks WHERE creator_id = ?", creatorID,
	)
	if err != nil {
		return fmt.Errorf("delete tasks by creator: %w", err)
	}
	return nil
}
