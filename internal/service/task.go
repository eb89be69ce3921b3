package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/calonsog/taskapi/internal/domain"
)

// sortableColumns maps API sort field names to task table columns. A field
// outside this map is ignored rather than rejected.
var sortableColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"description": "description",
	"completed":   "completed",
}

// ListOptions narrows and orders a task listing as requested by the client.
type ListOptions struct {
	Completed *bool
	SortBy    string // API field name, e.g. "createdAt"
	SortDesc  bool
	Limit     *uint64
	Skip      *uint64
}

// TaskService handles task CRUD scoped to the owning user.
type TaskService struct {
	tasks domain.TaskRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks domain.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

// Create stores a new task for the given owner.
func (s *TaskService) Create(ctx context.Context, creatorID int64, description string, completed bool) (*domain.Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	}

	task := &domain.Task{
		Description: description,
		Completed:   completed,
		CreatorID:   creatorID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// List returns the owner's tasks, filtered, sorted, and paginated.
func (s *TaskService) List(ctx context.Context, creatorID int64, opts ListOptions) ([]domain.Task, error) {
	filter := domain.TaskFilter{
		Completed: opts.Completed,
		Limit:     opts.Limit,
		Skip:      opts.Skip,
	}
	if column, ok := sortableColumns[opts.SortBy]; ok {
		filter.SortBy = column
		filter.SortDesc = opts.SortDesc
	}
	return s.tasks.List(ctx, creatorID, filter)
}

// GetByID returns the task only when it belongs to the given owner.
func (s *TaskService) GetByID(ctx context.Context, creatorID, id int64) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, creatorID, id)
}

// Update applies a patch to the owner's task. The whole operation fails if
// the task is missing or owned by someone else.
func (s *TaskService) Update(ctx context.Context, creatorID, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, creatorID, id)
	if err != nil {
		return nil, err
	}

	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if description == "" {
			return nil, fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
		}
		task.Description = description
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// Delete removes the owner's task and returns the deleted record.
func (s *TaskService) Delete(ctx context.Context, creatorID, id int64) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, creatorID, id)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.Delete(ctx, creatorID, id); err != nil {
		return nil, err
	}
	return task, nil
}
