package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/calonsog/taskapi/internal/domain"
	"github.com/calonsog/taskapi/internal/service"
)

// TaskHandler handles task requests, all scoped to the authenticated owner.
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// HandleCreate creates a task owned by the authenticated user.
// POST /tasks
// Request:  {"description":"...","completed":false}
// Response: 201 task
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req struct {
		Description string `json:"description"`
		Completed   bool   `json:"completed"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	task, err := h.tasks.Create(r.Context(), user.ID, req.Description, req.Completed)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusCreated, toTaskDTO(task))
}

// HandleList returns the user's tasks.
// GET /tasks?completed=true&limit=10&skip=0&sortBy=createdAt:desc
//
// A limit or skip that does not parse as a non-negative integer is
// ignored rather than coerced to zero.
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	q := r.URL.Query()

	var opts service.ListOptions

	if v := q.Get("completed"); v != "" {
		completed := v == "true"
		opts.Completed = &completed
	}

	if v := q.Get("sortBy"); v != "" {
		field, direction, _ := strings.Cut(v, ":")
		opts.SortBy = field
		opts.SortDesc = direction == "desc"
	}

	if v := q.Get("limit"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			opts.Limit = &n
		}
	}
	if v := q.Get("skip"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			opts.Skip = &n
		}
	}

	tasks, err := h.tasks.List(r.Context(), user.ID, opts)
	if err != nil {
		slog.Error("list tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, toTaskDTOs(tasks))
}

// HandleGet returns a single task by id. A task owned by someone else is
// indistinguishable from a missing one.
// GET /tasks/{id}
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Task not found.")
		return
	}

	task, err := h.tasks.GetByID(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Task not found.")
			return
		}
		slog.Error("get task", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, toTaskDTO(task))
}

// HandleUpdate applies a partial update. Any key outside
// {description, completed} fails the whole request; no partial apply.
// PATCH /tasks/{id}
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Task not found.")
		return
	}

	var raw map[string]json.RawMessage
	if err := readJSON(r, &raw); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	for key := range raw {
		switch key {
		case "description", "completed":
		default:
			writeError(w, http.StatusBadRequest, "Invalid updates for a task!")
			return
		}
	}

	var patch domain.TaskPatch
	if err := unmarshalField(raw, "description", &patch.Description); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := unmarshalField(raw, "completed", &patch.Completed); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	task, err := h.tasks.Update(r.Context(), user.ID, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Task not found.")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("update task", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, toTaskDTO(task))
}

// HandleDelete removes a task and returns the deleted record.
// DELETE /tasks/{id}
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Task not found.")
		return
	}

	task, err := h.tasks.Delete(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Task not found.")
			return
		}
		slog.Error("delete task", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, toTaskDTO(task))
}
