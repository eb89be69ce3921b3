package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/calonsog/taskapi/internal/domain"
	"github.com/calonsog/taskapi/internal/service"
)

// UserHandler handles registration, sessions, and profile requests.
type UserHandler struct {
	auth  *service.AuthService
	users *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(auth *service.AuthService, users *service.UserService) *UserHandler {
	return &UserHandler{auth: auth, users: users}
}

// HandleRegister creates an account and logs it in.
// POST /users
// Request:  {"name":"...","email":"...","password":"...","age":0}
// Response: 201 {"user": {...}, "token": "..."}
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Age      int    `json:"age"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password, req.Age)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) || errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("register user", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	token, err := h.auth.IssueToken(r.Context(), user)
	if err != nil {
		slog.Error("issue token after register", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":  toUserDTO(user),
		"token": token,
	})
}

// HandleLogin verifies credentials and issues a session token.
// POST /users/login
// Request:  {"email":"...","password":"..."}
// Response: {"user": {...}, "token": "..."}
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusBadRequest, "Unable to login.")
			return
		}
		slog.Error("login user", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	token, err := h.auth.IssueToken(r.Context(), user)
	if err != nil {
		slog.Error("issue token after login", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":  toUserDTO(user),
		"token": token,
	})
}

// HandleLogout revokes the session token the request authenticated with.
// Other sessions stay valid.
// POST /users/logout
func (h *UserHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	token := TokenFromContext(r.Context())

	if err := h.auth.Logout(r.Context(), user.ID, token); err != nil {
		slog.Error("logout", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleLogoutAll revokes every session token issued to the user.
// POST /users/logoutAll
func (h *UserHandler) HandleLogoutAll(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	if err := h.auth.LogoutAll(r.Context(), user.ID); err != nil {
		slog.Error("logout all", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleGetMe returns the authenticated user's public profile.
// GET /users/me
func (h *UserHandler) HandleGetMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// HandleUpdateMe applies a partial profile update. Any key outside
// {name, email, password, age} fails the whole request.
// PATCH /users/me
func (h *UserHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var raw map[string]json.RawMessage
	if err := readJSON(r, &raw); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	for key := range raw {
		switch key {
		case "name", "email", "password", "age":
		default:
			writeError(w, http.StatusBadRequest, "Invalid updates for a user!")
			return
		}
	}

	var patch domain.UserPatch
	if err := unmarshalField(raw, "name", &patch.Name); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := unmarshalField(raw, "email", &patch.Email); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := unmarshalField(raw, "password", &patch.Password); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := unmarshalField(raw, "age", &patch.Age); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	updated, err := h.users.Update(r.Context(), user, patch)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrDuplicateEmail) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("update user", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, toUserDTO(updated))
}

// HandleDeleteMe deletes the account, its tasks, and its sessions, and
// returns the removed profile.
// DELETE /users/me
func (h *UserHandler) HandleDeleteMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	if err := h.users.DeleteAccount(r.Context(), user); err != nil {
		slog.Error("delete account", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// unmarshalField decodes raw[key] into a typed pointer field, leaving the
// field nil when the key is absent.
func unmarshalField[T any](raw map[string]json.RawMessage, key string, dst **T) error {
	value, ok := raw[key]
	if !ok {
		return nil
	}
	var v T
	if err := json.Unmarshal(value, &v); err != nil {
		return err
	}
	*dst = &v
	return nil
}
