package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/calonsog/taskapi/internal/domain"
	"github.com/calonsog/taskapi/internal/service"
)

// AvatarHandler handles avatar upload, deletion, and public retrieval.
type AvatarHandler struct {
	avatars *service.AvatarService
}

// NewAvatarHandler creates a new AvatarHandler.
func NewAvatarHandler(avatars *service.AvatarService) *AvatarHandler {
	return &AvatarHandler{avatars: avatars}
}

// HandleUpload stores the authenticated user's avatar from the multipart
// field "avatar". The image is normalized to a 250x250 PNG before storage.
// POST /users/me/avatar
func (h *AvatarHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	if err := r.ParseMultipartForm(4 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form.")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Please provide an avatar file.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("read avatar upload", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	if err := h.avatars.Upload(r.Context(), user.ID, header.Filename, data); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("upload avatar", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	w.WriteHeader(http.StatusOK)
}

// HandleDelete clears the authenticated user's avatar.
// DELETE /users/me/avatar
func (h *AvatarHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	if err := h.avatars.Delete(r.Context(), user.ID); err != nil {
		slog.Error("delete avatar", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	w.WriteHeader(http.StatusOK)
}

// HandleGet serves any user's avatar as PNG. Public, no authentication.
// GET /users/{id}/avatar
func (h *AvatarHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Avatar not found.")
		return
	}

	data, err := h.avatars.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Avatar not found.")
			return
		}
		slog.Error("get avatar", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
