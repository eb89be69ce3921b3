package handler

import (
	"net/http"

	"github.com/calonsog/taskapi/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux. The limiter
// guards only the credential endpoints.
func RegisterRoutes(
	mux *http.ServeMux,
	auth *service.AuthService,
	users *service.UserService,
	tasks *service.TaskService,
	avatars *service.AvatarService,
	limiter *service.TokenBucket,
) {
	userHandler := NewUserHandler(auth, users)
	taskHandler := NewTaskHandler(tasks)
	avatarHandler := NewAvatarHandler(avatars)

	protected := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(auth, h)
	}
	limited := func(h http.HandlerFunc) http.Handler {
		return RateLimit(limiter, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.Handle("POST /users", limited(userHandler.HandleRegister))
	mux.Handle("POST /users/login", limited(userHandler.HandleLogin))
	mux.Handle("POST /users/logout", protected(userHandler.HandleLogout))
	mux.Handle("POST /users/logoutAll", protected(userHandler.HandleLogoutAll))
	mux.Handle("GET /users/me", protected(userHandler.HandleGetMe))
	mux.Handle("PATCH /users/me", protected(userHandler.HandleUpdateMe))
	mux.Handle("DELETE /users/me", protected(userHandler.HandleDeleteMe))

	mux.Handle("POST /users/me/avatar", protected(avatarHandler.HandleUpload))
	mux.Handle("DELETE /users/me/avatar", protected(avatarHandler.HandleDelete))
	mux.HandleFunc("GET /users/{id}/avatar", avatarHandler.HandleGet)

	mux.Handle("POST /tasks", protected(taskHandler.HandleCreate))
	mux.Handle("GET /tasks", protected(taskHandler.HandleList))
	mux.Handle("GET /tasks/{id}", protected(taskHandler.HandleGet))
	mux.Handle("PATCH /tasks/{id}", protected(taskHandler.HandleUpdate))
	mux.Handle("DELETE /tasks/{id}", protected(taskHandler.HandleDelete))
}
