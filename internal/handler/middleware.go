package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/calonsog/taskapi/internal/domain"
	"github.com/calonsog/taskapi/internal/service"
)

type contextKey string

const (
	userContextKey  contextKey = "user"
	tokenContextKey contextKey = "token"
)

// UserFromContext extracts the authenticated user from the request context.
// Returns nil if no user is authenticated.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}

// TokenFromContext extracts the raw bearer token the request authenticated
// with. Logout uses it to revoke exactly that session.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

// RequireAuth is middleware that protects routes requiring authentication.
// It reads the Authorization header, validates the bearer JWT, loads the
// user, and requires the token to still be in the user's active list — a
// token revoked by logout is rejected even though its signature verifies.
// On success the user and raw token are injected into the request context.
func RequireAuth(auth *service.AuthService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, token, err := authenticateRequest(r, auth)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Please authenticate.")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, tokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func authenticateRequest(r *http.Request, auth *service.AuthService) (*domain.User, string, error) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return nil, "", domain.ErrUnauthorized
	}

	userID, err := auth.ValidateToken(token)
	if err != nil {
		return nil, "", err
	}

	user, err := auth.GetUserByID(r.Context(), userID)
	if err != nil {
		return nil, "", err
	}

	active, err := auth.TokenActive(r.Context(), user.ID, token)
	if err != nil {
		return nil, "", err
	}
	if !active {
		return nil, "", domain.ErrUnauthorized
	}

	return user, token, nil
}

// RateLimit applies the per-IP token bucket to a handler, returning 429
// when the client's bucket is exhausted.
func RateLimit(limiter *service.TokenBucket, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow(clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	return host
}
