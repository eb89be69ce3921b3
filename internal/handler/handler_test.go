package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/calonsog/taskapi/internal/handler"
	"github.com/calonsog/taskapi/internal/notification"
	"github.com/calonsog/taskapi/internal/repository/sqlite"
	"github.com/calonsog/taskapi/internal/service"
)

const testJWTSecret = "handler-test-secret-0123456789abcdef"

type testEnv struct {
	server *httptest.Server
	auth   *service.AuthService
	db     *sqlite.DB
}

// newTestEnv spins up the full route stack on an in-process server backed
// by a temp-dir database. The rate limiter is sized so tests never hit it.
func newTestEnv(t *testing.T) *testEnv {
	return newEnvWithLimiter(t, service.NewTokenBucket(1000, 1000))
}

// newRateLimitedEnv is like newTestEnv but with a one-shot token bucket
// that never refills, so the second credential request is rejected.
func newRateLimitedEnv(t *testing.T) *testEnv {
	return newEnvWithLimiter(t, service.NewTokenBucket(0, 1))
}

func newEnvWithLimiter(t *testing.T, limiter *service.TokenBucket) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	notifier := notification.LogNotifier{}
	auth := service.NewAuthService(db.Users(), db.Tokens(), notifier, testJWTSecret, 4)
	users := service.NewUserService(db.Users(), db.Tokens(), db.Tasks(), notifier, 4)
	tasks := service.NewTaskService(db.Tasks())
	avatars := service.NewAvatarService(db.Users())

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, auth, users, tasks, avatars, limiter)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{server: server, auth: auth, db: db}
}

// do sends a JSON request and returns the response. A non-nil body is
// JSON-encoded; a non-empty token becomes a bearer Authorization header.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

// signUp registers a user over HTTP and returns its id and session token.
func (e *testEnv) signUp(t *testing.T, name, email string) (int64, string) {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/users", "", map[string]any{
		"name":     name,
		"email":    email,
		"password": "S3cureEnough",
		"age":      30,
	})
	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("sign up %s: status %d, body %s", email, resp.StatusCode, raw)
	}

	var out struct {
		User struct {
			ID int64 `json:"id"`
		} `json:"user"`
		Token string `json:"token"`
	}
	decodeBody(t, resp, &out)
	if out.Token == "" {
		t.Fatal("sign up returned empty token")
	}
	return out.User.ID, out.Token
}

// createTask creates a task over HTTP and returns its id.
func (e *testEnv) createTask(t *testing.T, token, description string, completed bool) int64 {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/tasks", token, map[string]any{
		"description": description,
		"completed":   completed,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create task %q: status %d", description, resp.StatusCode)
	}

	var out struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, resp, &out)
	return out.ID
}

func wantStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected status %d, got %d (body: %s)", want, resp.StatusCode, raw)
	}
}

func taskPath(id int64) string {
	return fmt.Sprintf("/tasks/%d", id)
}
