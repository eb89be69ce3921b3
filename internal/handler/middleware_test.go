package handler_test

import (
	"net/http"
	"testing"
)

func TestRequireAuth_MissingHeader(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/users/me", "", nil)
	wantStatus(t, resp, http.StatusUnauthorized)

	var out struct {
		Error string `json:"error"`
	}
	decodeBody(t, resp, &out)
	if out.Error != "Please authenticate." {
		t.Fatalf("unexpected error message: %q", out.Error)
	}
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signUp(t, "Mal", "mal@example.com")

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/users/me", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	// Token present but not in bearer form.
	req.Header.Set("Authorization", token)

	resp, err := env.server.Client().Do(req)
	if err != nil {
		t.Fatalf("GET /users/me: %v", err)
	}
	defer resp.Body.Close()
	wantStatus(t, resp, http.StatusUnauthorized)
}

func TestRequireAuth_TamperedToken(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signUp(t, "Tam", "tam@example.com")

	tampered := token[:len(token)-2] + "xx"
	resp := env.do(t, http.MethodGet, "/users/me", tampered, nil)
	wantStatus(t, resp, http.StatusUnauthorized)
}

func TestRequireAuth_ValidToken(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signUp(t, "Val", "val@example.com")

	resp := env.do(t, http.MethodGet, "/users/me", token, nil)
	wantStatus(t, resp, http.StatusOK)
}

func TestRequireAuth_RevokedAfterLogout(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signUp(t, "Rev", "rev@example.com")

	resp := env.do(t, http.MethodPost, "/users/logout", token, nil)
	wantStatus(t, resp, http.StatusOK)

	// The signature still verifies, but the session row is gone.
	resp = env.do(t, http.MethodGet, "/users/me", token, nil)
	wantStatus(t, resp, http.StatusUnauthorized)
}

func TestRequireAuth_LogoutAllRevokesEverySession(t *testing.T) {
	env := newTestEnv(t)
	_, first := env.signUp(t, "All", "all@example.com")

	login := env.do(t, http.MethodPost, "/users/login", "", map[string]any{
		"email":    "all@example.com",
		"password": "S3cureEnough",
	})
	wantStatus(t, login, http.StatusOK)
	var out struct {
		Token string `json:"token"`
	}
	decodeBody(t, login, &out)

	resp := env.do(t, http.MethodPost, "/users/logoutAll", first, nil)
	wantStatus(t, resp, http.StatusOK)

	for _, token := range []string{first, out.Token} {
		resp = env.do(t, http.MethodGet, "/users/me", token, nil)
		wantStatus(t, resp, http.StatusUnauthorized)
	}
}

func TestRateLimit_CredentialEndpoints(t *testing.T) {
	// A dedicated env with a tiny bucket: one request allowed, no refill.
	limited := newRateLimitedEnv(t)

	resp := limited.do(t, http.MethodPost, "/users/login", "", map[string]any{
		"email":    "nobody@example.com",
		"password": "whatever1",
	})
	if resp.StatusCode == http.StatusTooManyRequests {
		t.Fatal("first request should not be rate limited")
	}

	resp = limited.do(t, http.MethodPost, "/users/login", "", map[string]any{
		"email":    "nobody@example.com",
		"password": "whatever1",
	})
	wantStatus(t, resp, http.StatusTooManyRequests)
}
