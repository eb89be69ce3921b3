package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/calonsog/taskapi/internal/domain"
	"github.com/calonsog/taskapi/internal/repository/sqlite"
	"github.com/calonsog/taskapi/internal/service"
)

const testJWTSecret = "test-secret-key-for-unit-tests"

// fakeNotifier records sends on channels so tests can wait for the
// fire-and-forget goroutine.
type fakeNotifier struct {
	welcome  chan string
	farewell chan string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		welcome:  make(chan string, 8),
		farewell: make(chan string, 8),
	}
}

func (f *fakeNotifier) SendWelcome(email, name string) error {
	f.welcome <- email
	return nil
}

func (f *fakeNotifier) SendFarewell(email, name string) error {
	f.farewell <- email
	return nil
}

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestAuthService(t *testing.T) (*service.AuthService, *sqlite.DB, *fakeNotifier) {
	t.Helper()
	db := newTestDB(t)
	notifier := newFakeNotifier()
	// Use cost 4 for fast tests.
	auth := service.NewAuthService(db.Users(), db.Tokens(), notifier, testJWTSecret, 4)
	return auth, db, notifier
}

func TestAuthService_Register_Success(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "New User", "new@example.com", "secret12", 30)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if user.ID == 0 {
		t.Fatal("expected user ID to be set")
	}
	if user.Email != "new@example.com" {
		t.Fatalf("expected email new@example.com, got %s", user.Email)
	}
	if user.Age != 30 {
		t.Fatalf("expected age 30, got %d", user.Age)
	}
}

func TestAuthService_Register_PasswordIsHashed(t *testing.T) {
	auth, db, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "Hash User", "hash@example.com", "secret12", 0)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	stored, err := db.Users().GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.PasswordHash == "secret12" {
		t.Fatal("password stored in plain text")
	}
	if !strings.HasPrefix(stored.PasswordHash, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", stored.PasswordHash)
	}
}

func TestAuthService_Register_NormalizesFields(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "  Ann  ", "  ANN@Example.COM ", "secret12", 0)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Name != "Ann" {
		t.Fatalf("expected trimmed name, got %q", user.Name)
	}
	if user.Email != "ann@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "User 1", "dup@example.com", "secret12", 0); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := auth.Register(ctx, "User 2", "dup@example.com", "another9", 44)
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthService_Register_InvalidInput(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		age      int
	}{
		{"empty name", "", "a@b.com", "secret12", 0},
		{"whitespace name", "   ", "a@b.com", "secret12", 0},
		{"invalid email", "Name", "not-an-email", "secret12", 0},
		{"short password", "Name", "a@b.com", "secret", 0},
		{"password contains password", "Name", "a@b.com", "password1", 0},
		{"password contains Password mixed case", "Name", "a@b.com", "MyPassword", 0},
		{"negative age", "Name", "a@b.com", "secret12", -1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.Register(ctx, tc.userName, tc.email, tc.password, tc.age)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestAuthService_Register_SendsWelcomeEmail(t *testing.T) {
	auth, _, notifier := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "Mail User", "mail@example.com", "secret12", 0); err != nil {
		t.Fatalf("Register: %v", err)
	}

	select {
	case email := <-notifier.welcome:
		if email != "mail@example.com" {
			t.Fatalf("expected welcome to mail@example.com, got %s", email)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("welcome email was never sent")
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	registered, err := auth.Register(ctx, "Login User", "login@example.com", "secret12", 0)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, err := auth.Login(ctx, "login@example.com", "secret12")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("expected user %d, got %d", registered.ID, user.ID)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "User", "wrongpw@example.com", "secret12", 0); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := auth.Login(ctx, "wrongpw@example.com", "notsecret")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	auth, _, _ := newTestAuthService(t)

	_, err := auth.Login(context.Background(), "nobody@example.com", "secret12")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_IssueAndValidateToken(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "JWT User", "jwt@example.com", "secret12", 0)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, err := auth.IssueToken(ctx, user)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	userID, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if userID != user.ID {
		t.Fatalf("expected user ID %d, got %d", user.ID, userID)
	}

	active, err := auth.TokenActive(ctx, user.ID, token)
	if err != nil {
		t.Fatalf("TokenActive: %v", err)
	}
	if !active {
		t.Fatal("expected freshly issued token to be active")
	}
}

func TestAuthService_IssueToken_Distinct(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "Multi", "multi@example.com", "secret12", 0)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	first, err := auth.IssueToken(ctx, user)
	if err != nil {
		t.Fatalf("first IssueToken: %v", err)
	}
	second, err := auth.IssueToken(ctx, user)
	if err != nil {
		t.Fatalf("second IssueToken: %v", err)
	}
	if first == second {
		t.Fatal("expected each issued token to be unique")
	}
}

func TestAuthService_Logout_RevokesOnlyThatToken(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "Sessions", "sessions@example.com", "secret12", 0)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	first, _ := auth.IssueToken(ctx, user)
	second, _ := auth.IssueToken(ctx, user)

	if err := auth.Logout(ctx, user.ID, first); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	active, _ := auth.TokenActive(ctx, user.ID, first)
	if active {
		t.Fatal("revoked token should not be active")
	}
	active, _ = auth.TokenActive(ctx, user.ID, second)
	if !active {
		t.Fatal("other session's token should still be active")
	}
}

func TestAuthService_LogoutAll_RevokesEverything(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "All", "all@example.com", "secret12", 0)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	first, _ := auth.IssueToken(ctx, user)
	second, _ := auth.IssueToken(ctx, user)

	if err := auth.LogoutAll(ctx, user.ID); err != nil {
		t.Fatalf("LogoutAll: %v", err)
	}

	for _, token := range []string{first, second} {
		active, _ := auth.TokenActive(ctx, user.ID, token)
		if active {
			t.Fatalf("token %q should have been revoked", token)
		}
	}
}

func TestAuthService_ValidateToken_Invalid(t *testing.T) {
	auth, _, _ := newTestAuthService(t)

	_, err := auth.ValidateToken("not-a-valid-jwt")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_ValidateToken_Tampered(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "Tamper", "tamper@example.com", "secret12", 0)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, err := auth.IssueToken(ctx, user)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	// Flip several characters in the signature.
	tampered := token[:len(token)-5] + "XXXXX"
	if _, err := auth.ValidateToken(tampered); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for tampered token, got %v", err)
	}
}

func TestAuthService_ValidateToken_WrongSecret(t *testing.T) {
	auth1, _, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth1.Register(ctx, "Secret", "secret@example.com", "secret12", 0)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, err := auth1.IssueToken(ctx, user)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	db2 := newTestDB(t)
	auth2 := service.NewAuthService(db2.Users(), db2.Tokens(), newFakeNotifier(), "a-completely-different-secret", 4)

	if _, err := auth2.ValidateToken(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for wrong secret, got %v", err)
	}
}
