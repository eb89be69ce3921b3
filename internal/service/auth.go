package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/calonsog/taskapi/internal/domain"
	"github.com/calonsog/taskapi/internal/notification"
)

const tokenValidity = 24 * time.Hour

// AuthService handles registration, login, and the session token lifecycle.
// Issued tokens are persisted per user so that logout can revoke a token
// whose signature would otherwise still verify.
type AuthService struct {
	users      domain.UserRepository
	tokens     domain.TokenRepository
	notifier   notification.Notifier
	jwtSecret  []byte
	bcryptCost int
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, tokens domain.TokenRepository, notifier notification.Notifier, jwtSecret string, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		notifier:   notifier,
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: bcryptCost,
	}
}

// Register creates a new user account after validating inputs and sends a
// welcome email without blocking on it.
func (s *AuthService) Register(ctx context.Context, name, email, password string, age int) (*domain.User, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	email, err = normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	password, err = validatePassword(password)
	if err != nil {
		return nil, err
	}
	if age < 0 {
		return nil, fmt.Errorf("%w: age must be a non-negative number", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Age:          age,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	go func() {
		if err := s.notifier.SendWelcome(user.Email, user.Name); err != nil {
			slog.Error("send welcome email", "email", user.Email, "error", err)
		}
	}()

	return user, nil
}

// Login verifies credentials and returns the matching user. Unknown email
// and wrong password collapse into the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	return user, nil
}

// IssueToken signs a JWT for the user and records it in the active-token
// list so the middleware will accept it.
func (s *AuthService) IssueToken(ctx context.Context, user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(user.ID, 10),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenValidity)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	if err := s.tokens.Add(ctx, user.ID, token); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}

	return token, nil
}

// ValidateToken parses and validates a JWT token string and returns the
// user ID from the sub claim. A valid signature alone is not enough for a
// request to pass the middleware; see TokenActive.
func (s *AuthService) ValidateToken(tokenString string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, domain.ErrUnauthorized
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, domain.ErrUnauthorized
	}

	return userID, nil
}

// TokenActive reports whether the exact token string is still in the
// user's active list. Tokens removed by logout fail this check even though
// their signature still verifies.
func (s *AuthService) TokenActive(ctx context.Context, userID int64, token string) (bool, error) {
	return s.tokens.Exists(ctx, userID, token)
}

// Logout revokes exactly the given token.
func (s *AuthService) Logout(ctx context.Context, userID int64, token string) error {
	return s.tokens.Remove(ctx, userID, token)
}

// LogoutAll revokes every token issued to the user.
func (s *AuthService) LogoutAll(ctx context.Context, userID int64) error {
	return s.tokens.RemoveAll(ctx, userID)
}

// GetUserByID retrieves a user by their ID.
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}
