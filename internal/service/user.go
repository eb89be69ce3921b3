package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/calonsog/taskapi/internal/domain"
	"github.com/calonsog/taskapi/internal/notification"
)

// UserService handles profile updates and account deletion.
type UserService struct {
	users      domain.UserRepository
	tokens     domain.TokenRepository
	tasks      domain.TaskRepository
	notifier   notification.Notifier
	bcryptCost int
}

// NewUserService creates a new UserService.
func NewUserService(users domain.UserRepository, tokens domain.TokenRepository, tasks domain.TaskRepository, notifier notification.Notifier, bcryptCost int) *UserService {
	return &UserService{
		users:      users,
		tokens:     tokens,
		tasks:      tasks,
		notifier:   notifier,
		bcryptCost: bcryptCost,
	}
}

// Update applies a validated profile patch. A password change re-hashes
// before persisting; an email change goes through the same normalization
// and uniqueness rules as registration.
func (s *UserService) Update(ctx context.Context, user *domain.User, patch domain.UserPatch) (*domain.User, error) {
	updated := *user

	if patch.Name != nil {
		name, err := normalizeName(*patch.Name)
		if err != nil {
			return nil, err
		}
		updated.Name = name
	}

	if patch.Email != nil {
		email, err := normalizeEmail(*patch.Email)
		if err != nil {
			return nil, err
		}
		updated.Email = email
	}

	if patch.Password != nil {
		password, err := validatePassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		updated.PasswordHash = string(hash)
	}

	if patch.Age != nil {
		if *patch.Age < 0 {
			return nil, fmt.Errorf("%w: age must be a non-negative number", domain.ErrInvalidInput)
		}
		updated.Age = *patch.Age
	}

	if err := s.users.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	return &updated, nil
}

// DeleteAccount removes the user's tasks, tokens, and record, in that
// order, then sends a farewell email without blocking on it.
func (s *UserService) DeleteAccount(ctx context.Context, user *domain.User) error {
	if err := s.tasks.DeleteByCreator(ctx, user.ID); err != nil {
		return fmt.Errorf("delete tasks: %w", err)
	}
	if err := s.tokens.RemoveAll(ctx, user.ID); err != nil {
		return fmt.Errorf("delete tokens: %w", err)
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	go func() {
		if err := s.notifier.SendFarewell(user.Email, user.Name); err != nil {
			slog.Error("send farewell email", "email", user.Email, "error", err)
		}
	}()

	return nil
}
