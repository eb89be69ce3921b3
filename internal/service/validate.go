package service

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/calonsog/taskapi/internal/domain"
)

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	return name, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: not a valid e-mail address", domain.ErrInvalidInput)
	}
	return email, nil
}

func validatePassword(password string) (string, error) {
	password = strings.TrimSpace(password)
	if len(password) < 7 {
		return "", fmt.Errorf("%w: password must be at least 7 characters", domain.ErrInvalidInput)
	}
	if strings.Contains(strings.ToLower(password), "password") {
		return "", fmt.Errorf(`%w: password must not contain the word "password"`, domain.ErrInvalidInput)
	}
	return password, nil
}
