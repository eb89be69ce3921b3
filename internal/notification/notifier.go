// Package notification delivers account lifecycle emails. Sends are
// fire-and-forget from the caller's point of view: services dispatch them
// on a goroutine and only log failures.
package notification

import "log/slog"

// Notifier sends account lifecycle emails.
type Notifier interface {
	SendWelcome(email, name string) error
	SendFarewell(email, name string) error
}

// LogNotifier is a Notifier that only logs. It is used when no email
// provider is configured, so development setups work without credentials.
type LogNotifier struct{}

func (LogNotifier) SendWelcome(email, name string) error {
	slog.Info("welcome email skipped, no provider configured", "email", email, "name", name)
	return nil
}

func (LogNotifier) SendFarewell(email, name string) error {
	slog.Info("farewell email skipped, no provider configured", "email", email, "name", name)
	return nil
}
