package notification

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridNotifier implements Notifier using the SendGrid v3 API.
type SendGridNotifier struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

// NewSendGrid creates a SendGrid-backed notifier.
func NewSendGrid(apiKey, fromEmail, fromName string) *SendGridNotifier {
	return &SendGridNotifier{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (n *SendGridNotifier) SendWelcome(email, name string) error {
	return n.send(email, name, "Welcome!",
		fmt.Sprintf("Welcome to the Task App, %s.", name))
}

func (n *SendGridNotifier) SendFarewell(email, name string) error {
	return n.send(email, name, "Goodbye!",
		fmt.Sprintf("Sorry to see you go, %s.", name))
}

func (n *SendGridNotifier) send(email, name, subject, body string) error {
	from := mail.NewEmail(n.fromName, n.fromEmail)
	to := mail.NewEmail(name, email)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	resp, err := n.client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: unexpected status %d", resp.StatusCode)
	}
	return nil
}
