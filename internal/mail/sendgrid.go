package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SendGridClient struct {
	apiKey   string
	from     string
	fromName string
}

func NewSendGridClient(apiKey, from, fromName string) *SendGridClient {
	return &SendGridClient{apiKey: apiKey, from: from, fromName: fromName}
}

func (c *SendGridClient) Send(ctx context.Context, to, subject, body string) error {
	if c.apiKey == "" {
		return errors.New("sendgrid api key is empty")
	}
	if c.from == "" {
		return errors.New("from address is empty")
	}
	if to == "" {
		return errors.New("to address is empty")
	}

	message := mail.NewSingleEmail(
		mail.NewEmail(c.fromName, c.from),
		subject,
		mail.NewEmail("", to),
		body,
		fmt.Sprintf("<pre>%s</pre>", body),
	)

	response, err := sendgrid.NewSendClient(c.apiKey).SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", response.StatusCode, response.Body)
	}

	slog.Default().Info("mail_sent", "status", response.StatusCode, "to", to, "subject", subject)
	return nil
}

// Nop discards mail when no provider is configured.
type Nop struct{}

func (Nop) Send(context.Context, string, string, string) error { return nil }

func WelcomeMessage(siteName string) (subject, body string) {
	subject = "Welcome to " + siteName
	body = "Thanks for subscribing to the " + siteName + " newsletter.\n" +
		"We'll let you know about new arrivals and offers."
	return subject, body
}

func PasswordResetMessage(siteName, link string, ttl time.Duration) (subject, body string) {
	subject = siteName + " password reset"
	body = "Someone asked to reset the password of your " + siteName + " account.\n" +
		"Open this link to choose a new one:\n\n" + link + "\n\n" +
		fmt.Sprintf("The link works once and expires in %d minutes. ", int(ttl.Minutes())) +
		"If you did not ask for this, ignore this message."
	return subject, body
}
