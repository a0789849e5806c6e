package messaging

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailSender delivers email through SendGrid.
type EmailSender struct {
	client   *sendgrid.Client
	fromAddr string
	fromName string
}

// NewEmailSender creates a SendGrid-backed email sender.
func NewEmailSender(apiKey, fromAddr, fromName string) *EmailSender {
	return &EmailSender{
		client:   sendgrid.NewSendClient(apiKey),
		fromAddr: fromAddr,
		fromName: fromName,
	}
}

// Send delivers one plain-text email.
func (s *EmailSender) Send(to, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromAddr)
	recipient := mail.NewEmail("", to)
	msg := mail.NewSingleEmail(from, subject, recipient, body, body)
	resp, err := s.client.Send(msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
