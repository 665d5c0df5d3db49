package notifier

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Sender dispatches one multipart email. The SMTP transport is the only
// piece of the notification path that leaves the process.
type Sender interface {
	Send(from string, recipients []string, subject, textBody, htmlBody string) error
}

// SMTPSender implements Sender over a gomail dialer.
type SMTPSender struct {
	dialer *gomail.Dialer
}

// NewSMTPSender creates a sender with STARTTLS on the given host/port.
func NewSMTPSender(host string, port int, username, password string) *SMTPSender {
	return &SMTPSender{dialer: gomail.NewDialer(host, port, username, password)}
}

// Send dispatches a plain-text email with an HTML alternative.
func (s *SMTPSender) Send(from string, recipients []string, subject, textBody, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", recipients...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	if htmlBody != "" {
		m.AddAlternative("text/html", htmlBody)
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
