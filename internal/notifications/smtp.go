package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Shravan4507/ise-elevators-website/internal/leads"
	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// Sender is the part of gomail.Dialer the mailer uses.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer delivers lead notifications over plain SMTP.
type SMTPMailer struct {
	sender Sender
	from   string
	inbox  string
}

func NewSMTPMailer(host string, port int, user, password, from, inbox string) *SMTPMailer {
	if strings.TrimSpace(host) == "" {
		return nil
	}
	return &SMTPMailer{
		sender: gomail.NewDialer(host, port, user, password),
		from:   from,
		inbox:  inbox,
	}
}

func (m *SMTPMailer) SendLeadNotification(ctx context.Context, lead leads.Lead) (string, error) {
	if m == nil {
		return "", errors.New("smtp mailer is nil")
	}
	if strings.TrimSpace(m.inbox) == "" {
		return "", errors.New("missing recipient email")
	}
	subject, htmlBody, err := buildLeadNotification(lead)
	if err != nil {
		return "", err
	}

	domain := "localhost"
	if at := strings.LastIndex(m.from, "@"); at >= 0 {
		domain = m.from[at+1:]
	}
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.inbox)
	if lead.Email != "" {
		msg.SetHeader("Reply-To", lead.Email)
	}
	msg.SetHeader("Subject", subject)
	msg.SetHeader("Message-ID", messageID)
	msg.SetBody("text/html", htmlBody)

	// gomail has no context support; give up early if the caller already did.
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := m.sender.DialAndSend(msg); err != nil {
		return "", fmt.Errorf("smtp send failed: %w", err)
	}
	return messageID, nil
}
