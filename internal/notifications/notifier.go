package notifications

import (
	"github.com/Shravan4507/ise-elevators-website/internal/config"
	"github.com/Shravan4507/ise-elevators-website/internal/leads"
)

// FromConfig picks Brevo when an API key is set, SMTP when a host is set,
// and nothing otherwise. The name identifies the choice for logging.
func FromConfig(cfg *config.Config) (leads.Notifier, string) {
	if c := NewBrevoClient(cfg.BrevoAPIKey, cfg.BrevoSenderEmail, cfg.BrevoSenderName, cfg.NotifyEmail, cfg.BrevoSandbox); c != nil {
		return c, "brevo"
	}
	if m := NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom, cfg.NotifyEmail); m != nil {
		return m, "smtp"
	}
	return nil, "disabled"
}
