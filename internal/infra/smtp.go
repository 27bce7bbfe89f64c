package infra

import (
	"fmt"
	"net/smtp"

	"github.com/hummafaranpilot-stack/metatrim/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending HTML alert emails.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// SendHTML sends one HTML email. A plain-text fallback body is derived
// by the receiving client; we only ship the HTML part.
func (m *Mailer) SendHTML(from, to, subject, htmlBody string) error {
	e := email.NewEmail()
	e.From = from
	if e.From == "" {
		e.From = m.user
	}
	e.To = []string{to}
	e.Subject = subject
	e.HTML = []byte(htmlBody)

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
