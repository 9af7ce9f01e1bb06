package client

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
	"time"

	"github.com/runcoach/backend/internal/config"
)

// Mailer delivers login codes over SMTP. When no SMTP host is configured the
// code is written to the process log instead, so the login flow stays usable
// in development without a mail account.
type Mailer struct {
	cfg config.SMTPConfig
}

func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Configured() bool {
	return m.cfg.Host != ""
}

func (m *Mailer) SendLoginCode(email, code string, ttl time.Duration) error {
	if !m.Configured() {
		log.Printf("mailer: SMTP not configured, login code for %s: %s", email, code)
		return nil
	}

	subject := "Your login code"
	body := fmt.Sprintf(
		"Hello,\n\n"+
			"Your login code is: %s\n\n"+
			"It expires in %d minutes. If you did not request this code you can ignore this email.\n",
		code, int(ttl.Minutes()))

	return m.send(email, subject, body)
}

func (m *Mailer) send(toEmail, subject, body string) error {
	from := m.cfg.From
	if from == "" {
		from = m.cfg.User
	}

	headers := []string{
		fmt.Sprintf("From: %s", from),
		fmt.Sprintf("To: %s", toEmail),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}
	message := strings.Join(headers, "\r\n")

	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)

	return smtp.SendMail(addr, auth, from, []string{toEmail}, []byte(message))
}
