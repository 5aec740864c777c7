package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/hostelhub/mess-api/pkg/config"
)

// Mailer sends transactional email through an SMTP relay.
type Mailer struct {
	dialer  *gomail.Dialer
	from    string
	baseURL string
}

// New constructs a mailer from SMTP configuration.
func New(cfg config.SMTPConfig) *Mailer {
	return &Mailer{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    cfg.From,
		baseURL: cfg.BaseURL,
	}
}

// SendVerification delivers the email-verification link for a new account.
func (m *Mailer) SendVerification(to, token string) error {
	url := fmt.Sprintf("%s/verify-email?token=%s", m.baseURL, token)
	body := fmt.Sprintf(`<p>Welcome to the hostel mess portal.</p>
<p>Confirm your email address to activate your account:</p>
<p><a href=%q>Verify email</a></p>
<p>If you did not register, you can ignore this message.</p>`, url)
	return m.send(to, "Verify your email", body)
}

// SendPasswordReset delivers the password-reset link.
func (m *Mailer) SendPasswordReset(to, token string) error {
	url := fmt.Sprintf("%s/reset-password?token=%s", m.baseURL, token)
	body := fmt.Sprintf(`<p>A password reset was requested for your mess portal account.</p>
<p><a href=%q>Reset password</a></p>
<p>The link expires shortly. If you did not request a reset, ignore this message.</p>`, url)
	return m.send(to, "Reset your password", body)
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
