package mailer

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/akashaba/stock-tracker-app/internal/ports"
)

// Mailer delivers HTML mail over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

var _ ports.MailSender = (*Mailer)(nil)

// New wires an SMTP dialer and the sender address.
func New(host string, port int, username, password, from string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send delivers one message. gomail has no context support, so cancellation
// is honored before dialing only.
func (m *Mailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

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
