package mail

import (
	"context"

	"gopkg.in/gomail.v2"
)

// SMTPMailer sends mail through an authenticated SMTP relay
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

var dialAndSend = func(d *gomail.Dialer, m ...*gomail.Message) error {
	return d.DialAndSend(m...)
}

// NewSMTPMailer creates a mailer for host:port using PLAIN auth when a user is set
func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

// Send delivers one HTML message
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	return dialAndSend(m.dialer, msg)
}
