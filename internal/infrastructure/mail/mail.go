// Package mail provides the outbound mail transports (SMTP, Resend, log)
// and the asynchronous dispatcher used for verification codes.
package mail

import (
	"fmt"

	"syncchat.backend/internal/config"
	"syncchat.backend/internal/domain/services"
)

// New builds the mailer selected by cfg.Provider
func New(cfg config.MailConfig) (services.Mailer, error) {
	switch cfg.Provider {
	case config.MailProviderSMTP:
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.From), nil
	case config.MailProviderResend:
		return NewResendMailer(cfg.ResendAPIKey, cfg.From), nil
	case config.MailProviderLog, "":
		return NewLogMailer(), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}
