package mail

import (
	"context"

	"go.uber.org/zap"
	"syncchat.backend/pkg/logger"
)

// LogMailer writes messages to the log instead of sending them.
// Used in development so codes can be read from the console.
type LogMailer struct{}

// NewLogMailer creates a log mailer
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

// Send logs the message
func (LogMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	logger.Info(ctx, "Mail (log provider)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", htmlBody),
	)
	return nil
}
