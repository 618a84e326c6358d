// Package services declares the external collaborators the usecases talk to:
// outbound mail, avatar storage and the resend throttle.
package services

import (
	"context"
	"io"
	"time"
)

// Mailer delivers a single message. Implementations may block on network I/O.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// MailDispatcher hands messages to a Mailer without making the caller wait.
type MailDispatcher interface {
	Dispatch(ctx context.Context, to, subject, htmlBody string)
}

// FileStorage stores and removes blobs by logical key.
type FileStorage interface {
	Store(ctx context.Context, key string, content io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
}

// Throttle grants at most one action per key within window.
type Throttle interface {
	Allow(ctx context.Context, key string, window time.Duration) (bool, error)
}
