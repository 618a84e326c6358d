package mail

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"syncchat.backend/internal/domain/services"
	"syncchat.backend/pkg/logger"
	"syncchat.backend/pkg/metrics"
)

// Dispatcher sends mail on background goroutines. Failures are logged and
// counted, never returned: callers must not depend on delivery.
type Dispatcher struct {
	mailer  services.Mailer
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher wraps mailer; every send gets its own timeout
func NewDispatcher(mailer services.Mailer, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{mailer: mailer, timeout: timeout}
}

// Dispatch queues a message and returns immediately
func (d *Dispatcher) Dispatch(ctx context.Context, to, subject, htmlBody string) {
	// detach from the request so the send outlives the response
	sendCtx := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(sendCtx, d.timeout)
		defer cancel()

		if err := d.mailer.Send(ctx, to, subject, htmlBody); err != nil {
			metrics.MailDeliveries.WithLabelValues("failed").Inc()
			logger.Error(ctx, "Email not sent", zap.String("to", MaskAddress(to)), zap.String("subject", subject), zap.Error(err))
			return
		}
		metrics.MailDeliveries.WithLabelValues("sent").Inc()
		logger.Info(ctx, "Email sent successfully", zap.String("to", MaskAddress(to)), zap.String("subject", subject))
	}()
}

// Wait blocks until in-flight sends finish or ctx is done
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MaskAddress keeps the first character of the local part and the domain,
// e.g. "alice@x.com" becomes "a***@x.com"
func MaskAddress(addr string) string {
	at := strings.LastIndex(addr, "@")
	if at <= 0 {
		return "***"
	}
	return addr[:1] + "***" + addr[at:]
}
