package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"syncchat.backend/internal/domain/entities"
	domainerrors "syncchat.backend/internal/domain/errors"
	"syncchat.backend/internal/domain/repositories"
	"syncchat.backend/internal/domain/services"
	"syncchat.backend/pkg/crypto"
	"syncchat.backend/pkg/logger"
	"syncchat.backend/pkg/metrics"
)

const (
	// VerificationSubject is the subject line of the code email
	VerificationSubject = "Verify Email"
	// DefaultCodeTTL is how long an issued code stays valid
	DefaultCodeTTL = time.Hour
)

// VerificationBody renders the HTML body carrying code
func VerificationBody(code string) string {
	return fmt.Sprintf("<p>Your code is %s</p>", code)
}

// VerificationManager issues and checks email verification codes
type VerificationManager struct {
	users        repositories.UserRepository
	mail         services.MailDispatcher
	ttl          time.Duration
	now          func() time.Time
	generateCode func() (string, error)
}

// NewVerificationManager creates a manager whose codes live for ttl
func NewVerificationManager(users repositories.UserRepository, mail services.MailDispatcher, ttl time.Duration) *VerificationManager {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	return &VerificationManager{
		users:        users,
		mail:         mail,
		ttl:          ttl,
		now:          time.Now,
		generateCode: crypto.GenerateVerificationCode,
	}
}

// WithClock returns a copy of the manager reading time from now
func (m *VerificationManager) WithClock(now func() time.Time) *VerificationManager {
	cp := *m
	cp.now = now
	return &cp
}

// Prepare puts a fresh code and its expiry on user without persisting it.
// Signup uses it so the row is inserted with the code in one statement.
func (m *VerificationManager) Prepare(user *entities.User) error {
	code, err := m.generateCode()
	if err != nil {
		return err
	}
	user.VerifyCode = null.StringFrom(code)
	user.CodeExpiresAt = null.TimeFrom(m.now().Add(m.ttl))
	return nil
}

// Send hands the user's pending code to the mail dispatcher
func (m *VerificationManager) Send(ctx context.Context, user *entities.User) {
	if !user.HasPendingCode() {
		return
	}
	if _, ok := ctx.Value(logger.UserIDKey).(string); !ok {
		ctx = context.WithValue(ctx, logger.UserIDKey, user.ID.String())
	}
	m.mail.Dispatch(ctx, user.Email, VerificationSubject, VerificationBody(user.VerifyCode.String))
}

// Issue generates a new code, overwrites the stored one and mails it.
// Delivery happens in the background; only persistence errors are returned.
func (m *VerificationManager) Issue(ctx context.Context, user *entities.User) error {
	if err := m.Prepare(user); err != nil {
		return err
	}
	if err := m.users.SetVerificationCode(ctx, user.ID, user.VerifyCode.String, user.CodeExpiresAt.Time); err != nil {
		return err
	}
	m.Send(ctx, user)
	return nil
}

// Verify accepts code for userID when it equals the stored code and has not
// expired. A successful call clears the code, so each code verifies once.
func (m *VerificationManager) Verify(ctx context.Context, userID uuid.UUID, code string) error {
	err := m.verify(ctx, userID, code)
	metrics.Auth("verify", resultLabel(err))
	return err
}

func (m *VerificationManager) verify(ctx context.Context, userID uuid.UUID, code string) error {
	if userID == uuid.Nil {
		return domainerrors.ErrUnauthenticated
	}

	user, err := m.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.ErrUnauthenticated
		}
		return err
	}

	if !user.HasPendingCode() || code != user.VerifyCode.String {
		return domainerrors.ErrInvalidCode
	}

	if m.now().After(user.CodeExpiresAt.Time) {
		return domainerrors.ErrCodeExpired
	}

	if err := m.users.ConsumeVerificationCode(ctx, userID, code); err != nil {
		return err
	}

	logger.Info(ctx, "Email verified", zap.String("user_id", userID.String()))
	return nil
}
