package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"syncchat.backend/internal/domain/entities"
)

// UserRepository defines user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update entities.ProfileUpdate) (*entities.User, error)
	UpdateImage(ctx context.Context, id uuid.UUID, image null.String) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// SetVerificationCode replaces any pending code for the user.
	SetVerificationCode(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error
	// ConsumeVerificationCode marks the user verified and clears the code,
	// but only while the stored code still equals code. Returns
	// ErrInvalidCode when nothing matched.
	ConsumeVerificationCode(ctx context.Context, id uuid.UUID, code string) error
}
