package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"syncchat.backend/internal/domain/entities"
	domainerrors "syncchat.backend/internal/domain/errors"
	"syncchat.backend/internal/infrastructure/models"
	"syncchat.backend/pkg/utils"
)

// UserRepository implements user data operations
type UserRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	if user.ID == uuid.Nil {
		user.ID = utils.GenerateUUIDv7()
	}
	if user.Role == "" {
		user.Role = entities.UserRoleUser
	}
	now := r.now()
	user.CreatedAt = now
	user.UpdatedAt = now

	m := toModel(user)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var m models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toEntity(&m), nil
}

// GetByEmail gets a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var m models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toEntity(&m), nil
}

// UpdateProfile writes the profile fields, flags the profile as set up and
// returns the fresh row
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update entities.ProfileUpdate) (*entities.User, error) {
	updates := map[string]interface{}{
		"first_name":    update.FirstName,
		"last_name":     update.LastName,
		"color":         update.Color,
		"profile_setup": true,
		"updated_at":    r.now(),
	}
	if update.PasswordHash.Valid {
		updates["password_hash"] = update.PasswordHash.String
	}

	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domainerrors.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// UpdateImage sets or clears the avatar storage key
func (r *UserRepository) UpdateImage(ctx context.Context, id uuid.UUID, image null.String) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"image":      image.Ptr(),
		"updated_at": r.now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// SetVerificationCode stores a fresh code, overwriting any pending one
func (r *UserRepository) SetVerificationCode(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"verify_code":     code,
		"code_expires_at": expiresAt,
		"updated_at":      r.now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ConsumeVerificationCode verifies the user and clears the code in one
// conditional update, so only one of two racing requests can succeed
func (r *UserRepository) ConsumeVerificationCode(ctx context.Context, id uuid.UUID, code string) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND verify_code = ?", id, code).
		Updates(map[string]interface{}{
			"verified":        true,
			"verify_code":     nil,
			"code_expires_at": nil,
			"updated_at":      r.now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInvalidCode
	}
	return nil
}

// SoftDelete soft deletes a user
func (r *UserRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func toModel(u *entities.User) *models.User {
	return &models.User{
		ID:            u.ID,
		Email:         u.Email,
		PasswordHash:  u.PasswordHash,
		Role:          string(u.Role),
		Verified:      u.Verified,
		VerifyCode:    u.VerifyCode.Ptr(),
		CodeExpiresAt: u.CodeExpiresAt.Ptr(),
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Color:         u.Color,
		Image:         u.Image.Ptr(),
		ProfileSetup:  u.ProfileSetup,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func toEntity(m *models.User) *entities.User {
	return &entities.User{
		ID:            m.ID,
		Email:         m.Email,
		PasswordHash:  m.PasswordHash,
		Role:          entities.UserRole(m.Role),
		Verified:      m.Verified,
		VerifyCode:    null.StringFromPtr(m.VerifyCode),
		CodeExpiresAt: null.TimeFromPtr(m.CodeExpiresAt),
		FirstName:     m.FirstName,
		LastName:      m.LastName,
		Color:         m.Color,
		Image:         null.StringFromPtr(m.Image),
		ProfileSetup:  m.ProfileSetup,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
