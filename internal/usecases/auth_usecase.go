package usecases

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"syncchat.backend/internal/domain/entities"
	domainerrors "syncchat.backend/internal/domain/errors"
	"syncchat.backend/internal/domain/repositories"
	"syncchat.backend/internal/domain/services"
	"syncchat.backend/pkg/crypto"
	"syncchat.backend/pkg/jwt"
	"syncchat.backend/pkg/logger"
	"syncchat.backend/pkg/metrics"
	"syncchat.backend/pkg/utils"
)

const (
	// ProfileImagePrefix is the storage key prefix of avatars
	ProfileImagePrefix = "profiles/"

	maxImageNameLen = 100
)

// AuthUsecase handles account business logic
type AuthUsecase struct {
	userRepo       repositories.UserRepository
	verification   *VerificationManager
	jwtService     *jwt.JWTService
	storage        services.FileStorage
	throttle       services.Throttle
	resendCooldown time.Duration
	now            func() time.Time
}

// NewAuthUsecase creates a new auth usecase. throttle may be nil, in which
// case resending a code is never rate limited.
func NewAuthUsecase(
	userRepo repositories.UserRepository,
	verification *VerificationManager,
	jwtService *jwt.JWTService,
	storage services.FileStorage,
	throttle services.Throttle,
	resendCooldown time.Duration,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo:       userRepo,
		verification:   verification,
		jwtService:     jwtService,
		storage:        storage,
		throttle:       throttle,
		resendCooldown: resendCooldown,
		now:            time.Now,
	}
}

// Signup registers a new unverified user, mails a verification code and
// returns a session for it
func (u *AuthUsecase) Signup(ctx context.Context, input *entities.SignupInput) (*entities.AuthResponse, error) {
	resp, err := u.signup(ctx, input)
	metrics.Auth("signup", resultLabel(err))
	return resp, err
}

func (u *AuthUsecase) signup(ctx context.Context, input *entities.SignupInput) (*entities.AuthResponse, error) {
	if input == nil || input.Email == "" || input.Password == "" {
		return nil, domainerrors.BadRequest("Email and password is required")
	}

	// Check if email already exists
	_, err := u.userRepo.GetByEmail(ctx, input.Email)
	if err == nil {
		return nil, domainerrors.ErrAlreadyExists
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Email:        input.Email,
		PasswordHash: passwordHash,
		Role:         entities.UserRoleUser,
	}
	if err := u.verification.Prepare(user); err != nil {
		return nil, err
	}

	// the unique index still guards against a concurrent signup
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	u.verification.Send(ctx, user)

	return u.session(user)
}

// Login checks the password and returns a new session
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	resp, err := u.login(ctx, input)
	metrics.Auth("login", resultLabel(err))
	return resp, err
}

func (u *AuthUsecase) login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	if input == nil || input.Email == "" || input.Password == "" {
		return nil, domainerrors.BadRequest("Email and password is required")
	}

	user, err := u.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("User with the given email not found")
		}
		return nil, err
	}

	if !crypto.CheckPassword(input.Password, user.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}

	return u.session(user)
}

func (u *AuthUsecase) session(user *entities.User) (*entities.AuthResponse, error) {
	token, expiresAt, err := u.jwtService.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &entities.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// GetUserInfo returns the profile of the session user
func (u *AuthUsecase) GetUserInfo(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("User with the given id not found")
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile writes names and color, marks the profile as set up and
// optionally replaces the password
func (u *AuthUsecase) UpdateProfile(ctx context.Context, userID uuid.UUID, input *entities.UpdateProfileInput) (*entities.User, error) {
	if input == nil || input.FirstName == "" || input.LastName == "" {
		return nil, domainerrors.BadRequest("Firstname, lastname and color are required")
	}

	update := entities.ProfileUpdate{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Color:     input.Color,
	}
	if input.NewPassword != "" {
		hash, err := crypto.HashPassword(input.NewPassword)
		if err != nil {
			return nil, err
		}
		update.PasswordHash = null.StringFrom(hash)
	}

	user, err := u.userRepo.UpdateProfile(ctx, userID, update)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("User with the given id not found")
		}
		return nil, err
	}
	return user, nil
}

// AddProfileImage stores file as the user's avatar and returns its key.
// The content must sniff as png, jpeg, gif or webp. A previous avatar is
// removed once the new one is recorded.
func (u *AuthUsecase) AddProfileImage(ctx context.Context, userID uuid.UUID, file *entities.UploadedFile) (string, error) {
	if file == nil || file.Content == nil {
		return "", domainerrors.BadRequest("File is required")
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return "", domainerrors.NotFound("User with the given id not found")
		}
		return "", err
	}

	contentType, ext, body, err := utils.SniffImage(file.Content)
	if err != nil {
		if errors.Is(err, utils.ErrUnsupportedImage) {
			return "", domainerrors.ErrUnsupportedImage
		}
		return "", fmt.Errorf("read profile image: %w", err)
	}

	key := fmt.Sprintf("%s%d%s%s", ProfileImagePrefix, u.now().UnixMilli(), imageStem(file.Name), ext)
	if err := u.storage.Store(ctx, key, body, file.Size, contentType); err != nil {
		return "", fmt.Errorf("store profile image: %w", err)
	}

	if err := u.userRepo.UpdateImage(ctx, userID, null.StringFrom(key)); err != nil {
		u.removeQuietly(ctx, key)
		return "", err
	}

	if user.Image.Valid && user.Image.String != key {
		u.removeQuietly(ctx, user.Image.String)
	}
	return key, nil
}

// RemoveProfileImage deletes the user's avatar
func (u *AuthUsecase) RemoveProfileImage(ctx context.Context, userID uuid.UUID) error {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NotFound("user not found")
		}
		return err
	}
	if !user.Image.Valid {
		return domainerrors.NotFound("Profile image not found")
	}

	if err := u.storage.Remove(ctx, user.Image.String); err != nil {
		return fmt.Errorf("remove profile image: %w", err)
	}
	return u.userRepo.UpdateImage(ctx, userID, null.String{})
}

func (u *AuthUsecase) removeQuietly(ctx context.Context, key string) {
	if err := u.storage.Remove(ctx, key); err != nil {
		logger.Warn(ctx, "Failed to remove profile image", zap.String("key", key), zap.Error(err))
	}
}

// ResendVerification issues a fresh code to an unverified user, at most
// once per cooldown
func (u *AuthUsecase) ResendVerification(ctx context.Context, userID uuid.UUID) error {
	err := u.resendVerification(ctx, userID)
	metrics.Auth("resend", resultLabel(err))
	return err
}

func (u *AuthUsecase) resendVerification(ctx context.Context, userID uuid.UUID) error {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.ErrUnauthenticated
		}
		return err
	}
	if user.Verified {
		return domainerrors.ErrAlreadyVerified
	}

	if u.throttle != nil {
		ok, err := u.throttle.Allow(ctx, "verify-resend:"+userID.String(), u.resendCooldown)
		if err != nil {
			// redis being down must not lock users out of verification
			logger.Warn(ctx, "Resend throttle unavailable", zap.Error(err))
		} else if !ok {
			return domainerrors.ErrTooManyRequests
		}
	}

	return u.verification.Issue(ctx, user)
}

// VerifyEmail checks code for the session user
func (u *AuthUsecase) VerifyEmail(ctx context.Context, userID uuid.UUID, input *entities.VerifyEmailInput) error {
	if input == nil {
		input = &entities.VerifyEmailInput{}
	}
	return u.verification.Verify(ctx, userID, input.Code)
}

// SanitizeFileName keeps the base name of an upload and replaces anything
// outside [A-Za-z0-9._-] so it is safe inside a storage key
func SanitizeFileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		base = ""
	}
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	clean = strings.TrimLeft(clean, ".")
	if len(clean) > maxImageNameLen {
		clean = clean[len(clean)-maxImageNameLen:]
	}
	if clean == "" {
		return "image"
	}
	return clean
}

// imageStem is the sanitised upload name without its extension; the stored
// extension always comes from the detected type
func imageStem(name string) string {
	clean := SanitizeFileName(name)
	stem := strings.TrimSuffix(clean, filepath.Ext(clean))
	if stem == "" {
		return "image"
	}
	return stem
}

func resultLabel(err error) string {
	if err == nil {
		return "success"
	}
	if domainerrors.FromError(err).Status >= 500 {
		return "error"
	}
	return "rejected"
}
