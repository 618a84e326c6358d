package entities

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// UserRole represents user roles
type UserRole string

const (
	UserRoleUser UserRole = "user"
)

// User represents a user entity
type User struct {
	ID            uuid.UUID   `json:"id"`
	Email         string      `json:"email"`
	PasswordHash  string      `json:"-"`
	Role          UserRole    `json:"role"`
	Verified      bool        `json:"verified"`
	VerifyCode    null.String `json:"-"`
	CodeExpiresAt null.Time   `json:"-"`
	FirstName     string      `json:"firstName"`
	LastName      string      `json:"lastName"`
	Color         int         `json:"color"`
	Image         null.String `json:"image"`
	ProfileSetup  bool        `json:"profileSetup"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// HasPendingCode reports whether a code and its expiry are stored
func (u *User) HasPendingCode() bool {
	return u.VerifyCode.Valid && u.CodeExpiresAt.Valid
}

// SignupInput represents input for creating a user
type SignupInput struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginInput represents input for user login
type LoginInput struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// VerifyEmailInput carries the code typed in by the user
type VerifyEmailInput struct {
	Code string `json:"code" form:"code"`
}

// UpdateProfileInput represents the editable profile fields.
// NewPassword is optional; when set the password hash is replaced.
type UpdateProfileInput struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Color       int    `json:"color"`
	NewPassword string `json:"newPassword"`
}

// ProfileUpdate is the set of columns written by a profile update
type ProfileUpdate struct {
	FirstName    string
	LastName     string
	Color        int
	PasswordHash null.String
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
	User      *User     `json:"user"`
}

// UploadedFile is an avatar upload as received from the client
type UploadedFile struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}
