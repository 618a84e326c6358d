package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrBadRequest         = errors.New("bad request")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidCode        = errors.New("incorrect verification code")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrCodeExpired        = errors.New("verification code expired")
	ErrTooManyRequests    = errors.New("too many requests")
	ErrUnsupportedImage   = errors.New("unsupported image type")
)

// Error codes returned to clients
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidCode        = "INVALID_VERIFICATION_CODE"
	CodeAlreadyVerified    = "ALREADY_VERIFIED"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeNotFound           = "NOT_FOUND"
	CodeDuplicateAccount   = "DUPLICATE_ACCOUNT"
	CodeCodeExpired        = "VERIFICATION_CODE_EXPIRED"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeUnsupportedImage   = "UNSUPPORTED_IMAGE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeBadRequest, message, ErrBadRequest)
}

func Unauthenticated(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthenticated, message, ErrUnauthenticated)
}

func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeDuplicateAccount, message, ErrAlreadyExists)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "Internal Server Error", err)
}

// FromError maps any error onto the closed set of client-facing errors.
// Errors outside the taxonomy become internal errors.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewAppError(http.StatusBadRequest, CodeInvalidCredentials, "Password is incorrect", err)
	case errors.Is(err, ErrInvalidCode):
		return NewAppError(http.StatusBadRequest, CodeInvalidCode, "Incorrect verification code", err)
	case errors.Is(err, ErrAlreadyVerified):
		return NewAppError(http.StatusBadRequest, CodeAlreadyVerified, "Email is already verified", err)
	case errors.Is(err, ErrUnsupportedImage):
		return NewAppError(http.StatusBadRequest, CodeUnsupportedImage, "Only png, jpeg, gif or webp images are allowed", err)
	case errors.Is(err, ErrBadRequest):
		return NewAppError(http.StatusBadRequest, CodeBadRequest, "Bad request", err)
	case errors.Is(err, ErrUnauthenticated):
		return NewAppError(http.StatusUnauthorized, CodeUnauthenticated, "Unauthenticated", err)
	case errors.Is(err, ErrNotFound):
		return NewAppError(http.StatusNotFound, CodeNotFound, "Not found", err)
	case errors.Is(err, ErrAlreadyExists):
		return NewAppError(http.StatusConflict, CodeDuplicateAccount, "Duplicate email", err)
	case errors.Is(err, ErrCodeExpired):
		return NewAppError(http.StatusRequestTimeout, CodeCodeExpired, "Verification code expired", err)
	case errors.Is(err, ErrTooManyRequests):
		return NewAppError(http.StatusTooManyRequests, CodeTooManyRequests, "Too many requests, try again later", err)
	default:
		return InternalError(err)
	}
}
