package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"syncchat.backend/internal/config"
	"syncchat.backend/internal/domain/entities"
	domainerrors "syncchat.backend/internal/domain/errors"
	"syncchat.backend/internal/interfaces/http/middleware"
	"syncchat.backend/internal/interfaces/http/response"
)

// AuthService is the account logic the auth endpoints need
type AuthService interface {
	Signup(ctx context.Context, input *entities.SignupInput) (*entities.AuthResponse, error)
	Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error)
	GetUserInfo(ctx context.Context, userID uuid.UUID) (*entities.User, error)
	VerifyEmail(ctx context.Context, userID uuid.UUID, input *entities.VerifyEmailInput) error
	ResendVerification(ctx context.Context, userID uuid.UUID) error
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService AuthService
	cookie      config.CookieConfig
	now         func() time.Time
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, cookie config.CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = middleware.DefaultCookieName
	}
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
		now:         time.Now,
	}
}

// Signup handles user registration
// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var input entities.SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("Email and password is required"))
		return
	}

	authResponse, err := h.authService.Signup(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookie(c, authResponse.Token, authResponse.ExpiresAt)
	response.Success(c, http.StatusCreated, gin.H{
		"user": gin.H{
			"id":           authResponse.User.ID,
			"email":        authResponse.User.Email,
			"profileSetup": authResponse.User.ProfileSetup,
		},
	})
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input entities.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("Email and password is required"))
		return
	}

	authResponse, err := h.authService.Login(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookie(c, authResponse.Token, authResponse.ExpiresAt)
	user := authResponse.User
	response.Success(c, http.StatusOK, gin.H{
		"user": gin.H{
			"id":           user.ID,
			"email":        user.Email,
			"profileSetup": user.ProfileSetup,
			"firstName":    user.FirstName,
			"lastName":     user.LastName,
			"image":        user.Image,
			"color":        user.Color,
			"role":         user.Role,
			"verified":     user.Verified,
		},
	})
}

// GetUserInfo returns the session user's profile
// GET /api/auth/user-info
func (h *AuthHandler) GetUserInfo(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.ErrUnauthenticated)
		return
	}

	user, err := h.authService.GetUserInfo(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, profileJSON(user))
}

// VerifyEmail checks the code mailed at signup
// POST /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.ErrUnauthenticated)
		return
	}

	var input entities.VerifyEmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.ErrInvalidCode)
		return
	}

	if err := h.authService.VerifyEmail(c.Request.Context(), userID, &input); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Registration successfully",
	})
}

// ResendVerification mails a fresh code
// POST /api/auth/resend-verification
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.ErrUnauthenticated)
		return
	}

	if err := h.authService.ResendVerification(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Verification code sent",
	})
}

// Logout clears the session cookie. Tokens are stateless, so a copied
// token stays valid until it expires.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", h.cookie.Domain, h.cookie.Secure, true)

	response.Success(c, http.StatusOK, gin.H{
		"message": "Logout successful",
	})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(expiresAt.Sub(h.now()).Round(time.Second).Seconds())
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(h.cookie.Name, token, maxAge, "/", h.cookie.Domain, h.cookie.Secure, true)
}

func profileJSON(user *entities.User) gin.H {
	return gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"profileSetup": user.ProfileSetup,
		"firstName":    user.FirstName,
		"lastName":     user.LastName,
		"image":        user.Image,
		"color":        user.Color,
		"verified":     user.Verified,
	}
}
