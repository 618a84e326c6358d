package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	domainerrors "syncchat.backend/internal/domain/errors"
	"syncchat.backend/internal/interfaces/http/response"
	"syncchat.backend/pkg/jwt"
	"syncchat.backend/pkg/logger"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// DefaultCookieName carries the session token for browsers
	DefaultCookieName = "jwt"
	// UserIDKey is the context key for user ID
	UserIDKey = "userId"
	// UserEmailKey is the context key for user email
	UserEmailKey = "userEmail"
)

// TokenValidator checks a session token and returns its claims
type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

// AuthMiddleware admits requests carrying a valid session token, read from
// the session cookie or, for non-browser clients, a Bearer header
func AuthMiddleware(validator TokenValidator, cookieName string) gin.HandlerFunc {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return func(c *gin.Context) {
		token := extractToken(c, cookieName)
		if token == "" {
			logger.Debug(c.Request.Context(), "Missing session token", zap.String("path", c.Request.URL.Path))
			abortUnauthenticated(c, "You are not authenticated")
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			logger.Debug(c.Request.Context(), "Rejected session token", zap.String("path", c.Request.URL.Path), zap.Error(err))
			if errors.Is(err, jwt.ErrExpiredToken) {
				abortUnauthenticated(c, "Token has expired")
				return
			}
			abortUnauthenticated(c, "Token is not valid")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)

		ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, claims.UserID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func extractToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader(AuthorizationHeader)
	if strings.HasPrefix(header, BearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	}
	return ""
}

func abortUnauthenticated(c *gin.Context, message string) {
	response.Error(c, domainerrors.Unauthenticated(message))
	c.Abort()
}

// GetUserID gets the user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}

// GetUserEmail gets the user email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(UserEmailKey)
	if !exists {
		return "", false
	}
	s, ok := email.(string)
	return s, ok
}
