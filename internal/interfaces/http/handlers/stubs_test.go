package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"syncchat.backend/internal/domain/entities"
	"syncchat.backend/internal/interfaces/http/middleware"
)

type authServiceStub struct {
	signupFn      func(ctx context.Context, input *entities.SignupInput) (*entities.AuthResponse, error)
	loginFn       func(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error)
	getUserInfoFn func(ctx context.Context, userID uuid.UUID) (*entities.User, error)
	verifyEmailFn func(ctx context.Context, userID uuid.UUID, input *entities.VerifyEmailInput) error
	resendFn      func(ctx context.Context, userID uuid.UUID) error
}

func (s authServiceStub) Signup(ctx context.Context, input *entities.SignupInput) (*entities.AuthResponse, error) {
	return s.signupFn(ctx, input)
}
func (s authServiceStub) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	return s.loginFn(ctx, input)
}
func (s authServiceStub) GetUserInfo(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	return s.getUserInfoFn(ctx, userID)
}
func (s authServiceStub) VerifyEmail(ctx context.Context, userID uuid.UUID, input *entities.VerifyEmailInput) error {
	return s.verifyEmailFn(ctx, userID, input)
}
func (s authServiceStub) ResendVerification(ctx context.Context, userID uuid.UUID) error {
	return s.resendFn(ctx, userID)
}

type profileServiceStub struct {
	updateFn      func(ctx context.Context, userID uuid.UUID, input *entities.UpdateProfileInput) (*entities.User, error)
	addImageFn    func(ctx context.Context, userID uuid.UUID, file *entities.UploadedFile) (string, error)
	removeImageFn func(ctx context.Context, userID uuid.UUID) error
}

func (s profileServiceStub) UpdateProfile(ctx context.Context, userID uuid.UUID, input *entities.UpdateProfileInput) (*entities.User, error) {
	return s.updateFn(ctx, userID, input)
}
func (s profileServiceStub) AddProfileImage(ctx context.Context, userID uuid.UUID, file *entities.UploadedFile) (string, error) {
	return s.addImageFn(ctx, userID, file)
}
func (s profileServiceStub) RemoveProfileImage(ctx context.Context, userID uuid.UUID) error {
	return s.removeImageFn(ctx, userID)
}

// withUser mimics AuthMiddleware for handler-level tests
func withUser(id uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, id)
		c.Next()
	}
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}
