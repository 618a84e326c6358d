package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"syncchat.backend/internal/domain/entities"
	domainerrors "syncchat.backend/internal/domain/errors"
	"syncchat.backend/internal/interfaces/http/middleware"
	"syncchat.backend/internal/interfaces/http/response"
	"syncchat.backend/pkg/utils"
)

// ProfileImageField is the multipart field carrying an avatar
const ProfileImageField = "profile-image"

// ProfileService is the profile logic the profile endpoints need
type ProfileService interface {
	UpdateProfile(ctx context.Context, userID uuid.UUID, input *entities.UpdateProfileInput) (*entities.User, error)
	AddProfileImage(ctx context.Context, userID uuid.UUID, file *entities.UploadedFile) (string, error)
	RemoveProfileImage(ctx context.Context, userID uuid.UUID) error
}

// ProfileHandler handles profile endpoints
type ProfileHandler struct {
	profileService ProfileService
	maxUploadBytes int64
}

// NewProfileHandler creates a profile handler. Uploads above maxUploadBytes
// are refused; zero means no limit.
func NewProfileHandler(profileService ProfileService, maxUploadBytes int64) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		maxUploadBytes: maxUploadBytes,
	}
}

// UpdateProfile handles profile edits
// POST /api/auth/update-profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.ErrUnauthenticated)
		return
	}

	var input entities.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("Firstname, lastname and color are required"))
		return
	}

	user, err := h.profileService.UpdateProfile(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, profileJSON(user))
}

// AddProfileImage handles avatar uploads
// POST /api/auth/add-profile-image
func (h *ProfileHandler) AddProfileImage(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.ErrUnauthenticated)
		return
	}

	if h.maxUploadBytes > 0 {
		// multipart overhead is small next to the image
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+64<<10)
	}

	header, err := c.FormFile(ProfileImageField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, domainerrors.BadRequest("File is too large"))
			return
		}
		response.Error(c, domainerrors.BadRequest("File is required"))
		return
	}
	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		response.Error(c, domainerrors.BadRequest("File is too large"))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	// the client's filename and Content-Type are not trusted
	contentType, _, content, err := utils.SniffImage(file)
	if err != nil {
		if errors.Is(err, utils.ErrUnsupportedImage) {
			err = domainerrors.ErrUnsupportedImage
		}
		response.Error(c, err)
		return
	}

	image, err := h.profileService.AddProfileImage(c.Request.Context(), userID, &entities.UploadedFile{
		Name:        header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Content:     content,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"image": image,
	})
}

// RemoveProfileImage handles avatar removal
// DELETE /api/auth/remove-profile-image
func (h *ProfileHandler) RemoveProfileImage(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.ErrUnauthenticated)
		return
	}

	if err := h.profileService.RemoveProfileImage(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Profile image removed successfully",
	})
}
