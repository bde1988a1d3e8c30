package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/infinito-iitp/ca-portal-api/internal/dto"
	apierrors "github.com/infinito-iitp/ca-portal-api/internal/errors"
	"github.com/infinito-iitp/ca-portal-api/internal/middleware"
	"github.com/infinito-iitp/ca-portal-api/internal/services"
	"github.com/infinito-iitp/ca-portal-api/internal/validation"
)

// ProfileHandler serves the caller's own account.
type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

// GetProfile returns the caller's profile.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	user, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserResponse{
		Success: true,
		User:    dto.ToUserDTO(*user),
	})
}

// ChangePassword replaces the caller's password.
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type ChangePasswordRequest struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required,min=6,strongpassword"`
		ConfirmPassword string `json:"confirmPassword" binding:"eqfield=NewPassword"`
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, validation.Message(err))
		return
	}

	err := h.profileService.ChangePassword(c.Request.Context(), userID, services.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		respondProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMessageResponse("Password changed successfully"))
}

// UpdateProfile merges the provided fields into the caller's profile.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type UpdateProfileRequest struct {
		Fullname    *string  `json:"fullname" binding:"omitempty,min=2,max=50,alphaspace"`
		CollegeName *string  `json:"collegeName" binding:"omitempty,min=2,max=100"`
		RollNo      *string  `json:"rollNo" binding:"omitempty,min=1,max=20,alphanum"`
		PORs        []string `json:"PORs" binding:"omitempty,max=10,dive,por"`
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, validation.Message(err))
		return
	}

	user, err := h.profileService.UpdateProfile(c.Request.Context(), userID, services.UpdateProfileInput{
		Fullname:    req.Fullname,
		CollegeName: req.CollegeName,
		RollNo:      req.RollNo,
		PORs:        req.PORs,
	})
	if err != nil {
		respondProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserResponse{
		Success: true,
		Message: "Profile updated successfully",
		User:    dto.ToUserDTO(*user),
	})
}

func respondProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, "New password must be at least 6 characters long")
	case errors.Is(err, services.ErrPasswordMismatch):
		apierrors.BadRequest(c, "Password confirmation does not match new password")
	case errors.Is(err, services.ErrIncorrectPassword):
		apierrors.BadRequest(c, "Current password is incorrect")
	case errors.Is(err, services.ErrSamePassword):
		apierrors.BadRequest(c, "New password must be different from current password")
	case errors.Is(err, services.ErrTooManyPORs):
		apierrors.BadRequest(c, "Cannot have more than 10 PORs")
	default:
		internalError(c, err)
	}
}
