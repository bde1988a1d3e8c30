package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/infinito-iitp/ca-portal-api/internal/constants"
	"github.com/infinito-iitp/ca-portal-api/internal/dto"
	apierrors "github.com/infinito-iitp/ca-portal-api/internal/errors"
	"github.com/infinito-iitp/ca-portal-api/internal/services"
	"github.com/infinito-iitp/ca-portal-api/internal/validation"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates a new account with the user role.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Username    string `json:"username" binding:"required,min=3,max=50"`
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"required,min=6"`
		Fullname    string `json:"fullname" binding:"omitempty,min=2,max=50,alphaspace"`
		CollegeName string `json:"collegeName" binding:"omitempty,min=2,max=100"`
		RollNo      string `json:"rollNo" binding:"omitempty,min=1,max=20,alphanum"`
		IsIITPStud  bool   `json:"isIITPStud"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, validation.Message(err))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Fullname:    req.Fullname,
		CollegeName: req.CollegeName,
		RollNo:      req.RollNo,
		IsIITPStud:  req.IsIITPStud,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.UserResponse{
		Success: true,
		Message: "User registered successfully",
		User:    dto.ToUserDTO(*user),
	})
}

// Login authenticates a user and returns a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, validation.Message(err))
		return
	}

	result, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{
		Success:   true,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      dto.ToUserDTO(*result.User),
	})
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters long", constants.MinPasswordLength))
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.Conflict(c, "Username already exists")
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, "Email already registered")
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, "Invalid username or password")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	default:
		internalError(c, err)
	}
}

// internalError records err for the request logger and hides it from the
// client.
func internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	apierrors.InternalError(c, "")
}
