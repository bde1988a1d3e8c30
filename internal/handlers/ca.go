package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/infinito-iitp/ca-portal-api/internal/dto"
	apierrors "github.com/infinito-iitp/ca-portal-api/internal/errors"
	"github.com/infinito-iitp/ca-portal-api/internal/middleware"
	"github.com/infinito-iitp/ca-portal-api/internal/models"
	"github.com/infinito-iitp/ca-portal-api/internal/services"
	"github.com/infinito-iitp/ca-portal-api/internal/utils"
	"github.com/infinito-iitp/ca-portal-api/internal/validation"
)

type CAHandler struct {
	caService *services.CAService
}

func NewCAHandler(caService *services.CAService) *CAHandler {
	return &CAHandler{
		caService: caService,
	}
}

// Apply submits the caller's CA application.
func (h *CAHandler) Apply(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type ApplyRequest struct {
		ApplicationStatement string `json:"applicationStatement"`
	}

	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, validation.Message(err))
		return
	}

	app, err := h.caService.Apply(c.Request.Context(), userID, req.ApplicationStatement)
	if err != nil {
		respondCAError(c, err)
		return
	}

	msg := "CA application submitted successfully"
	c.JSON(http.StatusCreated, dto.CAApplicationResponse{
		Success:     true,
		Msg:         msg,
		Message:     msg,
		Application: dto.ToCAApplicationDTO(*app),
	})
}

// GetMine returns the caller's own application.
func (h *CAHandler) GetMine(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	app, err := h.caService.GetMine(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrApplicationNotFound) {
			apierrors.NotFound(c, "No CA application found for this user.")
			return
		}
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CAApplicationResponse{
		Success:     true,
		Application: dto.ToCAApplicationDTO(*app),
	})
}

// ListApplications returns applications, optionally filtered by ?status.
func (h *CAHandler) ListApplications(c *gin.Context) {
	params := utils.ParsePage(c, utils.ApplicationPages)

	apps, total, err := h.caService.ListApplications(c.Request.Context(), c.Query("status"), params)
	if err != nil {
		respondCAError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CAApplicationListResponse{
		Success:      true,
		Applications: dto.ToCAApplicationDTOs(apps),
		Pagination:   params.Meta(total),
	})
}

// Accept approves a pending application and promotes the applicant.
func (h *CAHandler) Accept(c *gin.Context) {
	h.decide(c, h.caService.Accept, "Application accepted successfully")
}

// Reject declines a pending application.
func (h *CAHandler) Reject(c *gin.Context) {
	h.decide(c, h.caService.Reject, "Application rejected successfully")
}

type decision func(ctx context.Context, applicationID, reviewerID uint64) (*models.CAApplication, error)

func (h *CAHandler) decide(c *gin.Context, fn decision, msg string) {
	reviewerID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	applicationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid application ID")
		return
	}

	app, err := fn(c.Request.Context(), applicationID, reviewerID)
	if err != nil {
		respondCAError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CAApplicationResponse{
		Success:     true,
		Msg:         msg,
		Message:     msg,
		Application: dto.ToCAApplicationDTO(*app),
	})
}

func respondCAError(c *gin.Context, err error) {
	var reviewed *services.ApplicationReviewedError
	switch {
	case errors.Is(err, services.ErrStatementRequired):
		apierrors.BadRequest(c, "Application statement is required")
	case errors.Is(err, services.ErrAlreadyApplied):
		apierrors.InvalidOperation(c, "You have already applied for CA")
	case errors.Is(err, services.ErrApplicationNotFound):
		apierrors.NotFound(c, "CA application not found")
	case errors.As(err, &reviewed):
		apierrors.InvalidOperation(c, "Application already "+string(reviewed.Status))
	case errors.Is(err, services.ErrApplicationAlreadyReviewed):
		apierrors.InvalidOperation(c, "Application already reviewed")
	case errors.Is(err, services.ErrInvalidApplicationStatus):
		apierrors.BadRequest(c, "Invalid application status")
	default:
		internalError(c, err)
	}
}
