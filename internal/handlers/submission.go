package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/infinito-iitp/ca-portal-api/internal/dto"
	apierrors "github.com/infinito-iitp/ca-portal-api/internal/errors"
	"github.com/infinito-iitp/ca-portal-api/internal/middleware"
	"github.com/infinito-iitp/ca-portal-api/internal/services"
	"github.com/infinito-iitp/ca-portal-api/internal/validation"
)

type SubmissionHandler struct {
	submissionService *services.SubmissionService
}

func NewSubmissionHandler(submissionService *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
	}
}

// Submit records the caller's proof for the task loaded by RequireTaskAccess.
func (h *SubmissionHandler) Submit(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	type SubmitRequest struct {
		ProofURLs []string `json:"proofURLs" binding:"required,min=1,dive,httpurl"`
		Comments  string   `json:"comments" binding:"max=2000"`
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, validation.Message(err))
		return
	}

	sub, err := h.submissionService.Submit(c.Request.Context(), services.SubmitInput{
		TaskID:    task.ID,
		CAID:      userID,
		ProofURLs: req.ProofURLs,
		Comments:  req.Comments,
	})
	if err != nil {
		respondSubmissionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SubmissionResponse{
		Success:    true,
		Message:    "Submission received",
		Submission: dto.ToSubmissionDTO(*sub),
	})
}

// ListMine returns the caller's submissions.
func (h *SubmissionHandler) ListMine(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	subs, err := h.submissionService.ListMine(c.Request.Context(), userID)
	if err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SubmissionListResponse{
		Success:     true,
		Submissions: dto.ToSubmissionDTOs(subs),
	})
}

// Review awards points for a submission.
func (h *SubmissionHandler) Review(c *gin.Context) {
	reviewerID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	submissionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid submission ID")
		return
	}

	type ReviewRequest struct {
		PointsAwarded *int64 `json:"pointsAwarded" binding:"required,gte=0"`
		Comments      string `json:"comments" binding:"max=2000"`
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, validation.Message(err))
		return
	}

	sub, err := h.submissionService.Review(c.Request.Context(), services.ReviewInput{
		SubmissionID: submissionID,
		ReviewerID:   reviewerID,
		Points:       *req.PointsAwarded,
		Comments:     req.Comments,
	})
	if err != nil {
		respondSubmissionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SubmissionResponse{
		Success:    true,
		Message:    "Submission reviewed successfully",
		Submission: dto.ToSubmissionDTO(*sub),
	})
}

func respondSubmissionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProofRequired):
		apierrors.BadRequest(c, "At least one proof URL is required")
	case errors.Is(err, services.ErrInvalidProofURL):
		apierrors.BadRequest(c, "Proof URLs must be valid http(s) URLs")
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrSubmissionNotFound):
		apierrors.NotFound(c, "Submission not found")
	case errors.Is(err, services.ErrSubmissionAlreadyReviewed):
		apierrors.InvalidOperation(c, "Submission already reviewed")
	case errors.Is(err, services.ErrPointsOutOfRange):
		apierrors.BadRequest(c, "Points awarded "+strings.TrimPrefix(err.Error(), services.ErrPointsOutOfRange.Error()+": "))
	default:
		internalError(c, err)
	}
}
