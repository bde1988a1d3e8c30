package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/infinito-iitp/ca-portal-api/internal/metrics"
	"github.com/infinito-iitp/ca-portal-api/internal/models"
	"github.com/infinito-iitp/ca-portal-api/internal/repository"
	"github.com/infinito-iitp/ca-portal-api/internal/validation"
	"gorm.io/gorm"
)

var (
	ErrProofRequired             = errors.New("at least one proof URL is required")
	ErrInvalidProofURL           = errors.New("proof URL must be a valid http(s) URL")
	ErrSubmissionNotFound        = errors.New("submission not found")
	ErrSubmissionAlreadyReviewed = errors.New("submission already reviewed")
	ErrPointsOutOfRange          = errors.New("points awarded out of range")
)

// SubmissionService handles proof submissions for tasks and their review.
type SubmissionService struct {
	subs    repository.SubmissionRepository
	tasks   repository.TaskRepository
	metrics *metrics.Metrics
	log     *slog.Logger
	now     func() time.Time
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(subs repository.SubmissionRepository, tasks repository.TaskRepository, m *metrics.Metrics, log *slog.Logger) *SubmissionService {
	return &SubmissionService{
		subs:    subs,
		tasks:   tasks,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// SubmitInput represents a CA's proof of completing a task.
type SubmitInput struct {
	TaskID    uint64
	CAID      uint64
	ProofURLs []string
	Comments  string
}

// Submit records proof of task completion.
func (s *SubmissionService) Submit(ctx context.Context, input SubmitInput) (*models.TaskSubmission, error) {
	if len(input.ProofURLs) == 0 {
		return nil, ErrProofRequired
	}
	urls := make([]string, len(input.ProofURLs))
	for i, u := range input.ProofURLs {
		u = strings.TrimSpace(u)
		if !validation.HTTPURL(u) {
			return nil, fmt.Errorf("%w: index %d", ErrInvalidProofURL, i)
		}
		urls[i] = u
	}

	if _, err := s.tasks.FindByID(ctx, input.TaskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	sub := &models.TaskSubmission{
		TaskID:      input.TaskID,
		CAID:        input.CAID,
		SubmittedAt: s.now(),
		ProofURLs:   urls,
		CommentsCA:  cleanText(input.Comments),
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	s.log.InfoContext(ctx, "task submission received", "submission_id", sub.ID, "task_id", sub.TaskID, "ca_id", sub.CAID)
	return sub, nil
}

// ListMine returns the CA's submissions, newest first.
func (s *SubmissionService) ListMine(ctx context.Context, caID uint64) ([]models.TaskSubmission, error) {
	subs, err := s.subs.ListByCA(ctx, caID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}

// ReviewInput represents a moderator's review of a submission.
type ReviewInput struct {
	SubmissionID uint64
	ReviewerID   uint64
	Points       int64
	Comments     string
}

// Review awards points once and credits them to the submitting CA.
func (s *SubmissionService) Review(ctx context.Context, input ReviewInput) (*models.TaskSubmission, error) {
	sub, err := s.subs.FindByID(ctx, input.SubmissionID, "Task")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to find submission: %w", err)
	}
	if sub.PointsAwarded != nil {
		return nil, ErrSubmissionAlreadyReviewed
	}
	if input.Points < 0 || input.Points > sub.Task.MaxPoints {
		return nil, fmt.Errorf("%w: must be between 0 and %d", ErrPointsOutOfRange, sub.Task.MaxPoints)
	}

	err = s.subs.Review(ctx, repository.SubmissionReview{
		SubmissionID: sub.ID,
		CAID:         sub.CAID,
		ReviewerID:   input.ReviewerID,
		Points:       input.Points,
		Comments:     cleanText(input.Comments),
		ReviewedAt:   s.now().UTC(),
	})
	if errors.Is(err, repository.ErrStaleState) {
		return nil, ErrSubmissionAlreadyReviewed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to review submission: %w", err)
	}

	s.metrics.SubmissionReviewed()
	s.log.InfoContext(ctx, "task submission reviewed",
		"submission_id", sub.ID,
		"ca_id", sub.CAID,
		"reviewer_id", input.ReviewerID,
		"points", input.Points,
	)

	return s.subs.FindByID(ctx, sub.ID, "Task")
}
