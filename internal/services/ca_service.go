package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/infinito-iitp/ca-portal-api/internal/metrics"
	"github.com/infinito-iitp/ca-portal-api/internal/models"
	"github.com/infinito-iitp/ca-portal-api/internal/repository"
	"github.com/infinito-iitp/ca-portal-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrStatementRequired          = errors.New("application statement is required")
	ErrAlreadyApplied             = errors.New("already applied for CA")
	ErrApplicationNotFound        = errors.New("ca application not found")
	ErrApplicationAlreadyReviewed = errors.New("application already reviewed")
	ErrInvalidApplicationStatus   = errors.New("invalid application status")
)

// ApplicationReviewedError reports the status an application was already in
// when a review was attempted.
type ApplicationReviewedError struct {
	Status models.ApplicationStatus
}

func (e *ApplicationReviewedError) Error() string {
	return fmt.Sprintf("application already %s", e.Status)
}

func (e *ApplicationReviewedError) Is(target error) bool {
	return target == ErrApplicationAlreadyReviewed
}

// CAService runs the campus ambassador application workflow.
type CAService struct {
	apps    repository.CAApplicationRepository
	metrics *metrics.Metrics
	log     *slog.Logger
	now     func() time.Time
}

// NewCAService creates a new CAService.
func NewCAService(apps repository.CAApplicationRepository, m *metrics.Metrics, log *slog.Logger) *CAService {
	return &CAService{
		apps:    apps,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// Apply files a pending application for userID.
func (s *CAService) Apply(ctx context.Context, userID uint64, statement string) (*models.CAApplication, error) {
	statement = cleanText(statement)
	if statement == "" {
		return nil, ErrStatementRequired
	}

	if _, err := s.apps.FindByUserID(ctx, userID); err == nil {
		return nil, ErrAlreadyApplied
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing application: %w", err)
	}

	app := &models.CAApplication{
		UserID:               userID,
		ApplicationStatement: statement,
		ApplicationDate:      s.now(),
		Status:               models.ApplicationPending,
	}
	if err := s.apps.Create(ctx, app); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyApplied
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	s.log.InfoContext(ctx, "ca application submitted", "application_id", app.ID, "user_id", userID)
	return app, nil
}

// GetMine returns the caller's application.
func (s *CAService) GetMine(ctx context.Context, userID uint64) (*models.CAApplication, error) {
	app, err := s.apps.FindByUserID(ctx, userID, "ReviewedBy")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	return app, nil
}

// Accept approves a pending application and promotes the applicant to CA.
func (s *CAService) Accept(ctx context.Context, applicationID, reviewerID uint64) (*models.CAApplication, error) {
	role := models.RoleCA
	return s.decide(ctx, applicationID, reviewerID, models.ApplicationAccepted, &role)
}

// Reject declines a pending application.
func (s *CAService) Reject(ctx context.Context, applicationID, reviewerID uint64) (*models.CAApplication, error) {
	return s.decide(ctx, applicationID, reviewerID, models.ApplicationRejected, nil)
}

func (s *CAService) decide(ctx context.Context, applicationID, reviewerID uint64, status models.ApplicationStatus, promote *models.Role) (*models.CAApplication, error) {
	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	if app.Status != models.ApplicationPending {
		return nil, &ApplicationReviewedError{Status: app.Status}
	}

	err = s.apps.Review(ctx, repository.ReviewDecision{
		ApplicationID: app.ID,
		ApplicantID:   app.UserID,
		ReviewerID:    reviewerID,
		Status:        status,
		PromoteTo:     promote,
		ReviewedAt:    s.now().UTC(),
	})
	if errors.Is(err, repository.ErrStaleState) {
		// Another reviewer won; report what they decided.
		current, findErr := s.apps.FindByID(ctx, applicationID)
		if findErr != nil {
			return nil, fmt.Errorf("failed to reload application: %w", findErr)
		}
		return nil, &ApplicationReviewedError{Status: current.Status}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to review application: %w", err)
	}

	s.metrics.ApplicationDecided(string(status))
	s.log.InfoContext(ctx, "ca application reviewed",
		"application_id", app.ID,
		"user_id", app.UserID,
		"reviewer_id", reviewerID,
		"status", status,
	)

	return s.apps.FindByID(ctx, applicationID, "User", "ReviewedBy")
}

// ListApplications returns applications, optionally filtered by status,
// oldest first.
func (s *CAService) ListApplications(ctx context.Context, status string, params utils.PaginationParams) ([]models.CAApplication, int64, error) {
	filter := repository.ApplicationFilter{OldestFirst: true}
	if status != "" {
		st := models.ApplicationStatus(status)
		switch st {
		case models.ApplicationPending, models.ApplicationAccepted, models.ApplicationRejected:
			filter.Status = &st
		default:
			return nil, 0, ErrInvalidApplicationStatus
		}
	}

	apps, total, err := s.apps.List(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, total, nil
}
