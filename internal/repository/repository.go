package repository

import (
	"context"
	"errors"
	"time"

	"github.com/infinito-iitp/ca-portal-api/internal/models"
	"github.com/infinito-iitp/ca-portal-api/internal/utils"
)

// ErrStaleState is returned when a compare-and-set update matched no row
// because another writer changed it first.
var ErrStaleState = errors.New("repository: row no longer in expected state")

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// Count counts users matching the filter
	Count(ctx context.Context, filter UserFilter) (int64, error)

	// List lists users matching the filter in the requested order
	List(ctx context.Context, filter UserFilter, order UserOrder, limit int) ([]models.User, error)

	// UpdateProfile updates the given profile columns
	UpdateProfile(ctx context.Context, id uint64, fields map[string]interface{}) error

	// UpdatePassword replaces the stored password hash
	UpdatePassword(ctx context.Context, id uint64, hash string) error

	// RoleHistory lists the role changes of a user, oldest first
	RoleHistory(ctx context.Context, userID uint64) ([]models.RoleChange, error)
}

// UserFilter holds filtering options for counting and listing users
type UserFilter struct {
	Role         *models.Role
	IITPOnly     bool
	CreatedSince *time.Time
}

// UserOrder selects the sort order of List.
type UserOrder int

const (
	UserOrderNewest UserOrder = iota
	UserOrderScore
	UserOrderRecentlyUpdated
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks newest first with the assigner preloaded
	List(ctx context.Context, filter TaskFilter, params utils.PaginationParams) ([]models.Task, error)

	// Count counts tasks matching the filter
	Count(ctx context.Context, filter TaskFilter) (int64, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	AssignedByID *uint64
	DueAfter     *time.Time
}

// CAApplicationRepository defines the interface for CA application data access
type CAApplicationRepository interface {
	// Create creates a new application
	Create(ctx context.Context, app *models.CAApplication) error

	// FindByID finds an application by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.CAApplication, error)

	// FindByUserID finds the application of a user with optional preloading
	FindByUserID(ctx context.Context, userID uint64, preload ...string) (*models.CAApplication, error)

	// CountByStatus counts applications in a status
	CountByStatus(ctx context.Context, status models.ApplicationStatus) (int64, error)

	// List retrieves applications with the applicant preloaded
	List(ctx context.Context, filter ApplicationFilter, params utils.PaginationParams) ([]models.CAApplication, int64, error)

	// Review moves a pending application to a final status
	Review(ctx context.Context, decision ReviewDecision) error
}

// ApplicationFilter holds filtering options for listing applications
type ApplicationFilter struct {
	Status      *models.ApplicationStatus
	OldestFirst bool
}

// ReviewDecision describes a review of a pending application. When PromoteTo
// is set the applicant's role changes in the same transaction.
type ReviewDecision struct {
	ApplicationID uint64
	ApplicantID   uint64
	ReviewerID    uint64
	Status        models.ApplicationStatus
	PromoteTo     *models.Role
	ReviewedAt    time.Time
}

// SubmissionRepository defines the interface for task submission data access
type SubmissionRepository interface {
	// Create creates a new submission
	Create(ctx context.Context, sub *models.TaskSubmission) error

	// FindByID finds a submission by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.TaskSubmission, error)

	// ListByCA lists the submissions of a CA, newest first
	ListByCA(ctx context.Context, caID uint64) ([]models.TaskSubmission, error)

	// Review awards points to an unreviewed submission and credits the CA
	Review(ctx context.Context, review SubmissionReview) error
}

// SubmissionReview describes the review of a submission.
type SubmissionReview struct {
	SubmissionID uint64
	CAID         uint64
	ReviewerID   uint64
	Points       int64
	Comments     string
	ReviewedAt   time.Time
}
