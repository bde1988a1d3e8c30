package repository

import (
	"context"
	"fmt"

	"github.com/infinito-iitp/ca-portal-api/internal/database"
	"github.com/infinito-iitp/ca-portal-api/internal/models"
	"github.com/infinito-iitp/ca-portal-api/internal/utils"
	"gorm.io/gorm"
)

// GormCAApplicationRepository is a GORM implementation of CAApplicationRepository
type GormCAApplicationRepository struct {
	db *gorm.DB
}

// NewCAApplicationRepository creates a new CAApplicationRepository
func NewCAApplicationRepository(db *gorm.DB) CAApplicationRepository {
	return &GormCAApplicationRepository{db: db}
}

// Create creates a new application. A second application for the same user
// fails with gorm.ErrDuplicatedKey.
func (r *GormCAApplicationRepository) Create(ctx context.Context, app *models.CAApplication) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *GormCAApplicationRepository) find(ctx context.Context, preload []string, query interface{}, args ...interface{}) (*models.CAApplication, error) {
	var app models.CAApplication
	q := r.db.WithContext(ctx)
	for _, p := range preload {
		q = q.Preload(p)
	}
	if err := q.Where(query, args...).First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// FindByID finds an application by ID with optional preloading
func (r *GormCAApplicationRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.CAApplication, error) {
	return r.find(ctx, preload, "ca_applications.id = ?", id)
}

// FindByUserID finds the application of a user with optional preloading
func (r *GormCAApplicationRepository) FindByUserID(ctx context.Context, userID uint64, preload ...string) (*models.CAApplication, error) {
	return r.find(ctx, preload, "ca_applications.user_id = ?", userID)
}

// CountByStatus counts applications in a status
func (r *GormCAApplicationRepository) CountByStatus(ctx context.Context, status models.ApplicationStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CAApplication{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// List retrieves applications with the applicant preloaded
func (r *GormCAApplicationRepository) List(ctx context.Context, filter ApplicationFilter, params utils.PaginationParams) ([]models.CAApplication, int64, error) {
	filtered := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.CAApplication{})
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := filtered()
	if filter.OldestFirst {
		query = query.Order("application_date ASC").Order("id ASC")
	} else {
		query = query.Order("application_date DESC").Order("id DESC")
	}

	var apps []models.CAApplication
	if err := query.Preload("User").Scopes(database.Paginate(params)).Find(&apps).Error; err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

// Review moves a pending application to decision.Status. The status change,
// the optional role promotion and its RoleChange record commit together.
// ErrStaleState means the application was no longer pending.
func (r *GormCAApplicationRepository) Review(ctx context.Context, decision ReviewDecision) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CAApplication{}).
			Where("id = ? AND status = ?", decision.ApplicationID, models.ApplicationPending).
			Updates(map[string]interface{}{
				"status":         decision.Status,
				"reviewed_by_id": decision.ReviewerID,
				"reviewed_at":    decision.ReviewedAt,
			})
		if res.Error != nil {
			return fmt.Errorf("update application: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrStaleState
		}

		if decision.PromoteTo == nil {
			return nil
		}

		var applicant models.User
		if err := tx.Select("id", "role").First(&applicant, decision.ApplicantID).Error; err != nil {
			return fmt.Errorf("load applicant: %w", err)
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", decision.ApplicantID).
			Update("role", *decision.PromoteTo).Error; err != nil {
			return fmt.Errorf("update role: %w", err)
		}

		change := models.RoleChange{
			UserID:      decision.ApplicantID,
			FromRole:    applicant.Role,
			ToRole:      *decision.PromoteTo,
			ChangedByID: decision.ReviewerID,
			Reason:      fmt.Sprintf("ca application %d %s", decision.ApplicationID, decision.Status),
		}
		if err := tx.Create(&change).Error; err != nil {
			return fmt.Errorf("record role change: %w", err)
		}
		return nil
	})
}
