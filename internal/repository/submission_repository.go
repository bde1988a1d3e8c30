package repository

import (
	"context"
	"fmt"

	"github.com/infinito-iitp/ca-portal-api/internal/models"
	"gorm.io/gorm"
)

// GormSubmissionRepository is a GORM implementation of SubmissionRepository
type GormSubmissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new SubmissionRepository
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &GormSubmissionRepository{db: db}
}

// Create creates a new submission
func (r *GormSubmissionRepository) Create(ctx context.Context, sub *models.TaskSubmission) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// FindByID finds a submission by ID with optional preloading
func (r *GormSubmissionRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.TaskSubmission, error) {
	var sub models.TaskSubmission
	query := r.db.WithContext(ctx)
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&sub, id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListByCA lists the submissions of a CA, newest first
func (r *GormSubmissionRepository) ListByCA(ctx context.Context, caID uint64) ([]models.TaskSubmission, error) {
	var subs []models.TaskSubmission
	err := r.db.WithContext(ctx).
		Preload("Task").
		Where("ca_id = ?", caID).
		Order("submitted_at DESC").Order("id DESC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// Review awards points to an unreviewed submission and adds them to the
// CA's score in one transaction. ErrStaleState means it was already reviewed.
func (r *GormSubmissionRepository) Review(ctx context.Context, review SubmissionReview) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.TaskSubmission{}).
			Where("id = ? AND points_awarded IS NULL", review.SubmissionID).
			Updates(map[string]interface{}{
				"points_awarded":  review.Points,
				"reviewed_by_id":  review.ReviewerID,
				"reviewed_at":     review.ReviewedAt,
				"review_comments": review.Comments,
			})
		if res.Error != nil {
			return fmt.Errorf("update submission: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrStaleState
		}

		res = tx.Model(&models.User{}).
			Where("id = ?", review.CAID).
			UpdateColumn("score", gorm.Expr("score + ?", review.Points))
		if res.Error != nil {
			return fmt.Errorf("credit score: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("credit score: %w", gorm.ErrRecordNotFound)
		}
		return nil
	})
}
