package repository

import (
	"context"

	"github.com/infinito-iitp/ca-portal-api/internal/database"
	"github.com/infinito-iitp/ca-portal-api/internal/models"
	"github.com/infinito-iitp/ca-portal-api/internal/utils"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.WithContext(ctx)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

func (r *GormTaskRepository) filtered(ctx context.Context, filter TaskFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Task{})
	if filter.AssignedByID != nil {
		query = query.Where("tasks.assigned_by_id = ?", *filter.AssignedByID)
	}
	if filter.DueAfter != nil {
		query = query.Where("tasks.due_date > ?", filter.DueAfter.UTC())
	}
	return query
}

// List retrieves tasks newest first with the assigner preloaded
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter, params utils.PaginationParams) ([]models.Task, error) {
	var tasks []models.Task
	err := r.filtered(ctx, filter).
		Preload("AssignedBy").
		Order("tasks.assigned_at DESC").
		Order("tasks.id DESC").
		Scopes(database.Paginate(params)).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Count counts tasks matching the filter
func (r *GormTaskRepository) Count(ctx context.Context, filter TaskFilter) (int64, error) {
	var count int64
	err := r.filtered(ctx, filter).Count(&count).Error
	return count, err
}
