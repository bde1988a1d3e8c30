package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/infinito-iitp/ca-portal-api/internal/models"
	"github.com/infinito-iitp/ca-portal-api/internal/repository"
	"github.com/infinito-iitp/ca-portal-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrTitleRequired       = errors.New("title is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrInvalidMaxPoints    = errors.New("max points must be greater than zero")
	ErrDueDateInPast       = errors.New("due date must be in the future")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
	now      func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		now:      time.Now,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title        string
	Description  string
	DueDate      *time.Time
	MaxPoints    int64
	AssignedByID uint64
}

// CreateTask validates and stores a new task. Tasks are immutable afterwards.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	title := cleanText(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	description := cleanText(input.Description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	if input.MaxPoints <= 0 {
		return nil, ErrInvalidMaxPoints
	}
	now := s.now().UTC()
	if input.DueDate != nil {
		if !input.DueDate.After(now) {
			return nil, ErrDueDateInPast
		}
		due := input.DueDate.UTC()
		input.DueDate = &due
	}

	task := &models.Task{
		Title:        title,
		Description:  description,
		AssignedByID: input.AssignedByID,
		AssignedAt:   now,
		DueDate:      input.DueDate,
		MaxPoints:    input.MaxPoints,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.GetTask(ctx, task.ID)
}

// ListTasks returns a page of tasks, newest first
func (s *TaskService) ListTasks(ctx context.Context, params utils.PaginationParams) ([]models.Task, int64, error) {
	total, err := s.taskRepo.Count(ctx, repository.TaskFilter{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	tasks, err := s.taskRepo.List(ctx, repository.TaskFilter{}, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task with its assigner
func (s *TaskService) GetTask(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID, "AssignedBy")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}
