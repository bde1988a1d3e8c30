package dto

import (
	"time"

	"github.com/infinito-iitp/ca-portal-api/internal/models"
	"github.com/infinito-iitp/ca-portal-api/internal/utils"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID           uint64          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	AssignedByID uint64          `json:"assignedById"`
	AssignedBy   *UserSummaryDTO `json:"assignedBy,omitempty"`
	AssignedAt   time.Time       `json:"assignedAt"`
	DueDate      *time.Time      `json:"dueDate"`
	MaxPoints    int64           `json:"maxPoints"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// TaskResponse wraps a single task.
type TaskResponse struct {
	Success bool    `json:"success"`
	Task    TaskDTO `json:"task"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Success    bool                     `json:"success"`
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		AssignedByID: task.AssignedByID,
		AssignedBy:   summaryIfLoaded(&task.AssignedBy),
		AssignedAt:   task.AssignedAt,
		DueDate:      task.DueDate,
		MaxPoints:    task.MaxPoints,
		CreatedAt:    task.CreatedAt,
	}
}

// ToTaskDTOs converts a slice of tasks.
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskDTO(t)
	}
	return out
}

// ToTaskListResponse builds a paginated task list.
func ToTaskListResponse(tasks []models.Task, params utils.PaginationParams, total int64) TaskListResponse {
	return TaskListResponse{
		Success: true,
		Tasks:   ToTaskDTOs(tasks),
		Pagination: params.Meta(total),
	}
}
