package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/infinito-iitp/ca-portal-api/internal/dto"
	apierrors "github.com/infinito-iitp/ca-portal-api/internal/errors"
	"github.com/infinito-iitp/ca-portal-api/internal/middleware"
	"github.com/infinito-iitp/ca-portal-api/internal/services"
	"github.com/infinito-iitp/ca-portal-api/internal/utils"
	"github.com/infinito-iitp/ca-portal-api/internal/validation"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns all tasks, newest first
func (h *TaskHandler) ListTasks(c *gin.Context) {
	params := utils.ParsePage(c, utils.TaskPages)

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), params)
	if err != nil {
		_ = c.Error(err)
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params, total))
}

// GetTask returns a specific task by ID
// Task is already loaded with its assigner by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.TaskResponse{
		Success: true,
		Task:    dto.ToTaskDTO(*task),
	})
}

// CreateTask creates a new task assigned by the caller
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description" binding:"required"`
		DueDate     *time.Time `json:"dueDate"`
		MaxPoints   int64      `json:"maxPoints" binding:"required,gt=0"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, validation.Message(err))
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate,
		MaxPoints:    req.MaxPoints,
		AssignedByID: userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.TaskResponse{
		Success: true,
		Task:    dto.ToTaskDTO(*task),
	})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTitleRequired):
		apierrors.BadRequest(c, "Title is required")
	case errors.Is(err, services.ErrDescriptionRequired):
		apierrors.BadRequest(c, "Description is required")
	case errors.Is(err, services.ErrInvalidMaxPoints):
		apierrors.BadRequest(c, "Max points must be greater than zero")
	case errors.Is(err, services.ErrDueDateInPast):
		apierrors.BadRequest(c, "Due date must be in the future")
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	default:
		internalError(c, err)
	}
}
