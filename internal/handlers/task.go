package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tasklyhq/taskly-api/internal/dto"
	apierrors "github.com/tasklyhq/taskly-api/internal/errors"
	"github.com/tasklyhq/taskly-api/internal/middleware"
	"github.com/tasklyhq/taskly-api/internal/models"
	"github.com/tasklyhq/taskly-api/internal/services"
)

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// Create adds a task to a tasklist.
func (h *TaskHandler) Create(c *gin.Context) {
	type CreateRequest struct {
		Description string    `json:"description" binding:"required"`
		Priority    int       `json:"priority" binding:"required"`
		Deadline    time.Time `json:"deadline" binding:"required"`
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserID(c)
	listID, _ := middleware.GetListID(c)

	task, err := h.taskService.Create(services.CreateTaskInput{
		CallerID:    userID,
		ListID:      listID,
		Description: req.Description,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// List returns the active tasks of a tasklist.
func (h *TaskHandler) List(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	listID, _ := middleware.GetListID(c)

	tasks, err := h.taskService.ListForList(userID, listID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// Update edits a task's fields. The status may only move forward.
func (h *TaskHandler) Update(c *gin.Context) {
	type UpdateRequest struct {
		Description string            `json:"description" binding:"required"`
		Priority    int               `json:"priority" binding:"required"`
		Status      models.TaskStatus `json:"status" binding:"required"`
		Deadline    time.Time         `json:"deadline" binding:"required"`
	}

	taskID, err := strconv.ParseUint(c.Param("taskId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserID(c)
	listID, _ := middleware.GetListID(c)

	task, err := h.taskService.Update(services.UpdateTaskInput{
		CallerID:    userID,
		ListID:      listID,
		TaskID:      taskID,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		Deadline:    req.Deadline,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// Delete soft-deletes a task.
func (h *TaskHandler) Delete(c *gin.Context) {
	taskID, err := strconv.ParseUint(c.Param("taskId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	userID, _ := middleware.GetUserID(c)
	listID, _ := middleware.GetListID(c)

	if err := h.taskService.SoftDelete(userID, listID, taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted",
	})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrDescriptionRequired),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidStatusTransition):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound), errors.Is(err, services.ErrListNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotAuthorized):
		apierrors.Forbidden(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
