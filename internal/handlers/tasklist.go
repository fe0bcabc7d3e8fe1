package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tasklyhq/taskly-api/internal/dto"
	apierrors "github.com/tasklyhq/taskly-api/internal/errors"
	"github.com/tasklyhq/taskly-api/internal/middleware"
	"github.com/tasklyhq/taskly-api/internal/services"
)

// TasklistHandler coordinates tasklist HTTP handlers.
type TasklistHandler struct {
	tasklistService *services.TasklistService
}

// NewTasklistHandler creates a new TasklistHandler.
func NewTasklistHandler(tasklistService *services.TasklistService) *TasklistHandler {
	return &TasklistHandler{
		tasklistService: tasklistService,
	}
}

// Create creates a new tasklist owned by the current user.
func (h *TasklistHandler) Create(c *gin.Context) {
	type CreateRequest struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserID(c)
	list, err := h.tasklistService.Create(services.CreateInput{
		CallerID:    userID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondTasklistError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTasklistDTO(*list))
}

// List returns the current user's active tasklists. The sort query parameter
// accepts "title" or "date" (default).
func (h *TasklistHandler) List(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	order := services.SortByDate
	if c.Query("sort") == "title" {
		order = services.SortByTitle
	}

	summaries, err := h.tasklistService.ListForUser(userID, order)
	if err != nil {
		respondTasklistError(c, err)
		return
	}

	dtos := make([]dto.TasklistSummaryDTO, len(summaries))
	for i, summary := range summaries {
		dtos[i] = dto.ToTasklistSummaryDTO(summary)
	}

	c.JSON(http.StatusOK, dtos)
}

// Get returns the detail view of a tasklist.
func (h *TasklistHandler) Get(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	listID, _ := middleware.GetListID(c)

	detail, err := h.tasklistService.Get(userID, listID)
	if err != nil {
		respondTasklistError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTasklistDetailDTO(*detail))
}

// Update changes a tasklist's title and description.
func (h *TasklistHandler) Update(c *gin.Context) {
	type UpdateRequest struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserID(c)
	listID, _ := middleware.GetListID(c)

	list, err := h.tasklistService.Update(services.UpdateInput{
		CallerID:    userID,
		ListID:      listID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondTasklistError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTasklistDTO(*list))
}

// Delete soft-deletes a tasklist with its tasks and memberships.
func (h *TasklistHandler) Delete(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	listID, _ := middleware.GetListID(c)

	if err := h.tasklistService.SoftDelete(userID, listID); err != nil {
		respondTasklistError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Tasklist deleted",
	})
}

func respondTasklistError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTitleRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrListNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotAuthorized), errors.Is(err, services.ErrNotOwner):
		apierrors.Forbidden(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
