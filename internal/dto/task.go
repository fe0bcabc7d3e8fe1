package dto

import (
	"time"

	"github.com/tasklyhq/taskly-api/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64            `json:"id"`
	ListID      uint64            `json:"list_id"`
	Description string            `json:"description"`
	Priority    int               `json:"priority"`
	Status      models.TaskStatus `json:"status"`
	Deadline    time.Time         `json:"deadline"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ToTaskDTO converts a task model to DTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		ListID:      task.ListID,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      task.Status,
		Deadline:    task.Deadline,
		CreatedAt:   task.CreatedAt,
	}
}

// ToTaskDTOs converts a slice of task models to DTOs
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}
