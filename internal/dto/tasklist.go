package dto

import (
	"time"

	"github.com/tasklyhq/taskly-api/internal/models"
	"github.com/tasklyhq/taskly-api/internal/repository"
	"github.com/tasklyhq/taskly-api/internal/services"
)

// TasklistDTO represents a tasklist in API responses
type TasklistDTO struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// TasklistSummaryDTO represents a tasklist on the dashboard, with the viewing
// user's role and a preview of who collaborates on it
type TasklistSummaryDTO struct {
	TasklistDTO
	Role         models.ListRole `json:"role"`
	Contributors []string        `json:"contributors"`
}

// TasklistDetailDTO represents the full detail view of a tasklist
type TasklistDetailDTO struct {
	TasklistDTO
	YourRole     models.ListRole  `json:"your_role"`
	Contributors []ContributorDTO `json:"contributors"`
	Tasks        []TaskDTO        `json:"tasks"`
}

// ToTasklistDTO converts a tasklist model to DTO
func ToTasklistDTO(list models.Tasklist) TasklistDTO {
	return TasklistDTO{
		ID:          list.ID,
		Title:       list.Title,
		Description: list.Description,
		CreatedAt:   list.CreatedAt,
	}
}

// ToTasklistSummaryDTO converts a tasklist summary to DTO
func ToTasklistSummaryDTO(summary repository.TasklistSummary) TasklistSummaryDTO {
	contributors := summary.Contributors
	if contributors == nil {
		contributors = []string{}
	}
	return TasklistSummaryDTO{
		TasklistDTO:  ToTasklistDTO(summary.Tasklist),
		Role:         summary.Role,
		Contributors: contributors,
	}
}

// ToTasklistDetailDTO converts a tasklist detail to DTO
func ToTasklistDetailDTO(detail services.TasklistDetail) TasklistDetailDTO {
	contributors := make([]ContributorDTO, len(detail.Contributors))
	for i, c := range detail.Contributors {
		contributors[i] = ToContributorDTO(c)
	}
	tasks := make([]TaskDTO, len(detail.Tasks))
	for i, t := range detail.Tasks {
		tasks[i] = ToTaskDTO(t)
	}

	return TasklistDetailDTO{
		TasklistDTO:  ToTasklistDTO(detail.Tasklist),
		YourRole:     detail.Role,
		Contributors: contributors,
		Tasks:        tasks,
	}
}
