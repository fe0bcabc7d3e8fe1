package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tasklyhq/taskly-api/internal/constants"
	"github.com/tasklyhq/taskly-api/internal/models"
	"github.com/tasklyhq/taskly-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound            = errors.New("task not found")
	ErrDescriptionRequired     = errors.New("description is required")
	ErrInvalidPriority         = errors.New("priority must be between 1 and 3")
	ErrInvalidStatus           = errors.New("invalid task status")
	ErrInvalidStatusTransition = errors.New("task status cannot move backwards")
)

// TaskService manages tasks within a list. Mutations are restricted to the
// owner and admins; contributors get read access through the list detail.
type TaskService struct {
	taskRepo       repository.TaskRepository
	membershipRepo repository.MembershipRepository
	tasklistRepo   repository.TasklistRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, membershipRepo repository.MembershipRepository, tasklistRepo repository.TasklistRepository) *TaskService {
	return &TaskService{
		taskRepo:       taskRepo,
		membershipRepo: membershipRepo,
		tasklistRepo:   tasklistRepo,
	}
}

func (s *TaskService) requireManager(callerID, listID uint64) error {
	role, err := s.membershipRepo.GetRole(callerID, listID)
	if err != nil {
		return fmt.Errorf("failed to verify caller role: %w", err)
	}
	if role == nil || (*role != models.RoleOwner && *role != models.RoleAdmin) {
		return ErrNotAuthorized
	}
	return nil
}

// CreateTaskInput is the input for creating a task.
type CreateTaskInput struct {
	CallerID    uint64
	ListID      uint64
	Description string
	Priority    int
	Deadline    time.Time
}

// Create adds a task to a list. New tasks always start as not started.
func (s *TaskService) Create(input CreateTaskInput) (*models.Task, error) {
	if err := s.requireManager(input.CallerID, input.ListID); err != nil {
		return nil, err
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	if input.Priority < constants.MinTaskPriority || input.Priority > constants.MaxTaskPriority {
		return nil, ErrInvalidPriority
	}

	if _, err := s.tasklistRepo.FindActiveByID(input.ListID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to find tasklist: %w", err)
	}

	task := &models.Task{
		ListID:      input.ListID,
		Description: description,
		Priority:    input.Priority,
		Status:      models.TaskStatusNotStarted,
		Deadline:    input.Deadline,
		IsActive:    true,
	}
	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// UpdateTaskInput is the input for updating a task.
type UpdateTaskInput struct {
	CallerID    uint64
	ListID      uint64
	TaskID      uint64
	Description string
	Priority    int
	Status      models.TaskStatus
	Deadline    time.Time
}

// Update edits a task. The status may only advance: once a task is in
// progress or done it never moves back.
func (s *TaskService) Update(input UpdateTaskInput) (*models.Task, error) {
	if err := s.requireManager(input.CallerID, input.ListID); err != nil {
		return nil, err
	}

	task, err := s.findListTask(input.ListID, input.TaskID)
	if err != nil {
		return nil, err
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	if input.Priority < constants.MinTaskPriority || input.Priority > constants.MaxTaskPriority {
		return nil, ErrInvalidPriority
	}
	if !input.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if !task.Status.CanTransitionTo(input.Status) {
		return nil, ErrInvalidStatusTransition
	}

	task.Description = description
	task.Priority = input.Priority
	task.Status = input.Status
	task.Deadline = input.Deadline
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// SoftDelete deactivates a task. Owner or admin only.
func (s *TaskService) SoftDelete(callerID, listID, taskID uint64) error {
	if err := s.requireManager(callerID, listID); err != nil {
		return err
	}

	if _, err := s.findListTask(listID, taskID); err != nil {
		return err
	}

	if err := s.taskRepo.SoftDelete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// ListForList returns the active tasks of a list. Any active member may view
// them.
func (s *TaskService) ListForList(callerID, listID uint64) ([]models.Task, error) {
	role, err := s.membershipRepo.GetRole(callerID, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify caller role: %w", err)
	}
	if role == nil {
		return nil, ErrNotAuthorized
	}

	tasks, err := s.taskRepo.ListActiveByList(listID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) findListTask(listID, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindActiveByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task.ListID != listID {
		return nil, ErrTaskNotFound
	}
	return task, nil
}
