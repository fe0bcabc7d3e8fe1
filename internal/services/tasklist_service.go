package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tasklyhq/taskly-api/internal/models"
	"github.com/tasklyhq/taskly-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTitleRequired = errors.New("title is required")
)

// TasklistSortOrder selects how ListForUser orders the caller's lists.
type TasklistSortOrder string

const (
	SortByDate  TasklistSortOrder = "date"
	SortByTitle TasklistSortOrder = "title"
)

// TasklistService manages tasklist lifecycle. Creation and ownership are
// inseparable: a list is always born with exactly one owner membership.
type TasklistService struct {
	tasklistRepo   repository.TasklistRepository
	membershipRepo repository.MembershipRepository
	taskRepo       repository.TaskRepository
}

// NewTasklistService creates a new TasklistService.
func NewTasklistService(tasklistRepo repository.TasklistRepository, membershipRepo repository.MembershipRepository, taskRepo repository.TaskRepository) *TasklistService {
	return &TasklistService{
		tasklistRepo:   tasklistRepo,
		membershipRepo: membershipRepo,
		taskRepo:       taskRepo,
	}
}

// CreateInput is the input for creating a tasklist.
type CreateInput struct {
	CallerID    uint64
	Title       string
	Description string
}

// Create inserts a tasklist with the caller as its owner.
func (s *TasklistService) Create(input CreateInput) (*models.Tasklist, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	list := &models.Tasklist{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		CreatedBy:   &input.CallerID,
		IsActive:    true,
	}
	owner := &models.Membership{
		UserID:           &input.CallerID,
		Role:             models.RoleOwner,
		InvitationStatus: models.InvitationAccepted,
		IsActive:         true,
		InvitedAt:        time.Now(),
	}

	if err := s.tasklistRepo.CreateWithOwner(list, owner); err != nil {
		return nil, fmt.Errorf("failed to create tasklist: %w", err)
	}

	return list, nil
}

// ListForUser returns the caller's active tasklists with role and
// contributor previews, sorted by creation date (newest first) or title.
func (s *TasklistService) ListForUser(callerID uint64, order TasklistSortOrder) ([]repository.TasklistSummary, error) {
	summaries, err := s.tasklistRepo.ListForUser(callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasklists: %w", err)
	}

	switch order {
	case SortByTitle:
		sort.SliceStable(summaries, func(i, j int) bool {
			return strings.ToLower(summaries[i].Tasklist.Title) < strings.ToLower(summaries[j].Tasklist.Title)
		})
	default:
		sort.SliceStable(summaries, func(i, j int) bool {
			return summaries[i].Tasklist.CreatedAt.After(summaries[j].Tasklist.CreatedAt)
		})
	}

	return summaries, nil
}

// TasklistDetail is a tasklist together with its roster, its active tasks and
// the viewing user's role.
type TasklistDetail struct {
	Tasklist     models.Tasklist
	Role         models.ListRole
	Contributors []repository.ContributorRow
	Tasks        []models.Task
}

// Get returns the full detail of a list. Any active member may view it.
func (s *TasklistService) Get(callerID, listID uint64) (*TasklistDetail, error) {
	role, err := s.membershipRepo.GetRole(callerID, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify caller role: %w", err)
	}
	if role == nil {
		return nil, ErrNotAuthorized
	}

	list, err := s.tasklistRepo.FindActiveByID(listID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to find tasklist: %w", err)
	}

	contributors, err := s.membershipRepo.ListContributors(listID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributors: %w", err)
	}

	tasks, err := s.taskRepo.ListActiveByList(listID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return &TasklistDetail{
		Tasklist:     *list,
		Role:         *role,
		Contributors: contributors,
		Tasks:        tasks,
	}, nil
}

// UpdateInput is the input for renaming a tasklist.
type UpdateInput struct {
	CallerID    uint64
	ListID      uint64
	Title       string
	Description string
}

// Update changes a list's title and description. Owner or admin only.
func (s *TasklistService) Update(input UpdateInput) (*models.Tasklist, error) {
	role, err := s.membershipRepo.GetRole(input.CallerID, input.ListID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify caller role: %w", err)
	}
	if role == nil || (*role != models.RoleOwner && *role != models.RoleAdmin) {
		return nil, ErrNotAuthorized
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	list, err := s.tasklistRepo.FindActiveByID(input.ListID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to find tasklist: %w", err)
	}

	list.Title = title
	list.Description = strings.TrimSpace(input.Description)
	if err := s.tasklistRepo.Update(list); err != nil {
		return nil, fmt.Errorf("failed to update tasklist: %w", err)
	}

	return list, nil
}

// SoftDelete deactivates a list along with its tasks and memberships.
// Owner only.
func (s *TasklistService) SoftDelete(callerID, listID uint64) error {
	role, err := s.membershipRepo.GetRole(callerID, listID)
	if err != nil {
		return fmt.Errorf("failed to verify caller role: %w", err)
	}
	if role == nil || *role != models.RoleOwner {
		return ErrNotOwner
	}

	if err := s.tasklistRepo.SoftDelete(listID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrListNotFound
		}
		return fmt.Errorf("failed to delete tasklist: %w", err)
	}

	return nil
}
