package repository

import (
	"github.com/tasklyhq/taskly-api/internal/database"
	"github.com/tasklyhq/taskly-api/internal/models"
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
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindActiveByID finds an active task by ID
func (r *GormTaskRepository) FindActiveByID(id uint64) (*models.Task, error) {
	var task models.Task
	err := r.db.Scopes(database.Active).First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListActiveByList returns the active tasks of a list, most urgent first.
func (r *GormTaskRepository) ListActiveByList(listID uint64) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Where("list_id = ? AND is_active = ?", listID, true).
		Order("priority ASC, deadline DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update persists changes to a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// SoftDelete deactivates a task
func (r *GormTaskRepository) SoftDelete(id uint64) error {
	result := r.db.Model(&models.Task{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
