package repository

import (
	"fmt"

	"github.com/tasklyhq/taskly-api/internal/database"
	"github.com/tasklyhq/taskly-api/internal/models"
	"gorm.io/gorm"
)

// GormTasklistRepository is a GORM implementation of TasklistRepository
type GormTasklistRepository struct {
	db *gorm.DB
}

// NewTasklistRepository creates a new TasklistRepository
func NewTasklistRepository(db *gorm.DB) TasklistRepository {
	return &GormTasklistRepository{db: db}
}

// CreateWithOwner inserts the tasklist and its owner membership atomically.
// The creator's membership is born accepted and active; every active list has
// exactly one active owner from the moment it exists.
func (r *GormTasklistRepository) CreateWithOwner(list *models.Tasklist, owner *models.Membership) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(list).Error; err != nil {
			return fmt.Errorf("create tasklist: %w", err)
		}

		owner.ListID = list.ID
		if err := tx.Create(owner).Error; err != nil {
			return fmt.Errorf("create owner membership: %w", err)
		}

		return nil
	})
}

// FindActiveByID finds an active tasklist by ID
func (r *GormTasklistRepository) FindActiveByID(id uint64) (*models.Tasklist, error) {
	var list models.Tasklist
	err := r.db.Scopes(database.Active).First(&list, id).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// ListForUser returns the active tasklists the user actively belongs to,
// annotated with the user's role and the usernames of all active members.
func (r *GormTasklistRepository) ListForUser(userID uint64) ([]TasklistSummary, error) {
	var memberships []models.Membership
	err := r.db.Preload("Tasklist").
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]TasklistSummary, 0, len(memberships))
	for _, m := range memberships {
		if !m.Tasklist.IsActive {
			continue
		}

		var names []string
		err := r.db.Model(&models.Membership{}).
			Select("users.username").
			Joins("INNER JOIN users ON users.id = memberships.user_id").
			Where("memberships.list_id = ? AND memberships.is_active = ?", m.ListID, true).
			Order("users.username ASC").
			Scan(&names).Error
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, TasklistSummary{
			Tasklist:     m.Tasklist,
			Role:         m.Role,
			Contributors: names,
		})
	}

	return summaries, nil
}

// Update persists changes to a tasklist
func (r *GormTasklistRepository) Update(list *models.Tasklist) error {
	return r.db.Save(list).Error
}

// SoftDelete deactivates the tasklist together with its tasks and
// memberships. The list owns both; they go down with it, in one transaction.
func (r *GormTasklistRepository) SoftDelete(listID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).
			Where("list_id = ?", listID).
			Update("is_active", false).Error; err != nil {
			return fmt.Errorf("deactivate tasks: %w", err)
		}

		if err := tx.Model(&models.Membership{}).
			Where("list_id = ?", listID).
			Update("is_active", false).Error; err != nil {
			return fmt.Errorf("deactivate memberships: %w", err)
		}

		result := tx.Model(&models.Tasklist{}).
			Where("id = ?", listID).
			Update("is_active", false)
		if result.Error != nil {
			return fmt.Errorf("deactivate tasklist: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
}
