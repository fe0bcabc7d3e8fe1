package repository

import (
	"fmt"
	"time"

	"github.com/tasklyhq/taskly-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID, active or not. Reactivation needs to reach
// anonymized rows.
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindActiveByUsername matches the username case-insensitively among active
// users.
func (r *GormUserRepository) FindActiveByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("LOWER(username) = LOWER(?) AND is_active = ?", username, true).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindActiveByEmail matches the email case-insensitively among active users.
func (r *GormUserRepository) FindActiveByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("LOWER(email) = LOWER(?) AND is_active = ?", email, true).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindActiveByResetTokenHash finds the active user holding an unexpired reset
// token with the given hash.
func (r *GormUserRepository) FindActiveByResetTokenHash(hash string) (*models.User, error) {
	var user models.User
	err := r.db.Where("reset_token_hash = ? AND reset_token_expiry > ? AND is_active = ?",
		hash, time.Now(), true).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update persists changes to a user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// ArchiveAndAnonymize persists the anonymized user and the DeletedUser
// archive row atomically. A crash must not leave a user half-anonymized.
func (r *GormUserRepository) ArchiveAndAnonymize(user *models.User, archived *models.DeletedUser) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			return fmt.Errorf("anonymize user: %w", err)
		}
		if err := tx.Create(archived).Error; err != nil {
			return fmt.Errorf("archive deleted user: %w", err)
		}
		return nil
	})
}

// FindDeletedByCiphertext matches a DeletedUser whose encrypted email or
// username equals the given ciphertext.
func (r *GormUserRepository) FindDeletedByCiphertext(cipherText string) (*models.DeletedUser, error) {
	var archived models.DeletedUser
	err := r.db.Where("email_encrypted = ? OR username_encrypted = ?", cipherText, cipherText).
		First(&archived).Error
	if err != nil {
		return nil, err
	}
	return &archived, nil
}

// DeleteDeletedUser removes a DeletedUser archive row
func (r *GormUserRepository) DeleteDeletedUser(id uint64) error {
	return r.db.Delete(&models.DeletedUser{}, id).Error
}
