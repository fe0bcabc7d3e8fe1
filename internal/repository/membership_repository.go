package repository

import (
	"errors"
	"fmt"

	"github.com/tasklyhq/taskly-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrDuplicateMembership is returned when inserting a membership that
	// collides with an existing row for the same user or invite address.
	ErrDuplicateMembership = errors.New("membership repository: membership already exists")
	// ErrOwnerMissing is returned by TransferOwnership when the expected
	// owner or target row cannot be updated.
	ErrOwnerMissing = errors.New("membership repository: owner or target membership not found")
)

// GormMembershipRepository is a GORM implementation of MembershipRepository
type GormMembershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &GormMembershipRepository{db: db}
}

// GetRole returns the role of an active membership, or nil when none exists.
func (r *GormMembershipRepository) GetRole(userID, listID uint64) (*models.ListRole, error) {
	var m models.Membership
	err := r.db.Select("role").
		Where("user_id = ? AND list_id = ? AND is_active = ?", userID, listID, true).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m.Role, nil
}

// Add inserts a new membership row.
func (r *GormMembershipRepository) Add(m *models.Membership) error {
	if err := r.db.Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateMembership
		}
		return err
	}
	return nil
}

// Update persists changes to an existing membership.
func (r *GormMembershipRepository) Update(m *models.Membership) error {
	return r.db.Save(m).Error
}

// DeleteByListAndUser removes the membership row for (listID, userID).
func (r *GormMembershipRepository) DeleteByListAndUser(listID, userID uint64) (bool, error) {
	result := r.db.Where("list_id = ? AND user_id = ?", listID, userID).
		Delete(&models.Membership{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindByID finds a membership by its surrogate key.
func (r *GormMembershipRepository) FindByID(id uint64) (*models.Membership, error) {
	var m models.Membership
	if err := r.db.First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByListAndUser finds the membership for (listID, userID).
func (r *GormMembershipRepository) FindByListAndUser(listID, userID uint64) (*models.Membership, error) {
	var m models.Membership
	err := r.db.Where("list_id = ? AND user_id = ?", listID, userID).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListContributors returns the active members of a list joined with user
// profile fields, owner first, then by username.
func (r *GormMembershipRepository) ListContributors(listID uint64) ([]ContributorRow, error) {
	var rows []ContributorRow
	err := r.db.Model(&models.Membership{}).
		Select("memberships.id AS membership_id, users.id AS user_id, users.username, users.image, memberships.role").
		Joins("INNER JOIN users ON users.id = memberships.user_id").
		Where("memberships.list_id = ? AND memberships.is_active = ?", listID, true).
		Order("memberships.role = 'owner' DESC, users.username ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListPendingInvitations returns tasklists where the user holds a pending,
// inactive membership, each with a preview of the active contributors.
func (r *GormMembershipRepository) ListPendingInvitations(userID uint64) ([]PendingInvitation, error) {
	var memberships []models.Membership
	err := r.db.Preload("Tasklist").
		Where("user_id = ? AND invitation_status = ? AND is_active = ?",
			userID, models.InvitationPending, false).
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}

	invitations := make([]PendingInvitation, 0, len(memberships))
	for _, m := range memberships {
		if !m.Tasklist.IsActive {
			continue
		}

		contributors, err := r.ListContributors(m.ListID)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(contributors))
		for _, c := range contributors {
			names = append(names, c.Username)
		}

		invitations = append(invitations, PendingInvitation{
			Tasklist:     m.Tasklist,
			Contributors: names,
		})
	}

	return invitations, nil
}

// ListForUser returns every membership of the user with the tasklist
// preloaded.
func (r *GormMembershipRepository) ListForUser(userID uint64) ([]models.Membership, error) {
	var memberships []models.Membership
	err := r.db.Preload("Tasklist").
		Where("user_id = ?", userID).
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

// ClaimInvitations attaches pending invite-by-email rows to a newly
// registered user. Matching zero rows is not an error, and a second run finds
// nothing left to claim.
func (r *GormMembershipRepository) ClaimInvitations(newUserID uint64, email string) error {
	return r.db.Model(&models.Membership{}).
		Where("invite_email = ?", email).
		Updates(map[string]interface{}{
			"user_id":      newUserID,
			"invite_email": nil,
		}).Error
}

// UpdateRole sets the role of a single membership.
func (r *GormMembershipRepository) UpdateRole(membershipID uint64, role models.ListRole) error {
	result := r.db.Model(&models.Membership{}).
		Where("id = ?", membershipID).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// TransferOwnership swaps the owner and target roles atomically. Either both
// rows change or neither does; a list must never be left without an owner.
func (r *GormMembershipRepository) TransferOwnership(listID, currentOwnerID, newOwnerID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		demote := tx.Model(&models.Membership{}).
			Where("list_id = ? AND user_id = ? AND role = ?", listID, currentOwnerID, models.RoleOwner).
			Update("role", models.RoleAdmin)
		if demote.Error != nil {
			return fmt.Errorf("demote current owner: %w", demote.Error)
		}
		if demote.RowsAffected == 0 {
			return ErrOwnerMissing
		}

		promote := tx.Model(&models.Membership{}).
			Where("list_id = ? AND user_id = ? AND is_active = ?", listID, newOwnerID, true).
			Update("role", models.RoleOwner)
		if promote.Error != nil {
			return fmt.Errorf("promote new owner: %w", promote.Error)
		}
		if promote.RowsAffected == 0 {
			return ErrOwnerMissing
		}

		return nil
	})
}
