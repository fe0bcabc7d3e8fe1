package repository

import (
	"github.com/tasklyhq/taskly-api/internal/models"
)

// ContributorRow is one active member of a tasklist, joined with the user's
// public profile fields.
type ContributorRow struct {
	MembershipID uint64          `json:"membership_id"`
	UserID       uint64          `json:"user_id"`
	Username     string          `json:"username"`
	Image        string          `json:"image"`
	Role         models.ListRole `json:"role"`
}

// PendingInvitation is a tasklist the user has been invited to but has not
// accepted, with a preview of who is already collaborating on it.
type PendingInvitation struct {
	Tasklist     models.Tasklist
	Contributors []string
}

// TasklistSummary is a tasklist together with the viewing user's role and the
// usernames of its active members.
type TasklistSummary struct {
	Tasklist     models.Tasklist
	Role         models.ListRole
	Contributors []string
}

// MembershipRepository defines the interface for membership data access.
// Memberships are the authorization primitive: every role check reads
// current state through GetRole, never a cached value.
type MembershipRepository interface {
	// GetRole returns the role of an active membership, or nil when the user
	// has no active relation to the list.
	GetRole(userID, listID uint64) (*models.ListRole, error)

	// Add inserts a new membership. A unique-constraint violation is
	// reported as ErrDuplicateMembership.
	Add(m *models.Membership) error

	// Update persists changes to an existing membership.
	Update(m *models.Membership) error

	// DeleteByListAndUser removes the membership row for (listID, userID).
	// It returns false, not an error, when no matching row exists.
	DeleteByListAndUser(listID, userID uint64) (bool, error)

	// FindByID finds a membership by its surrogate key.
	FindByID(id uint64) (*models.Membership, error)

	// FindByListAndUser finds the membership for (listID, userID) regardless
	// of its invitation state.
	FindByListAndUser(listID, userID uint64) (*models.Membership, error)

	// ListContributors returns the active members of a list, owner first.
	ListContributors(listID uint64) ([]ContributorRow, error)

	// ListPendingInvitations returns tasklists where the user holds a
	// pending, inactive membership.
	ListPendingInvitations(userID uint64) ([]PendingInvitation, error)

	// ListForUser returns every membership of the user with the tasklist
	// preloaded, including pending ones.
	ListForUser(userID uint64) ([]models.Membership, error)

	// ClaimInvitations attaches every membership invited under email to the
	// newly registered user and clears the invite address. Running it again
	// is a no-op.
	ClaimInvitations(newUserID uint64, email string) error

	// UpdateRole sets the role of a single membership.
	UpdateRole(membershipID uint64, role models.ListRole) error

	// TransferOwnership demotes the current owner to admin and promotes the
	// target to owner within a single transaction.
	TransferOwnership(listID, currentOwnerID, newOwnerID uint64) error
}

// UserRepository defines the interface for user and deleted-user data access.
type UserRepository interface {
	Create(user *models.User) error

	// FindByID finds a user by ID, active or not.
	FindByID(id uint64) (*models.User, error)

	// FindActiveByUsername matches the username case-insensitively among
	// active users.
	FindActiveByUsername(username string) (*models.User, error)

	// FindActiveByEmail matches the email case-insensitively among active
	// users.
	FindActiveByEmail(email string) (*models.User, error)

	// FindActiveByResetTokenHash finds the active user holding an unexpired
	// reset token with the given hash.
	FindActiveByResetTokenHash(hash string) (*models.User, error)

	Update(user *models.User) error

	// ArchiveAndAnonymize persists the anonymized user and inserts the
	// DeletedUser archive row in one transaction.
	ArchiveAndAnonymize(user *models.User, archived *models.DeletedUser) error

	// FindDeletedByCiphertext matches a DeletedUser whose encrypted email or
	// username equals the given ciphertext.
	FindDeletedByCiphertext(cipherText string) (*models.DeletedUser, error)

	// DeleteDeletedUser removes a DeletedUser archive row.
	DeleteDeletedUser(id uint64) error
}

// TasklistRepository defines the interface for tasklist data access.
type TasklistRepository interface {
	// CreateWithOwner inserts the tasklist and its owner membership in one
	// transaction.
	CreateWithOwner(list *models.Tasklist, owner *models.Membership) error

	// FindActiveByID finds an active tasklist by ID.
	FindActiveByID(id uint64) (*models.Tasklist, error)

	// ListForUser returns the active tasklists the user actively belongs to,
	// with role and contributor usernames.
	ListForUser(userID uint64) ([]TasklistSummary, error)

	Update(list *models.Tasklist) error

	// SoftDelete deactivates the tasklist, its tasks and its memberships in
	// one transaction.
	SoftDelete(listID uint64) error
}

// TaskRepository defines the interface for task data access.
type TaskRepository interface {
	Create(task *models.Task) error

	// FindActiveByID finds an active task by ID.
	FindActiveByID(id uint64) (*models.Task, error)

	// ListActiveByList returns the active tasks of a list ordered by
	// priority ascending, deadline descending.
	ListActiveByList(listID uint64) ([]models.Task, error)

	Update(task *models.Task) error

	// SoftDelete deactivates a task.
	SoftDelete(id uint64) error
}
