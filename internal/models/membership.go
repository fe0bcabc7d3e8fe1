package models

import "time"

type ListRole string

const (
	RoleOwner       ListRole = "owner"
	RoleAdmin       ListRole = "admin"
	RoleContributor ListRole = "contributor"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
)

// Membership is the user-to-tasklist relation. Until an invited address
// registers, InviteEmail is set and UserID is nil; claiming the invitation
// populates UserID and clears InviteEmail. A pending membership is always
// inactive; accepting flips both fields together.
type Membership struct {
	ID               uint64           `gorm:"primarykey" json:"id"`
	ListID           uint64           `gorm:"not null;uniqueIndex:idx_memberships_list_user;uniqueIndex:idx_memberships_list_email" json:"list_id"`
	UserID           *uint64          `gorm:"uniqueIndex:idx_memberships_list_user" json:"user_id"`
	InviteEmail      *string          `gorm:"type:varchar(100);uniqueIndex:idx_memberships_list_email" json:"invite_email,omitempty"`
	Role             ListRole         `gorm:"type:varchar(20);not null;default:'contributor'" json:"role"`
	InvitationStatus InvitationStatus `gorm:"type:varchar(10);not null;default:'pending'" json:"invitation_status"`
	IsActive         bool             `gorm:"not null;default:false" json:"is_active"`
	InvitedAt        time.Time        `json:"invited_at"`

	// Relations
	Tasklist Tasklist `gorm:"foreignKey:ListID" json:"tasklist,omitempty"`
	User     *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
