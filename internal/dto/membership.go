package dto

import (
	"github.com/tasklyhq/taskly-api/internal/models"
	"github.com/tasklyhq/taskly-api/internal/repository"
)

// ContributorDTO represents an active member of a tasklist
type ContributorDTO struct {
	MembershipID uint64          `json:"membership_id"`
	UserID       uint64          `json:"user_id"`
	Username     string          `json:"username"`
	Image        string          `json:"image"`
	Role         models.ListRole `json:"role"`
}

// PendingInvitationDTO represents a tasklist the user has been invited to
// but has not yet accepted
type PendingInvitationDTO struct {
	TasklistDTO
	Contributors []string `json:"contributors"`
}

// ToContributorDTO converts a contributor row to DTO
func ToContributorDTO(row repository.ContributorRow) ContributorDTO {
	return ContributorDTO{
		MembershipID: row.MembershipID,
		UserID:       row.UserID,
		Username:     row.Username,
		Image:        row.Image,
		Role:         row.Role,
	}
}

// ToContributorDTOs converts a slice of contributor rows to DTOs
func ToContributorDTOs(rows []repository.ContributorRow) []ContributorDTO {
	dtos := make([]ContributorDTO, len(rows))
	for i, row := range rows {
		dtos[i] = ToContributorDTO(row)
	}
	return dtos
}

// ToPendingInvitationDTO converts a pending invitation to DTO
func ToPendingInvitationDTO(invitation repository.PendingInvitation) PendingInvitationDTO {
	contributors := invitation.Contributors
	if contributors == nil {
		contributors = []string{}
	}
	return PendingInvitationDTO{
		TasklistDTO:  ToTasklistDTO(invitation.Tasklist),
		Contributors: contributors,
	}
}
