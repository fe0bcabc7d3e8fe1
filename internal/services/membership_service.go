package services

import (
	"errors"
	"fmt"

	"github.com/tasklyhq/taskly-api/internal/models"
	"github.com/tasklyhq/taskly-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNotOwner           = errors.New("only the list owner can perform this action")
	ErrOwnerCannotLeave   = errors.New("the owner cannot leave the list; transfer ownership first")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrTargetNotMember    = errors.New("the selected user is not an active member of this list")
	ErrCannotChangeOwner  = errors.New("the owner's role cannot be changed here")
	ErrInvalidRole        = errors.New("role must be admin or contributor")
	ErrTransferFailed     = errors.New("ownership could not be transferred")
)

// MembershipService manages roles and ownership within a tasklist.
//
// Every operation re-reads the caller's role at mutation time. A role
// submitted by the client is never trusted; it may have changed between page
// render and submission.
type MembershipService struct {
	membershipRepo repository.MembershipRepository
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(membershipRepo repository.MembershipRepository) *MembershipService {
	return &MembershipService{membershipRepo: membershipRepo}
}

// ListContributors returns the active members of a list. Any active member
// may view the roster.
func (s *MembershipService) ListContributors(callerID, listID uint64) ([]repository.ContributorRow, error) {
	callerRole, err := s.membershipRepo.GetRole(callerID, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify caller role: %w", err)
	}
	if callerRole == nil {
		return nil, ErrNotAuthorized
	}

	contributors, err := s.membershipRepo.ListContributors(listID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributors: %w", err)
	}
	return contributors, nil
}

// RoleChange is one requested role update, addressed by membership ID.
type RoleChange struct {
	MembershipID uint64
	Role         models.ListRole
}

// RoleChangeFailure reports one change that could not be applied.
type RoleChangeFailure struct {
	MembershipID uint64
	Reason       string
}

// UpdateRoles applies a batch of role changes with best-effort semantics:
// each change succeeds or fails on its own, failures are collected, and
// successes are not rolled back. Owner rows are untouchable; ownership moves
// only through TransferOwnership.
func (s *MembershipService) UpdateRoles(callerID, listID uint64, changes []RoleChange) ([]RoleChangeFailure, error) {
	callerRole, err := s.membershipRepo.GetRole(callerID, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify caller role: %w", err)
	}
	if callerRole == nil || (*callerRole != models.RoleOwner && *callerRole != models.RoleAdmin) {
		return nil, ErrNotAuthorized
	}

	var failures []RoleChangeFailure
	for _, change := range changes {
		if err := s.applyRoleChange(listID, change); err != nil {
			failures = append(failures, RoleChangeFailure{
				MembershipID: change.MembershipID,
				Reason:       err.Error(),
			})
		}
	}

	return failures, nil
}

func (s *MembershipService) applyRoleChange(listID uint64, change RoleChange) error {
	if change.Role != models.RoleAdmin && change.Role != models.RoleContributor {
		return ErrInvalidRole
	}

	membership, err := s.membershipRepo.FindByID(change.MembershipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMembershipNotFound
		}
		return fmt.Errorf("failed to find membership: %w", err)
	}

	if membership.ListID != listID {
		return ErrMembershipNotFound
	}
	if membership.Role == models.RoleOwner {
		return ErrCannotChangeOwner
	}
	if membership.Role == change.Role {
		return nil
	}

	if err := s.membershipRepo.UpdateRole(change.MembershipID, change.Role); err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	return nil
}

// TransferOwnership makes newOwnerID the owner of the list and demotes the
// caller to admin. The two role updates are atomic; no intermediate state
// with zero or two owners is ever visible.
func (s *MembershipService) TransferOwnership(callerID, listID, newOwnerID uint64) error {
	callerRole, err := s.membershipRepo.GetRole(callerID, listID)
	if err != nil {
		return fmt.Errorf("failed to verify caller role: %w", err)
	}
	if callerRole == nil || *callerRole != models.RoleOwner {
		return ErrNotOwner
	}

	target, err := s.membershipRepo.FindByListAndUser(listID, newOwnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTargetNotMember
		}
		return fmt.Errorf("failed to find target membership: %w", err)
	}
	if !target.IsActive || target.InvitationStatus != models.InvitationAccepted {
		return ErrTargetNotMember
	}
	if target.Role == models.RoleOwner {
		return ErrTargetNotMember
	}

	if err := s.membershipRepo.TransferOwnership(listID, callerID, newOwnerID); err != nil {
		if errors.Is(err, repository.ErrOwnerMissing) {
			return ErrTransferFailed
		}
		return fmt.Errorf("failed to transfer ownership: %w", err)
	}

	return nil
}

// LeaveList removes the caller's own membership. Owners must transfer
// ownership first; deleting an owner membership directly would leave the
// list ownerless.
func (s *MembershipService) LeaveList(callerID, listID uint64) error {
	callerRole, err := s.membershipRepo.GetRole(callerID, listID)
	if err != nil {
		return fmt.Errorf("failed to verify caller role: %w", err)
	}
	if callerRole == nil {
		return ErrMembershipNotFound
	}
	if *callerRole == models.RoleOwner {
		return ErrOwnerCannotLeave
	}

	deleted, err := s.membershipRepo.DeleteByListAndUser(listID, callerID)
	if err != nil {
		return fmt.Errorf("failed to leave list: %w", err)
	}
	if !deleted {
		return ErrMembershipNotFound
	}

	return nil
}
