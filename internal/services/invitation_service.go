package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tasklyhq/taskly-api/internal/mailer"
	"github.com/tasklyhq/taskly-api/internal/models"
	"github.com/tasklyhq/taskly-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNotAuthorized       = errors.New("you do not have permission to perform this action")
	ErrListNotFound        = errors.New("tasklist not found")
	ErrAlreadyMember       = errors.New("this user is already a member of the list")
	ErrDuplicateInvitation = errors.New("an invitation for this address already exists")
	ErrInviteNotFound      = errors.New("invite not found or no pending invitation")
	ErrInvalidInviteRole   = errors.New("invitations can only grant the admin or contributor role")
)

// InvitationService orchestrates the invitation lifecycle: creating invites
// for registered and unregistered addresses, accepting, and declining.
type InvitationService struct {
	membershipRepo repository.MembershipRepository
	userRepo       repository.UserRepository
	tasklistRepo   repository.TasklistRepository
	mail           mailer.Mailer
	publicBaseURL  string
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(
	membershipRepo repository.MembershipRepository,
	userRepo repository.UserRepository,
	tasklistRepo repository.TasklistRepository,
	mail mailer.Mailer,
	publicBaseURL string,
) *InvitationService {
	return &InvitationService{
		membershipRepo: membershipRepo,
		userRepo:       userRepo,
		tasklistRepo:   tasklistRepo,
		mail:           mail,
		publicBaseURL:  publicBaseURL,
	}
}

// InviteInput represents a new invitation.
type InviteInput struct {
	CallerID uint64
	ListID   uint64
	Email    string
	Role     models.ListRole
}

// InviteResult reports a created invitation. EmailSent is false when the
// notification could not be delivered; the invitation itself still exists
// and is visible in-app.
type InviteResult struct {
	Membership *models.Membership
	EmailSent  bool
}

// Invite creates a pending membership for the given address.
//
// When the address belongs to a registered, active user the membership is
// bound to that user immediately; otherwise it carries the raw address until
// signup claims it. The caller's role is read fresh from the store, not
// taken from the request.
func (s *InvitationService) Invite(input InviteInput) (*InviteResult, error) {
	if input.Role != models.RoleAdmin && input.Role != models.RoleContributor {
		return nil, ErrInvalidInviteRole
	}

	callerRole, err := s.membershipRepo.GetRole(input.CallerID, input.ListID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify caller role: %w", err)
	}
	if callerRole == nil || (*callerRole != models.RoleOwner && *callerRole != models.RoleAdmin) {
		return nil, ErrNotAuthorized
	}

	list, err := s.tasklistRepo.FindActiveByID(input.ListID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to find tasklist: %w", err)
	}

	caller, err := s.userRepo.FindByID(input.CallerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find inviting user: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	membership := &models.Membership{
		ListID:           input.ListID,
		Role:             input.Role,
		InvitationStatus: models.InvitationPending,
		IsActive:         false,
		InvitedAt:        time.Now(),
	}

	invitee, err := s.userRepo.FindActiveByEmail(email)
	switch {
	case err == nil:
		existingRole, err := s.membershipRepo.GetRole(invitee.ID, input.ListID)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing membership: %w", err)
		}
		if existingRole != nil {
			return nil, ErrAlreadyMember
		}
		membership.UserID = &invitee.ID
	case errors.Is(err, gorm.ErrRecordNotFound):
		membership.InviteEmail = &email
	default:
		return nil, fmt.Errorf("failed to resolve invitee: %w", err)
	}

	if err := s.membershipRepo.Add(membership); err != nil {
		if errors.Is(err, repository.ErrDuplicateMembership) {
			return nil, ErrDuplicateInvitation
		}
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	// The membership is durable at this point. Email delivery failure is
	// surfaced as a warning, never a rollback: the invite stays visible
	// in-app even if the message never arrived.
	var msg mailer.Message
	if invitee != nil {
		msg = mailer.InviteExistingUser(list.Title, caller.Username, s.publicBaseURL+"/invitations")
	} else {
		msg = mailer.InviteNewUser(list.Title, caller.Username, s.publicBaseURL+"/signup")
	}
	emailSent := s.mail.Send(email, msg.Subject, msg.PlainText, msg.HTMLBody) == nil

	return &InviteResult{Membership: membership, EmailSent: emailSent}, nil
}

// PendingInvitations returns the tasklists the user has been invited to but
// has not yet accepted.
func (s *InvitationService) PendingInvitations(userID uint64) ([]repository.PendingInvitation, error) {
	invitations, err := s.membershipRepo.ListPendingInvitations(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending invitations: %w", err)
	}
	return invitations, nil
}

// Accept transitions the caller's pending membership to accepted and active.
// Both fields flip in a single update.
func (s *InvitationService) Accept(callerID, listID uint64) error {
	membership, err := s.membershipRepo.FindByListAndUser(listID, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		return fmt.Errorf("failed to find invitation: %w", err)
	}

	if membership.InvitationStatus != models.InvitationPending {
		return ErrInviteNotFound
	}

	membership.InvitationStatus = models.InvitationAccepted
	membership.IsActive = true
	if err := s.membershipRepo.Update(membership); err != nil {
		return fmt.Errorf("failed to accept invitation: %w", err)
	}

	return nil
}

// Decline removes the caller's pending membership outright.
func (s *InvitationService) Decline(callerID, listID uint64) error {
	membership, err := s.membershipRepo.FindByListAndUser(listID, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		return fmt.Errorf("failed to find invitation: %w", err)
	}

	if membership.InvitationStatus != models.InvitationPending {
		return ErrInviteNotFound
	}

	deleted, err := s.membershipRepo.DeleteByListAndUser(listID, callerID)
	if err != nil {
		return fmt.Errorf("failed to decline invitation: %w", err)
	}
	if !deleted {
		return ErrInviteNotFound
	}

	return nil
}
