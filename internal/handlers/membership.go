package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tasklyhq/taskly-api/internal/dto"
	apierrors "github.com/tasklyhq/taskly-api/internal/errors"
	"github.com/tasklyhq/taskly-api/internal/middleware"
	"github.com/tasklyhq/taskly-api/internal/models"
	"github.com/tasklyhq/taskly-api/internal/services"
)

// MembershipHandler coordinates the contributor roster, invitations, role
// changes and ownership transfer HTTP handlers.
type MembershipHandler struct {
	membershipService *services.MembershipService
	invitationService *services.InvitationService
}

// NewMembershipHandler creates a new MembershipHandler.
func NewMembershipHandler(membershipService *services.MembershipService, invitationService *services.InvitationService) *MembershipHandler {
	return &MembershipHandler{
		membershipService: membershipService,
		invitationService: invitationService,
	}
}

// Contributors returns the active members of a tasklist.
func (h *MembershipHandler) Contributors(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	listID, _ := middleware.GetListID(c)

	contributors, err := h.membershipService.ListContributors(userID, listID)
	if err != nil {
		respondMembershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToContributorDTOs(contributors))
}

// Invite creates a pending invitation for an email address.
func (h *MembershipHandler) Invite(c *gin.Context) {
	type InviteRequest struct {
		Email string          `json:"email" binding:"required,email"`
		Role  models.ListRole `json:"role" binding:"required"`
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserID(c)
	listID, _ := middleware.GetListID(c)

	result, err := h.invitationService.Invite(services.InviteInput{
		CallerID: userID,
		ListID:   listID,
		Email:    req.Email,
		Role:     req.Role,
	})
	if err != nil {
		respondMembershipError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Invitation created",
		"email_sent": result.EmailSent,
	})
}

// UpdateRoles applies a batch of role changes. Failed changes are reported
// per membership; successful ones stick.
func (h *MembershipHandler) UpdateRoles(c *gin.Context) {
	type RoleChangeRequest struct {
		MembershipID uint64          `json:"membership_id" binding:"required"`
		Role         models.ListRole `json:"role" binding:"required"`
	}
	type UpdateRolesRequest struct {
		Changes []RoleChangeRequest `json:"changes" binding:"required"`
	}

	var req UpdateRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserID(c)
	listID, _ := middleware.GetListID(c)

	changes := make([]services.RoleChange, len(req.Changes))
	for i, change := range req.Changes {
		changes[i] = services.RoleChange{
			MembershipID: change.MembershipID,
			Role:         change.Role,
		}
	}

	failures, err := h.membershipService.UpdateRoles(userID, listID, changes)
	if err != nil {
		respondMembershipError(c, err)
		return
	}

	failureDTOs := make([]gin.H, len(failures))
	for i, failure := range failures {
		failureDTOs[i] = gin.H{
			"membership_id": failure.MembershipID,
			"reason":        failure.Reason,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"applied":  len(changes) - len(failures),
		"failures": failureDTOs,
	})
}

// TransferOwnership hands the list over to another member and demotes the
// current owner to admin.
func (h *MembershipHandler) TransferOwnership(c *gin.Context) {
	type TransferRequest struct {
		NewOwnerID uint64 `json:"new_owner_id" binding:"required"`
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserID(c)
	listID, _ := middleware.GetListID(c)

	if err := h.membershipService.TransferOwnership(userID, listID, req.NewOwnerID); err != nil {
		respondMembershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ownership transferred",
	})
}

// Leave removes the current user's own membership from a list.
func (h *MembershipHandler) Leave(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	listID, _ := middleware.GetListID(c)

	if err := h.membershipService.LeaveList(userID, listID); err != nil {
		respondMembershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Left the list",
	})
}

// PendingInvitations returns the lists the current user has been invited to
// but has not yet answered.
func (h *MembershipHandler) PendingInvitations(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	invitations, err := h.invitationService.PendingInvitations(userID)
	if err != nil {
		respondMembershipError(c, err)
		return
	}

	dtos := make([]dto.PendingInvitationDTO, len(invitations))
	for i, invitation := range invitations {
		dtos[i] = dto.ToPendingInvitationDTO(invitation)
	}

	c.JSON(http.StatusOK, dtos)
}

// AcceptInvitation activates the current user's pending membership.
func (h *MembershipHandler) AcceptInvitation(c *gin.Context) {
	listID, err := strconv.ParseUint(c.Param("listId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid list ID")
		return
	}

	userID, _ := middleware.GetUserID(c)
	if err := h.invitationService.Accept(userID, listID); err != nil {
		respondMembershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invitation accepted",
	})
}

// DeclineInvitation removes the current user's pending membership.
func (h *MembershipHandler) DeclineInvitation(c *gin.Context) {
	listID, err := strconv.ParseUint(c.Param("listId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid list ID")
		return
	}

	userID, _ := middleware.GetUserID(c)
	if err := h.invitationService.Decline(userID, listID); err != nil {
		respondMembershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invitation declined",
	})
}

func respondMembershipError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInviteRole), errors.Is(err, services.ErrInvalidRole):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAlreadyMember), errors.Is(err, services.ErrDuplicateInvitation):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrListNotFound),
		errors.Is(err, services.ErrInviteNotFound),
		errors.Is(err, services.ErrMembershipNotFound),
		errors.Is(err, services.ErrTargetNotMember):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotAuthorized),
		errors.Is(err, services.ErrNotOwner),
		errors.Is(err, services.ErrOwnerCannotLeave),
		errors.Is(err, services.ErrCannotChangeOwner):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTransferFailed):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
