package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/tasklyhq/taskly-api/internal/constants"
	"github.com/tasklyhq/taskly-api/internal/dto"
	apierrors "github.com/tasklyhq/taskly-api/internal/errors"
	"github.com/tasklyhq/taskly-api/internal/middleware"
	"github.com/tasklyhq/taskly-api/internal/services"
)

// AccountHandler coordinates profile and account lifecycle HTTP handlers.
type AccountHandler struct {
	accountService *services.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService *services.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// UpdateUsername changes the current user's username.
func (h *AccountHandler) UpdateUsername(c *gin.Context) {
	type UpdateUsernameRequest struct {
		Username string `json:"username" binding:"required"`
	}

	var req UpdateUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserID(c)
	user, err := h.accountService.UpdateUsername(userID, req.Username)
	if err != nil {
		respondAccountError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateEmail changes the current user's email address.
func (h *AccountHandler) UpdateEmail(c *gin.Context) {
	type UpdateEmailRequest struct {
		Email string `json:"email" binding:"required,email"`
	}

	var req UpdateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserID(c)
	user, err := h.accountService.UpdateEmail(userID, req.Email)
	if err != nil {
		respondAccountError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdatePassword changes the current user's password after verifying the
// current one.
func (h *AccountHandler) UpdatePassword(c *gin.Context) {
	type UpdatePasswordRequest struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserID(c)
	if err := h.accountService.UpdatePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondAccountError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password updated",
	})
}

// UpdateProfileImage replaces the current user's profile image with an
// uploaded file.
func (h *AccountHandler) UpdateProfileImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		apierrors.BadRequest(c, "Image file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		apierrors.BadRequest(c, "Failed to read image file")
		return
	}
	defer file.Close()

	userID, _ := middleware.GetUserID(c)
	user, err := h.accountService.UpdateProfileImage(c.Request.Context(), userID, file)
	if err != nil {
		respondAccountError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// Deactivate anonymizes the current user's account and ends the session.
func (h *AccountHandler) Deactivate(c *gin.Context) {
	type DeactivateRequest struct {
		Password string `json:"password" binding:"required"`
	}

	var req DeactivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserID(c)
	result, err := h.accountService.Deactivate(userID, req.Password)
	if err != nil {
		respondAccountError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to end session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Account deactivated",
		"warnings": result.Warnings,
	})
}

// Reactivate restores a previously deactivated account and signs the user
// back in.
func (h *AccountHandler) Reactivate(c *gin.Context) {
	type ReactivateRequest struct {
		EmailOrUsername string `json:"email_or_username" binding:"required"`
		Password        string `json:"password" binding:"required"`
	}

	var req ReactivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.accountService.Reactivate(req.EmailOrUsername, req.Password)
	if err != nil {
		respondAccountError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func respondAccountError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrUsernameLength):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrAccountDeactivated):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrImageHostNotConfigured):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrImageUploadFailed):
		apierrors.InternalError(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
