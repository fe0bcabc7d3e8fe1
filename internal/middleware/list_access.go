package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tasklyhq/taskly-api/internal/database"
	apierrors "github.com/tasklyhq/taskly-api/internal/errors"
	"github.com/tasklyhq/taskly-api/internal/models"
)

const contextKeyListID = "list_id"

// RequireListAccess checks that the list exists and the current user holds an
// active membership in it. The parsed list ID is stored in the context.
//
// Missing lists and missing memberships both answer 404 so that outsiders
// cannot probe which list IDs exist.
func RequireListAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		listIDStr := c.Param("id")
		listID, err := strconv.ParseUint(listIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid list ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var list models.Tasklist
		if err := database.GetDB().
			Where("id = ? AND is_active = ?", listID, true).
			First(&list).Error; err != nil {
			apierrors.NotFound(c, "List not found")
			c.Abort()
			return
		}

		var membership models.Membership
		err = database.GetDB().
			Where("list_id = ? AND user_id = ? AND is_active = ?", listID, userID, true).
			First(&membership).Error
		if err != nil {
			apierrors.NotFound(c, "List not found")
			c.Abort()
			return
		}

		c.Set(contextKeyListID, listID)
		c.Next()
	}
}

// GetListID retrieves the list ID stored by RequireListAccess.
func GetListID(c *gin.Context) (uint64, bool) {
	listID, exists := c.Get(contextKeyListID)
	if !exists {
		return 0, false
	}
	id, ok := listID.(uint64)
	return id, ok
}
