package constants

import "time"

const (
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "taskly_session"

	// ContextKeyUserID is the key under which the authenticated user's ID is
	// stored in both the session and the gin context.
	ContextKeyUserID = "user_id"
)

const (
	MinPasswordLength = 8
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

const (
	MinTaskPriority = 1
	MaxTaskPriority = 3
)

// DefaultProfileImage is assigned to new accounts and never deleted from the
// image host.
const DefaultProfileImage = "https://res.cloudinary.com/tasklyhq/image/upload/v1716381152/default_profile.jpg"

// ResetTokenTTL is how long a password reset token stays valid.
const ResetTokenTTL = time.Hour
