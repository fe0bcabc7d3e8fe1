package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes that AutoMigrate does not
// derive from struct tags.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Role lookups run on every authorization check.
		{"memberships", "idx_memberships_user_active", "user_id, is_active"},
		{"memberships", "idx_memberships_list_active", "list_id, is_active"},

		// Pending-invitation listing for a user.
		{"memberships", "idx_memberships_user_status", "user_id, invitation_status"},

		// Task board ordering.
		{"tasks", "idx_tasks_list_active", "list_id, is_active"},
		{"tasks", "idx_tasks_priority_deadline", "priority, deadline"},

		// Deactivated-account lookups compare ciphertext directly.
		{"deleted_users", "idx_deleted_users_email_enc", "email_encrypted"},
		{"deleted_users", "idx_deleted_users_username_enc", "username_encrypted"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM information_schema.statistics
			WHERE table_name = ? AND index_name = ?
		`, idx.table, idx.name).Scan(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
