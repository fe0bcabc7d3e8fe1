package database

import "gorm.io/gorm"

// Active restricts a query to rows with is_active = true. Soft-deleted users,
// tasklists, tasks and memberships all share this flag.
func Active(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}
