package models

import "time"

// DeletedUser archives the encrypted identity of a deactivated account.
// Rows exist only between deactivation and either reactivation or permanent
// erasure. The ciphertext columns double as lookup keys, which requires the
// encryption scheme to be deterministic.
type DeletedUser struct {
	ID                uint64    `gorm:"primarykey" json:"id"`
	UserID            uint64    `gorm:"not null;index" json:"user_id"`
	EmailEncrypted    string    `gorm:"type:varchar(255);not null" json:"-"`
	UsernameEncrypted string    `gorm:"type:varchar(255);not null" json:"-"`
	DeletedAt         time.Time `json:"deleted_at"`
}
