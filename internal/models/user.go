package models

import "time"

type User struct {
	ID           uint64     `gorm:"primarykey" json:"id"`
	Username     string     `gorm:"type:varchar(30);uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	Image        string     `gorm:"type:varchar(255)" json:"image"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login"`

	ResetTokenHash   *string    `gorm:"type:varchar(64)" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	// Relations
	Memberships []Membership `gorm:"foreignKey:UserID" json:"-"`
}
