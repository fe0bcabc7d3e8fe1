package models

import "time"

type Tasklist struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Title       string    `gorm:"type:varchar(100);not null" json:"title"`
	Description string    `gorm:"type:varchar(255)" json:"description"`
	CreatedBy   *uint64   `json:"created_by"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`

	// Relations
	Memberships []Membership `gorm:"foreignKey:ListID" json:"memberships,omitempty"`
	Tasks       []Task       `gorm:"foreignKey:ListID" json:"tasks,omitempty"`
}
