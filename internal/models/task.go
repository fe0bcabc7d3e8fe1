package models

import "time"

type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "not_started"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// statusRank orders statuses along the only allowed direction of travel.
var statusRank = map[TaskStatus]int{
	TaskStatusNotStarted: 0,
	TaskStatusInProgress: 1,
	TaskStatusDone:       2,
}

// IsValid reports whether the status is one of the known values.
func (s TaskStatus) IsValid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is a forward
// transition. Staying in place is allowed, moving backward is not.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to >= from
}

type Task struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	ListID      uint64     `gorm:"not null;index" json:"list_id"`
	Description string     `gorm:"type:varchar(100);not null" json:"description"`
	Priority    int        `gorm:"not null" json:"priority"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'not_started'" json:"status"`
	Deadline    time.Time  `gorm:"not null" json:"deadline"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`

	// Relations
	Tasklist Tasklist `gorm:"foreignKey:ListID" json:"tasklist,omitempty"`
}
