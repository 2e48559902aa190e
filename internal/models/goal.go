package models

import "time"

type GoalStatus string

const (
	GoalStatusPending GoalStatus = "PENDING"
	GoalStatusActive  GoalStatus = "ACTIVE"
)

// Goal is a community objective. Status only moves PENDING -> ACTIVE.
type Goal struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	CreatedBy   uint64     `gorm:"not null;index" json:"created_by"`
	Status      GoalStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
