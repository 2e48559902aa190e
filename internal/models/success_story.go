package models

import "time"

type SuccessStory struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	GoalID    uint64    `gorm:"not null;index" json:"goal_id"`
	UserID    uint64    `gorm:"not null" json:"user_id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
