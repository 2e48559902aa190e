package models

import "time"

type ChatMessage struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	GoalID    uint64    `gorm:"not null;index:idx_chat_goal_created,priority:1" json:"goal_id"`
	UserID    uint64    `gorm:"not null" json:"user_id"`
	Text      string    `gorm:"column:message_text;type:text;not null" json:"message_text"`
	CreatedAt time.Time `gorm:"index:idx_chat_goal_created,priority:2" json:"created_at"`
}
