package models

import "time"

// GoalVote holds at most one vote per user per goal. Value is always +1.
type GoalVote struct {
	GoalID    uint64    `gorm:"primarykey;autoIncrement:false" json:"goal_id"`
	UserID    uint64    `gorm:"primarykey;autoIncrement:false" json:"user_id"`
	Value     int       `gorm:"not null" json:"vote_value"`
	CreatedAt time.Time `json:"created_at"`
}
