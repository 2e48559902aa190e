package models

import "time"

type Tip struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	GoalID    uint64    `gorm:"not null;index" json:"goal_id"`
	UserID    uint64    `gorm:"not null" json:"user_id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TipVote is unique per (tip, user); Value is +1 or -1.
type TipVote struct {
	TipID     uint64    `gorm:"primarykey;autoIncrement:false" json:"tip_id"`
	UserID    uint64    `gorm:"primarykey;autoIncrement:false" json:"user_id"`
	Value     int       `gorm:"not null" json:"vote_value"`
	CreatedAt time.Time `json:"created_at"`
}
