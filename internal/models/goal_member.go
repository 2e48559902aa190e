package models

import "time"

type GoalRole string

const (
	RoleOwner  GoalRole = "owner"
	RoleMember GoalRole = "member"
)

type MembershipStatus string

const (
	MembershipJoined    MembershipStatus = "JOINED"
	MembershipCompleted MembershipStatus = "COMPLETED"
)

// GoalMember is unique per (goal, user) through its composite primary key.
type GoalMember struct {
	GoalID   uint64           `gorm:"primarykey;autoIncrement:false" json:"goal_id"`
	UserID   uint64           `gorm:"primarykey;autoIncrement:false;index" json:"user_id"`
	Role     GoalRole         `gorm:"type:varchar(20);not null" json:"role"`
	Status   MembershipStatus `gorm:"type:varchar(20);not null;default:'JOINED'" json:"status"`
	JoinedAt time.Time        `json:"joined_at"`
}
