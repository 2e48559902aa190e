package dto

import (
	"time"

	"github.com/yukikurage/goal-community-api/internal/models"
	"github.com/yukikurage/goal-community-api/internal/repository"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Email    string `json:"email,omitempty"`
	Username string `json:"userName"`
}

// GoalDTO represents a goal in API responses
type GoalDTO struct {
	ID          uint64            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	CreatedBy   uint64            `json:"created_by"`
	Status      models.GoalStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}

// GoalListItemDTO is a goal annotated for the requesting user
type GoalListItemDTO struct {
	GoalDTO
	Joined    bool  `json:"joined"`
	UserVoted bool  `json:"user_voted"`
	VoteCount int64 `json:"vote_count"`
}

// GoalListResponse represents a paginated list of goals
type GoalListResponse struct {
	Goals []GoalListItemDTO `json:"goals"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// MembershipDTO represents a user's membership in a goal
type MembershipDTO struct {
	GoalID   uint64                  `json:"goal_id"`
	UserID   uint64                  `json:"user_id"`
	Role     models.GoalRole         `json:"role"`
	Status   models.MembershipStatus `json:"status"`
	JoinedAt time.Time               `json:"joined_at"`
}

// TipSummaryDTO is a tip as shown on the goal detail page
type TipSummaryDTO struct {
	ID               uint64 `json:"id"`
	Title            string `json:"title"`
	Content          string `json:"content"`
	Owner            string `json:"owner"`
	NumberOfUpVote   int64  `json:"numberOfUpVote"`
	NumberOfDownVote int64  `json:"numberOfDownVote"`
}

// StorySummaryDTO is a success story as shown on the goal detail page
type StorySummaryDTO struct {
	ID      uint64 `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Owner   string `json:"owner"`
}

// GoalDetailDTO represents the assembled goal detail
type GoalDetailDTO struct {
	ID                uint64            `json:"id"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	Status            models.GoalStatus `json:"status"`
	UserName          string            `json:"userName"`
	MemberCount       int64             `json:"memberCount"`
	AccomplishedCount int64             `json:"accomplishedCount"`
	VoteCount         int64             `json:"voteCount"`
	Tips              []TipSummaryDTO   `json:"tips"`
	SuccessStories    []StorySummaryDTO `json:"successStories"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
	}
}

// ToGoalDTO converts a Goal model to GoalDTO
func ToGoalDTO(goal models.Goal) GoalDTO {
	return GoalDTO{
		ID:          goal.ID,
		Name:        goal.Name,
		Description: goal.Description,
		CreatedBy:   goal.CreatedBy,
		Status:      goal.Status,
		CreatedAt:   goal.CreatedAt,
	}
}

// ToGoalDTOs converts a slice of goals
func ToGoalDTOs(goals []models.Goal) []GoalDTO {
	out := make([]GoalDTO, len(goals))
	for i, g := range goals {
		out[i] = ToGoalDTO(g)
	}
	return out
}

// ToGoalListResponse converts annotated rows to a paginated response
func ToGoalListResponse(rows []repository.GoalListRow, total int64, page, limit int) GoalListResponse {
	items := make([]GoalListItemDTO, len(rows))
	for i, row := range rows {
		items[i] = GoalListItemDTO{
			GoalDTO:   ToGoalDTO(row.Goal),
			Joined:    row.Joined,
			UserVoted: row.UserVoted,
			VoteCount: row.VoteCount,
		}
	}

	return GoalListResponse{
		Goals: items,
		Total: total,
		Page:  page,
		Limit: limit,
	}
}

// ToMembershipDTO converts a GoalMember model to MembershipDTO
func ToMembershipDTO(member models.GoalMember) MembershipDTO {
	return MembershipDTO{
		GoalID:   member.GoalID,
		UserID:   member.UserID,
		Role:     member.Role,
		Status:   member.Status,
		JoinedAt: member.JoinedAt,
	}
}

// ToTipSummaryDTOs converts tip summaries
func ToTipSummaryDTOs(tips []repository.TipSummary) []TipSummaryDTO {
	out := make([]TipSummaryDTO, len(tips))
	for i, t := range tips {
		out[i] = TipSummaryDTO{
			ID:               t.ID,
			Title:            t.Title,
			Content:          t.Content,
			Owner:            t.Owner,
			NumberOfUpVote:   t.UpVotes,
			NumberOfDownVote: t.DownVotes,
		}
	}
	return out
}

// ToStorySummaryDTOs converts story summaries
func ToStorySummaryDTOs(stories []repository.StorySummary) []StorySummaryDTO {
	out := make([]StorySummaryDTO, len(stories))
	for i, s := range stories {
		out[i] = StorySummaryDTO{
			ID:      s.ID,
			Title:   s.Title,
			Content: s.Content,
			Owner:   s.Owner,
		}
	}
	return out
}
