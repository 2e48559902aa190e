package dto

import (
	"time"

	"github.com/yukikurage/goal-community-api/internal/models"
	"github.com/yukikurage/goal-community-api/internal/repository"
)

// TipDTO represents a tip in API responses
type TipDTO struct {
	ID        uint64    `json:"id"`
	GoalID    uint64    `json:"goal_id"`
	UserID    uint64    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	VoteCount int64     `json:"vote_count"`
	CreatedAt time.Time `json:"created_at"`
}

// TipListResponse represents a paginated list of tips
type TipListResponse struct {
	Tips  []TipDTO `json:"tips"`
	Page  int      `json:"page"`
	Limit int      `json:"limit"`
	Total int64    `json:"total"`
}

// SuccessStoryDTO represents a success story in API responses
type SuccessStoryDTO struct {
	ID        uint64    `json:"id"`
	GoalID    uint64    `json:"goal_id"`
	UserID    uint64    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SuccessStoryListResponse represents a paginated list of success stories
type SuccessStoryListResponse struct {
	SuccessStories []SuccessStoryDTO `json:"successStories"`
	Page           int               `json:"page"`
	Limit          int               `json:"limit"`
	Total          int64             `json:"total"`
}

// ToTipDTO converts a Tip model to TipDTO
func ToTipDTO(tip models.Tip, voteCount int64) TipDTO {
	return TipDTO{
		ID:        tip.ID,
		GoalID:    tip.GoalID,
		UserID:    tip.UserID,
		Title:     tip.Title,
		Content:   tip.Content,
		VoteCount: voteCount,
		CreatedAt: tip.CreatedAt,
	}
}

// ToTipListResponse converts tip rows to a paginated response
func ToTipListResponse(rows []repository.TipListRow, total int64, page, limit int) TipListResponse {
	items := make([]TipDTO, len(rows))
	for i, row := range rows {
		items[i] = ToTipDTO(row.Tip, row.VoteCount)
	}
	return TipListResponse{Tips: items, Page: page, Limit: limit, Total: total}
}

// ToSuccessStoryDTO converts a SuccessStory model
func ToSuccessStoryDTO(story models.SuccessStory) SuccessStoryDTO {
	return SuccessStoryDTO{
		ID:        story.ID,
		GoalID:    story.GoalID,
		UserID:    story.UserID,
		Title:     story.Title,
		Content:   story.Content,
		CreatedAt: story.CreatedAt,
	}
}

// ToSuccessStoryListResponse converts stories to a paginated response
func ToSuccessStoryListResponse(stories []models.SuccessStory, total int64, page, limit int) SuccessStoryListResponse {
	items := make([]SuccessStoryDTO, len(stories))
	for i, s := range stories {
		items[i] = ToSuccessStoryDTO(s)
	}
	return SuccessStoryListResponse{SuccessStories: items, Page: page, Limit: limit, Total: total}
}
