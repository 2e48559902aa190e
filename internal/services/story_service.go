package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yukikurage/goal-community-api/internal/models"
	"github.com/yukikurage/goal-community-api/internal/repository"
	"github.com/yukikurage/goal-community-api/internal/utils"
)

// StoryService handles success stories
type StoryService struct {
	storyRepo repository.StoryRepository
	goalRepo  repository.GoalRepository
}

// NewStoryService creates a new StoryService
func NewStoryService(storyRepo repository.StoryRepository, goalRepo repository.GoalRepository) *StoryService {
	return &StoryService{
		storyRepo: storyRepo,
		goalRepo:  goalRepo,
	}
}

// AddStoryInput represents input for adding a success story
type AddStoryInput struct {
	GoalID  uint64
	UserID  uint64
	Title   string
	Content string
}

// AddSuccessStory appends a success story to a goal
func (s *StoryService) AddSuccessStory(ctx context.Context, input AddStoryInput) (*models.SuccessStory, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if content == "" {
		return nil, ErrContentRequired
	}

	if err := ensureGoal(ctx, s.goalRepo, input.GoalID); err != nil {
		return nil, err
	}

	story := &models.SuccessStory{
		GoalID:  input.GoalID,
		UserID:  input.UserID,
		Title:   title,
		Content: content,
	}
	if err := s.storyRepo.Create(ctx, story); err != nil {
		return nil, fmt.Errorf("failed to create success story: %w", err)
	}
	return story, nil
}

// ListSuccessStories lists a goal's success stories, newest first
func (s *StoryService) ListSuccessStories(ctx context.Context, goalID uint64, params utils.PaginationParams) ([]models.SuccessStory, int64, error) {
	if err := ensureGoal(ctx, s.goalRepo, goalID); err != nil {
		return nil, 0, err
	}

	stories, total, err := s.storyRepo.List(ctx, goalID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list success stories: %w", err)
	}
	return stories, total, nil
}
