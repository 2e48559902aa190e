package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/goal-community-api/internal/models"
	"github.com/yukikurage/goal-community-api/internal/repository"
	"github.com/yukikurage/goal-community-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTipNotFound       = errors.New("Tip not found")
	ErrInvalidTipVote    = errors.New("voteValue must be +1 or -1.")
	ErrTitleRequired     = errors.New("title is required")
	ErrContentRequired   = errors.New("content is required")
	ErrAIServiceDisabled = errors.New("AI service is not configured")
	ErrAINoTipsGenerated = errors.New("AI did not generate any tips")
)

// TipService handles tips and tip votes
type TipService struct {
	tipRepo   repository.TipRepository
	goalRepo  repository.GoalRepository
	aiService *AIService
}

// NewTipService creates a new TipService. aiService may be nil.
func NewTipService(tipRepo repository.TipRepository, goalRepo repository.GoalRepository, aiService *AIService) *TipService {
	return &TipService{
		tipRepo:   tipRepo,
		goalRepo:  goalRepo,
		aiService: aiService,
	}
}

// AddTipInput represents input for adding a tip
type AddTipInput struct {
	GoalID  uint64
	UserID  uint64
	Title   string
	Content string
}

// AddTip adds a tip to an existing goal
func (s *TipService) AddTip(ctx context.Context, input AddTipInput) (*models.Tip, error) {
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

	tip := &models.Tip{
		GoalID:  input.GoalID,
		UserID:  input.UserID,
		Title:   title,
		Content: content,
	}
	if err := s.tipRepo.Create(ctx, tip); err != nil {
		return nil, fmt.Errorf("failed to create tip: %w", err)
	}
	return tip, nil
}

// ListTips lists a goal's tips with their net vote counts
func (s *TipService) ListTips(ctx context.Context, goalID uint64, searchTerm string, params utils.PaginationParams) ([]repository.TipListRow, int64, error) {
	if err := ensureGoal(ctx, s.goalRepo, goalID); err != nil {
		return nil, 0, err
	}

	rows, total, err := s.tipRepo.List(ctx, goalID, strings.TrimSpace(searchTerm), params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tips: %w", err)
	}
	return rows, total, nil
}

// VoteTip records the user's +1 or -1 on a tip, replacing any earlier vote
func (s *TipService) VoteTip(ctx context.Context, goalID, tipID, userID uint64, value int) error {
	if value != 1 && value != -1 {
		return ErrInvalidTipVote
	}

	tip, err := s.tipRepo.FindByID(ctx, tipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTipNotFound
		}
		return fmt.Errorf("failed to find tip: %w", err)
	}
	if tip.GoalID != goalID {
		return ErrTipNotFound
	}

	vote := &models.TipVote{
		TipID:     tipID,
		UserID:    userID,
		Value:     value,
		CreatedAt: time.Now(),
	}
	if err := s.tipRepo.UpsertVote(ctx, vote); err != nil {
		return fmt.Errorf("failed to vote on tip: %w", err)
	}
	return nil
}

// SuggestTips drafts tips for a goal with the AI service. Nothing is persisted.
func (s *TipService) SuggestTips(ctx context.Context, goalID uint64) ([]SuggestedTip, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceDisabled
	}

	goal, err := s.goalRepo.FindByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to find goal: %w", err)
	}

	drafts, err := s.aiService.SuggestTips(ctx, goal.Name, goal.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest tips: %w", err)
	}

	valid := make([]SuggestedTip, 0, len(drafts))
	for _, d := range drafts {
		if strings.TrimSpace(d.Title) == "" || strings.TrimSpace(d.Content) == "" {
			continue
		}
		valid = append(valid, d)
	}
	if len(valid) == 0 {
		return nil, ErrAINoTipsGenerated
	}
	return valid, nil
}

// ensureGoal maps a missing goal to ErrGoalNotFound
func ensureGoal(ctx context.Context, goalRepo repository.GoalRepository, goalID uint64) error {
	if _, err := goalRepo.FindByID(ctx, goalID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGoalNotFound
		}
		return fmt.Errorf("failed to find goal: %w", err)
	}
	return nil
}
