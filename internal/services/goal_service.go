package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/goal-community-api/internal/constants"
	"github.com/yukikurage/goal-community-api/internal/logger"
	"github.com/yukikurage/goal-community-api/internal/models"
	"github.com/yukikurage/goal-community-api/internal/repository"
	"github.com/yukikurage/goal-community-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrGoalNotFound       = errors.New("Goal not found")
	ErrInvalidGoalName    = errors.New("goal name is required")
	ErrAlreadyMember      = errors.New("You are already a member of this goal.")
	ErrMembershipNotFound = errors.New("Membership not found or goal not joined")
	ErrAlreadyCompleted   = errors.New("You have already completed this goal.")
	ErrNoVoteToRemove     = errors.New("No existing vote to remove")
	ErrInvalidVoteAction  = errors.New("Invalid action. Use 'upvote' or 'remove'.")
	ErrNotGoalOwner       = errors.New("only the goal creator can delete this goal")
)

// Vote actions accepted by CastVote
const (
	VoteActionUpvote = "upvote"
	VoteActionRemove = "remove"
)

// GoalService drives the goal lifecycle: membership, votes and promotion
type GoalService struct {
	goalRepo  repository.GoalRepository
	tipRepo   repository.TipRepository
	storyRepo repository.StoryRepository
	threshold int64
}

// NewGoalService creates a new GoalService. A threshold below 1 falls back to the default.
func NewGoalService(goalRepo repository.GoalRepository, tipRepo repository.TipRepository, storyRepo repository.StoryRepository, threshold int64) *GoalService {
	if threshold < 1 {
		threshold = constants.DefaultVoteThreshold
	}
	return &GoalService{
		goalRepo:  goalRepo,
		tipRepo:   tipRepo,
		storyRepo: storyRepo,
		threshold: threshold,
	}
}

// CreateGoalInput represents input for creating a goal
type CreateGoalInput struct {
	Name        string
	Description string
	CreatorID   uint64
}

// VoteResult reports the outcome of CastVote
type VoteResult struct {
	Promoted bool
	Message  string
}

// GoalDetail is the assembled view of a single goal
type GoalDetail struct {
	Goal              repository.GoalWithOwner
	MemberCount       int64
	AccomplishedCount int64
	VoteCount         int64
	Tips              []repository.TipSummary
	SuccessStories    []repository.StorySummary
}

// CreateGoal creates a PENDING goal and enrolls its creator as owner
func (s *GoalService) CreateGoal(ctx context.Context, input CreateGoalInput) (*models.Goal, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidGoalName
	}

	goal := &models.Goal{
		Name:        name,
		Description: input.Description,
		CreatedBy:   input.CreatorID,
		Status:      models.GoalStatusPending,
	}
	owner := &models.GoalMember{
		UserID:   input.CreatorID,
		Role:     models.RoleOwner,
		Status:   models.MembershipJoined,
		JoinedAt: time.Now(),
	}

	if err := s.goalRepo.CreateWithOwner(ctx, goal, owner); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	logger.Info().Uint64("goal_id", goal.ID).Uint64("user_id", input.CreatorID).Msg("goal created")
	return goal, nil
}

// JoinGoal enrolls the user as a member of the goal
func (s *GoalService) JoinGoal(ctx context.Context, goalID, userID uint64) (*models.GoalMember, error) {
	if err := s.ensureGoalExists(ctx, goalID); err != nil {
		return nil, err
	}

	if _, err := s.goalRepo.FindMember(ctx, goalID, userID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	member := &models.GoalMember{
		GoalID:   goalID,
		UserID:   userID,
		Role:     models.RoleMember,
		Status:   models.MembershipJoined,
		JoinedAt: time.Now(),
	}
	if err := s.goalRepo.AddMember(ctx, member); err != nil {
		// A concurrent join can slip past the pre-check; the primary key catches it.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to join goal: %w", err)
	}

	return member, nil
}

// LeaveGoal removes the user's membership
func (s *GoalService) LeaveGoal(ctx context.Context, goalID, userID uint64) error {
	removed, err := s.goalRepo.RemoveMember(ctx, goalID, userID)
	if err != nil {
		return fmt.Errorf("failed to leave goal: %w", err)
	}
	if !removed {
		return ErrMembershipNotFound
	}
	return nil
}

// CompleteGoal marks the user's membership COMPLETED
func (s *GoalService) CompleteGoal(ctx context.Context, goalID, userID uint64) (*models.GoalMember, error) {
	member, err := s.goalRepo.FindMember(ctx, goalID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}
	if member.Status == models.MembershipCompleted {
		return nil, ErrAlreadyCompleted
	}

	updated, err := s.goalRepo.CompleteMember(ctx, goalID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to complete goal: %w", err)
	}
	if !updated {
		// Lost the race to a concurrent completion, or the row was removed meanwhile.
		if _, err := s.goalRepo.FindMember(ctx, goalID, userID); errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, ErrAlreadyCompleted
	}

	member.Status = models.MembershipCompleted
	return member, nil
}

// CastVote applies an upvote or removes the user's vote. Upvotes may promote
// the goal to ACTIVE; removal never demotes it.
func (s *GoalService) CastVote(ctx context.Context, goalID, userID uint64, action string) (*VoteResult, error) {
	if action != VoteActionUpvote && action != VoteActionRemove {
		return nil, ErrInvalidVoteAction
	}

	if err := s.ensureGoalExists(ctx, goalID); err != nil {
		return nil, err
	}

	if action == VoteActionRemove {
		removed, err := s.goalRepo.DeleteVote(ctx, goalID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to remove vote: %w", err)
		}
		if !removed {
			return nil, ErrNoVoteToRemove
		}
		return &VoteResult{Message: "Vote removed successfully"}, nil
	}

	if err := s.goalRepo.UpsertVote(ctx, goalID, userID); err != nil {
		return nil, fmt.Errorf("failed to record vote: %w", err)
	}

	promoted, err := s.goalRepo.PromoteIfReached(ctx, goalID, s.threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to promote goal: %w", err)
	}
	if promoted {
		logger.Info().Uint64("goal_id", goalID).Int64("threshold", s.threshold).Msg("goal promoted to ACTIVE")
	}

	return &VoteResult{Promoted: promoted, Message: "Goal upvoted successfully"}, nil
}

// ListGoals searches goals and annotates them for the viewer
func (s *GoalService) ListGoals(ctx context.Context, viewerID uint64, searchTerm string, params utils.PaginationParams) ([]repository.GoalListRow, int64, error) {
	rows, total, err := s.goalRepo.List(ctx, repository.GoalFilter{
		ViewerID:   viewerID,
		SearchTerm: strings.TrimSpace(searchTerm),
		Pagination: params,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list goals: %w", err)
	}
	return rows, total, nil
}

// ListJoinedGoals lists goals the user is a member of
func (s *GoalService) ListJoinedGoals(ctx context.Context, userID uint64) ([]models.Goal, error) {
	goals, err := s.goalRepo.ListJoined(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list joined goals: %w", err)
	}
	return goals, nil
}

// ListOwnedGoals lists goals the user created
func (s *GoalService) ListOwnedGoals(ctx context.Context, userID uint64) ([]models.Goal, error) {
	goals, err := s.goalRepo.ListOwned(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned goals: %w", err)
	}
	return goals, nil
}

// GetGoalDetail assembles the goal with its counts, tips and stories
func (s *GoalService) GetGoalDetail(ctx context.Context, goalID uint64) (*GoalDetail, error) {
	goal, err := s.goalRepo.FindWithOwner(ctx, goalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to find goal: %w", err)
	}

	memberCount, err := s.goalRepo.CountMembers(ctx, goalID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}

	completed := models.MembershipCompleted
	accomplished, err := s.goalRepo.CountMembers(ctx, goalID, &completed)
	if err != nil {
		return nil, fmt.Errorf("failed to count completions: %w", err)
	}

	votes, err := s.goalRepo.SumVotes(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}

	tips, err := s.tipRepo.ListSummaries(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tips: %w", err)
	}

	stories, err := s.storyRepo.ListSummaries(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list success stories: %w", err)
	}

	return &GoalDetail{
		Goal:              *goal,
		MemberCount:       memberCount,
		AccomplishedCount: accomplished,
		VoteCount:         votes,
		Tips:              tips,
		SuccessStories:    stories,
	}, nil
}

// DeleteGoal deletes a goal if the actor created it
func (s *GoalService) DeleteGoal(ctx context.Context, goalID, actorID uint64) error {
	goal, err := s.goalRepo.FindByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGoalNotFound
		}
		return fmt.Errorf("failed to find goal: %w", err)
	}

	if goal.CreatedBy != actorID {
		return ErrNotGoalOwner
	}

	if err := s.goalRepo.Delete(ctx, goalID); err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return nil
}

// ensureGoalExists maps a missing goal to ErrGoalNotFound
func (s *GoalService) ensureGoalExists(ctx context.Context, goalID uint64) error {
	if _, err := s.goalRepo.FindByID(ctx, goalID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGoalNotFound
		}
		return fmt.Errorf("failed to find goal: %w", err)
	}
	return nil
}
