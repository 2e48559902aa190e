package repository

import (
	"context"
	"time"

	"github.com/yukikurage/goal-community-api/internal/models"
	"github.com/yukikurage/goal-community-api/internal/utils"
)

// GoalRepository defines data access for goals, memberships and goal votes
type GoalRepository interface {
	// CreateWithOwner inserts a goal and its owner membership in one transaction
	CreateWithOwner(ctx context.Context, goal *models.Goal, owner *models.GoalMember) error

	// FindByID finds a goal by ID
	FindByID(ctx context.Context, id uint64) (*models.Goal, error)

	// FindWithOwner finds a goal together with its creator's username
	FindWithOwner(ctx context.Context, id uint64) (*GoalWithOwner, error)

	// List searches goals by name and annotates each row for the viewer
	List(ctx context.Context, filter GoalFilter) ([]GoalListRow, int64, error)

	// ListJoined lists goals the user is a member of
	ListJoined(ctx context.Context, userID uint64) ([]models.Goal, error)

	// ListOwned lists goals the user created
	ListOwned(ctx context.Context, userID uint64) ([]models.Goal, error)

	// Delete removes a goal and everything hanging off it
	Delete(ctx context.Context, id uint64) error

	// AddMember inserts a membership; duplicates surface as gorm.ErrDuplicatedKey
	AddMember(ctx context.Context, member *models.GoalMember) error

	// FindMember finds a specific membership
	FindMember(ctx context.Context, goalID, userID uint64) (*models.GoalMember, error)

	// RemoveMember hard deletes a membership and reports whether a row existed
	RemoveMember(ctx context.Context, goalID, userID uint64) (bool, error)

	// CompleteMember moves a JOINED membership to COMPLETED and reports whether it did
	CompleteMember(ctx context.Context, goalID, userID uint64) (bool, error)

	// CountMembers counts memberships, optionally restricted to one status
	CountMembers(ctx context.Context, goalID uint64, status *models.MembershipStatus) (int64, error)

	// UpsertVote records a +1 vote for the user
	UpsertVote(ctx context.Context, goalID, userID uint64) error

	// DeleteVote removes the user's vote and reports whether one existed
	DeleteVote(ctx context.Context, goalID, userID uint64) (bool, error)

	// SumVotes returns the current vote total
	SumVotes(ctx context.Context, goalID uint64) (int64, error)

	// PromoteIfReached flips PENDING to ACTIVE in a single conditional statement
	// when the vote sum is at least threshold. It reports whether this call did it.
	PromoteIfReached(ctx context.Context, goalID uint64, threshold int64) (bool, error)
}

// GoalFilter holds search and pagination options for listing goals
type GoalFilter struct {
	ViewerID   uint64
	SearchTerm string
	Pagination utils.PaginationParams
}

// GoalListRow is a goal annotated for the requesting user
type GoalListRow struct {
	models.Goal
	Joined    bool  `json:"joined"`
	UserVoted bool  `json:"user_voted"`
	VoteCount int64 `json:"vote_count"`
}

// GoalWithOwner is a goal plus its creator's username
type GoalWithOwner struct {
	models.Goal
	OwnerName string
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// ExistsByEmailOrUsername reports whether either value is taken
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
}

// TipRepository defines data access for tips and tip votes
type TipRepository interface {
	Create(ctx context.Context, tip *models.Tip) error
	FindByID(ctx context.Context, id uint64) (*models.Tip, error)
	List(ctx context.Context, goalID uint64, searchTerm string, params utils.PaginationParams) ([]TipListRow, int64, error)
	ListSummaries(ctx context.Context, goalID uint64) ([]TipSummary, error)
	UpsertVote(ctx context.Context, vote *models.TipVote) error
}

// TipListRow is a tip with its net vote count
type TipListRow struct {
	models.Tip
	VoteCount int64 `json:"vote_count"`
}

// TipSummary is a tip as shown on the goal detail page
type TipSummary struct {
	ID        uint64
	Title     string
	Content   string
	Owner     string
	UpVotes   int64
	DownVotes int64
}

// StoryRepository defines data access for success stories
type StoryRepository interface {
	Create(ctx context.Context, story *models.SuccessStory) error
	List(ctx context.Context, goalID uint64, params utils.PaginationParams) ([]models.SuccessStory, int64, error)
	ListSummaries(ctx context.Context, goalID uint64) ([]StorySummary, error)
}

// StorySummary is a success story with its author's username
type StorySummary struct {
	ID      uint64
	Title   string
	Content string
	Owner   string
}

// ChatRepository defines data access for chat messages
type ChatRepository interface {
	Create(ctx context.Context, msg *models.ChatMessage) error

	// Recent returns the newest limit messages ordered oldest to newest
	Recent(ctx context.Context, goalID uint64, limit int) ([]ChatMessageRow, error)
}

// ChatMessageRow is a chat message joined with its author's username
type ChatMessageRow struct {
	ID        uint64
	GoalID    uint64
	UserID    uint64
	Text      string `gorm:"column:message_text"`
	CreatedAt time.Time
	UserName  string
}
