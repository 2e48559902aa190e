package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/goal-community-api/internal/database"
	"github.com/yukikurage/goal-community-api/internal/models"
)

// GormGoalRepository is a GORM implementation of GoalRepository
type GormGoalRepository struct {
	db *gorm.DB
}

// NewGoalRepository creates a new GoalRepository
func NewGoalRepository(db *gorm.DB) GoalRepository {
	return &GormGoalRepository{db: db}
}

// CreateWithOwner creates the goal and the owner's membership atomically
func (r *GormGoalRepository) CreateWithOwner(ctx context.Context, goal *models.Goal, owner *models.GoalMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(goal).Error; err != nil {
			return err
		}

		owner.GoalID = goal.ID
		return tx.Create(owner).Error
	})
}

// FindByID finds a goal by ID
func (r *GormGoalRepository) FindByID(ctx context.Context, id uint64) (*models.Goal, error) {
	var goal models.Goal
	if err := r.db.WithContext(ctx).First(&goal, id).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

// FindWithOwner finds a goal and its creator's username
func (r *GormGoalRepository) FindWithOwner(ctx context.Context, id uint64) (*GoalWithOwner, error) {
	var row GoalWithOwner
	err := r.db.WithContext(ctx).
		Table("goals").
		Select("goals.*, COALESCE(users.username, '') AS owner_name").
		Joins("LEFT JOIN users ON users.id = goals.created_by").
		Where("goals.id = ?", id).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// List searches goals by name, newest first
func (r *GormGoalRepository) List(ctx context.Context, filter GoalFilter) ([]GoalListRow, int64, error) {
	pattern := "%" + strings.ToLower(filter.SearchTerm) + "%"

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Goal{}).
		Where("LOWER(name) LIKE ?", pattern).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := []GoalListRow{}
	err := r.db.WithContext(ctx).
		Table("goals").
		Select(`goals.*,
			(gm.user_id IS NOT NULL) AS joined,
			(goals.status = ? AND gv.user_id IS NOT NULL) AS user_voted,
			COALESCE(vt.total_votes, 0) AS vote_count`, string(models.GoalStatusPending)).
		Joins("LEFT JOIN goal_members gm ON gm.goal_id = goals.id AND gm.user_id = ?", filter.ViewerID).
		Joins("LEFT JOIN goal_votes gv ON gv.goal_id = goals.id AND gv.user_id = ?", filter.ViewerID).
		Joins("LEFT JOIN (SELECT goal_id, SUM(value) AS total_votes FROM goal_votes GROUP BY goal_id) vt ON vt.goal_id = goals.id").
		Where("LOWER(goals.name) LIKE ?", pattern).
		Order("goals.created_at DESC, goals.id DESC").
		Scopes(database.Paginate(filter.Pagination)).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

// ListJoined lists goals the user is a member of
func (r *GormGoalRepository) ListJoined(ctx context.Context, userID uint64) ([]models.Goal, error) {
	goals := []models.Goal{}
	if err := r.db.WithContext(ctx).
		Select("goals.*").
		Joins("JOIN goal_members ON goal_members.goal_id = goals.id").
		Where("goal_members.user_id = ?", userID).
		Order("goals.created_at DESC, goals.id DESC").
		Find(&goals).Error; err != nil {
		return nil, err
	}
	return goals, nil
}

// ListOwned lists goals the user created
func (r *GormGoalRepository) ListOwned(ctx context.Context, userID uint64) ([]models.Goal, error) {
	goals := []models.Goal{}
	if err := r.db.WithContext(ctx).
		Where("created_by = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&goals).Error; err != nil {
		return nil, err
	}
	return goals, nil
}

// Delete deletes a goal and all related data in a transaction
func (r *GormGoalRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("goal_id = ?", id).Delete(&models.ChatMessage{}).Error; err != nil {
			return err
		}

		tipIDs := tx.Model(&models.Tip{}).Select("id").Where("goal_id = ?", id)
		if err := tx.Where("tip_id IN (?)", tipIDs).Delete(&models.TipVote{}).Error; err != nil {
			return err
		}

		if err := tx.Where("goal_id = ?", id).Delete(&models.Tip{}).Error; err != nil {
			return err
		}
		if err := tx.Where("goal_id = ?", id).Delete(&models.SuccessStory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("goal_id = ?", id).Delete(&models.GoalVote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("goal_id = ?", id).Delete(&models.GoalMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Goal{}, id).Error
	})
}

// AddMember adds a member to a goal
func (r *GormGoalRepository) AddMember(ctx context.Context, member *models.GoalMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// FindMember finds a specific goal member
func (r *GormGoalRepository) FindMember(ctx context.Context, goalID, userID uint64) (*models.GoalMember, error) {
	var member models.GoalMember
	if err := r.db.WithContext(ctx).
		Where("goal_id = ? AND user_id = ?", goalID, userID).
		Take(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// RemoveMember removes a member from a goal
func (r *GormGoalRepository) RemoveMember(ctx context.Context, goalID, userID uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("goal_id = ? AND user_id = ?", goalID, userID).
		Delete(&models.GoalMember{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CompleteMember marks a JOINED membership COMPLETED. The status guard makes
// a second completion affect no rows.
func (r *GormGoalRepository) CompleteMember(ctx context.Context, goalID, userID uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.GoalMember{}).
		Where("goal_id = ? AND user_id = ? AND status = ?", goalID, userID, string(models.MembershipJoined)).
		Update("status", string(models.MembershipCompleted))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CountMembers counts members of a goal
func (r *GormGoalRepository) CountMembers(ctx context.Context, goalID uint64, status *models.MembershipStatus) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.GoalMember{}).Where("goal_id = ?", goalID)
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UpsertVote inserts the user's vote or resets it to +1
func (r *GormGoalRepository) UpsertVote(ctx context.Context, goalID, userID uint64) error {
	vote := models.GoalVote{GoalID: goalID, UserID: userID, Value: 1}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "goal_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&vote).Error
}

// DeleteVote deletes the user's vote
func (r *GormGoalRepository) DeleteVote(ctx context.Context, goalID, userID uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("goal_id = ? AND user_id = ?", goalID, userID).
		Delete(&models.GoalVote{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SumVotes returns the sum of vote values for a goal
func (r *GormGoalRepository) SumVotes(ctx context.Context, goalID uint64) (int64, error) {
	var sum int64
	if err := r.db.WithContext(ctx).
		Model(&models.GoalVote{}).
		Select("COALESCE(SUM(value), 0)").
		Where("goal_id = ?", goalID).
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	return sum, nil
}

// PromoteIfReached issues a single conditional UPDATE. Concurrent callers that
// all observe the threshold race on the status guard; exactly one affects a row.
func (r *GormGoalRepository) PromoteIfReached(ctx context.Context, goalID uint64, threshold int64) (bool, error) {
	voteSum := r.db.Model(&models.GoalVote{}).
		Select("COALESCE(SUM(value), 0)").
		Where("goal_id = ?", goalID)

	res := r.db.WithContext(ctx).
		Model(&models.Goal{}).
		Where("id = ? AND status = ?", goalID, string(models.GoalStatusPending)).
		Where("(?) >= ?", voteSum, threshold).
		Update("status", string(models.GoalStatusActive))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
