package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/goal-community-api/internal/database"
	"github.com/yukikurage/goal-community-api/internal/models"
	"github.com/yukikurage/goal-community-api/internal/utils"
)

// GormTipRepository is a GORM implementation of TipRepository
type GormTipRepository struct {
	db *gorm.DB
}

// NewTipRepository creates a new TipRepository
func NewTipRepository(db *gorm.DB) TipRepository {
	return &GormTipRepository{db: db}
}

func (r *GormTipRepository) Create(ctx context.Context, tip *models.Tip) error {
	return r.db.WithContext(ctx).Create(tip).Error
}

func (r *GormTipRepository) FindByID(ctx context.Context, id uint64) (*models.Tip, error) {
	var tip models.Tip
	if err := r.db.WithContext(ctx).First(&tip, id).Error; err != nil {
		return nil, err
	}
	return &tip, nil
}

// List returns a page of tips whose content matches searchTerm, with net vote counts
func (r *GormTipRepository) List(ctx context.Context, goalID uint64, searchTerm string, params utils.PaginationParams) ([]TipListRow, int64, error) {
	pattern := "%" + strings.ToLower(searchTerm) + "%"

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Tip{}).
		Where("goal_id = ? AND LOWER(content) LIKE ?", goalID, pattern).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := []TipListRow{}
	err := r.db.WithContext(ctx).
		Table("tips").
		Select("tips.*, COALESCE(v.vote_count, 0) AS vote_count").
		Joins("LEFT JOIN (SELECT tip_id, SUM(value) AS vote_count FROM tip_votes GROUP BY tip_id) v ON v.tip_id = tips.id").
		Where("tips.goal_id = ? AND LOWER(tips.content) LIKE ?", goalID, pattern).
		Order("tips.created_at DESC, tips.id DESC").
		Scopes(database.Paginate(params)).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

// ListSummaries returns every tip of a goal with up/down counts and owner name
func (r *GormTipRepository) ListSummaries(ctx context.Context, goalID uint64) ([]TipSummary, error) {
	tips := []TipSummary{}
	err := r.db.WithContext(ctx).
		Table("tips").
		Select(`tips.id, tips.title, tips.content, users.username AS owner,
			COALESCE(up.cnt, 0) AS up_votes,
			COALESCE(down.cnt, 0) AS down_votes`).
		Joins("JOIN users ON users.id = tips.user_id").
		Joins("LEFT JOIN (SELECT tip_id, COUNT(*) AS cnt FROM tip_votes WHERE value = 1 GROUP BY tip_id) up ON up.tip_id = tips.id").
		Joins("LEFT JOIN (SELECT tip_id, COUNT(*) AS cnt FROM tip_votes WHERE value = -1 GROUP BY tip_id) down ON down.tip_id = tips.id").
		Where("tips.goal_id = ?", goalID).
		Order("tips.created_at DESC, tips.id DESC").
		Scan(&tips).Error
	if err != nil {
		return nil, err
	}
	return tips, nil
}

// UpsertVote records or replaces the user's vote on a tip
func (r *GormTipRepository) UpsertVote(ctx context.Context, vote *models.TipVote) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tip_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(vote).Error
}
