package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yukikurage/goal-community-api/internal/database"
	"github.com/yukikurage/goal-community-api/internal/models"
	"github.com/yukikurage/goal-community-api/internal/utils"
)

// GormStoryRepository is a GORM implementation of StoryRepository
type GormStoryRepository struct {
	db *gorm.DB
}

// NewStoryRepository creates a new StoryRepository
func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &GormStoryRepository{db: db}
}

func (r *GormStoryRepository) Create(ctx context.Context, story *models.SuccessStory) error {
	return r.db.WithContext(ctx).Create(story).Error
}

func (r *GormStoryRepository) List(ctx context.Context, goalID uint64, params utils.PaginationParams) ([]models.SuccessStory, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.SuccessStory{}).
		Where("goal_id = ?", goalID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	stories := []models.SuccessStory{}
	if err := r.db.WithContext(ctx).
		Where("goal_id = ?", goalID).
		Order("created_at DESC, id DESC").
		Scopes(database.Paginate(params)).
		Find(&stories).Error; err != nil {
		return nil, 0, err
	}

	return stories, total, nil
}

func (r *GormStoryRepository) ListSummaries(ctx context.Context, goalID uint64) ([]StorySummary, error) {
	stories := []StorySummary{}
	err := r.db.WithContext(ctx).
		Table("success_stories").
		Select("success_stories.id, success_stories.title, success_stories.content, users.username AS owner").
		Joins("JOIN users ON users.id = success_stories.user_id").
		Where("success_stories.goal_id = ?", goalID).
		Order("success_stories.created_at DESC, success_stories.id DESC").
		Scan(&stories).Error
	if err != nil {
		return nil, err
	}
	return stories, nil
}
