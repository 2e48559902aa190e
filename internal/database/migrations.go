package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yukikurage/goal-community-api/internal/logger"
	"github.com/yukikurage/goal-community-api/internal/models"
)

// AddIndexes adds the lookup indexes AutoMigrate does not derive from tags.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model   interface{}
		name    string
		columns string
	}{
		{&models.GoalVote{}, "idx_goal_votes_goal_id", "goal_id"},
		{&models.TipVote{}, "idx_tip_votes_tip_id_value", "tip_id, value"},
		{&models.GoalMember{}, "idx_goal_members_goal_status", "goal_id, status"},
		{&models.SuccessStory{}, "idx_success_stories_goal_created", "goal_id, created_at"},
		{&models.Tip{}, "idx_tips_goal_created", "goal_id, created_at"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to parse model for index %s: %w", idx.name, err)
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, stmt.Schema.Table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		logger.Debug().Str("index", idx.name).Str("table", stmt.Schema.Table).Msg("created index")
	}

	return nil
}
