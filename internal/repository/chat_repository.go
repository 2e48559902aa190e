package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yukikurage/goal-community-api/internal/models"
)

// GormChatRepository is a GORM implementation of ChatRepository
type GormChatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &GormChatRepository{db: db}
}

func (r *GormChatRepository) Create(ctx context.Context, msg *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// Recent fetches the newest messages and returns them oldest first
func (r *GormChatRepository) Recent(ctx context.Context, goalID uint64, limit int) ([]ChatMessageRow, error) {
	rows := []ChatMessageRow{}
	err := r.db.WithContext(ctx).
		Table("chat_messages").
		Select("chat_messages.id, chat_messages.goal_id, chat_messages.user_id, chat_messages.message_text, chat_messages.created_at, COALESCE(users.username, '') AS user_name").
		Joins("LEFT JOIN users ON users.id = chat_messages.user_id").
		Where("chat_messages.goal_id = ?", goalID).
		Order("chat_messages.created_at DESC, chat_messages.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}
