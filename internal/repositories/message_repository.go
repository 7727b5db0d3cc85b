package repositories

import (
	"context"
	"time"

	"talent2income_backend/internal/models"

	"gorm.io/gorm"
)

type gormMessageRepository struct {
	db *gorm.DB
}

func (r *gormMessageRepository) Create(ctx context.Context, msg *models.Message) error {
	return translate(r.db.WithContext(ctx).Create(msg).Error)
}

func (r *gormMessageRepository) GetByID(ctx context.Context, id uint64) (*models.Message, error) {
	var msg models.Message
	if err := r.db.WithContext(ctx).First(&msg, id).Error; err != nil {
		return nil, translate(err)
	}
	return &msg, nil
}

func (r *gormMessageRepository) MarkRead(ctx context.Context, id uint64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Message{}).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at}).Error
}

func (r *gormMessageRepository) SoftDelete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&models.Message{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormMessageRepository) ListConversation(ctx context.Context, conversationKey string, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_key = ?", conversationKey).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}
