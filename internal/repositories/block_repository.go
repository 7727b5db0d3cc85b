package repositories

import (
	"context"

	"talent2income_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormBlockRepository struct {
	db *gorm.DB
}

// Block идемпотентен: повторная блокировка не ошибка
func (r *gormBlockRepository) Block(ctx context.Context, blockerID, blockedID uint64) error {
	block := &models.UserBlock{BlockerID: blockerID, BlockedID: blockedID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(block).Error
}

func (r *gormBlockRepository) Unblock(ctx context.Context, blockerID, blockedID uint64) error {
	return r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.UserBlock{}).Error
}

func (r *gormBlockRepository) IsBlocked(ctx context.Context, blockerID, blockedID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserBlock{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&count).Error
	return count > 0, err
}

func (r *gormBlockRepository) IsMutuallyBlocked(ctx context.Context, a, b uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserBlock{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&count).Error
	return count == 2, err
}
