package repositories

import (
	"context"

	"talent2income_backend/internal/models"

	"gorm.io/gorm"
)

type gormSkillRepository struct {
	db *gorm.DB
}

func (r *gormSkillRepository) Create(ctx context.Context, skill *models.Skill) error {
	return translate(r.db.WithContext(ctx).Create(skill).Error)
}

func (r *gormSkillRepository) GetByID(ctx context.Context, id uint64) (*models.Skill, error) {
	var skill models.Skill
	if err := r.db.WithContext(ctx).First(&skill, id).Error; err != nil {
		return nil, translate(err)
	}
	return &skill, nil
}

func (r *gormSkillRepository) Update(ctx context.Context, skill *models.Skill) error {
	res := r.db.WithContext(ctx).Model(skill).Select("*").Omit("created_at").Updates(skill)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormSkillRepository) SoftDelete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&models.Skill{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormSkillRepository) ListByUser(ctx context.Context, userID uint64) ([]models.Skill, error) {
	var skills []models.Skill
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&skills).Error
	return skills, err
}
