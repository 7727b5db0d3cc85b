package repositories

import (
	"context"
	"time"

	"talent2income_backend/internal/models"

	"gorm.io/gorm"
)

type gormJobRepository struct {
	db *gorm.DB
}

func (r *gormJobRepository) Create(ctx context.Context, job *models.Job) error {
	if job.Version == 0 {
		job.Version = 1
	}
	return translate(r.db.WithContext(ctx).Create(job).Error)
}

func (r *gormJobRepository) GetByID(ctx context.Context, id uint64) (*models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).First(&job, id).Error; err != nil {
		return nil, translate(err)
	}
	return &job, nil
}

func (r *gormJobRepository) UpdateIfVersion(ctx context.Context, job *models.Job, expected uint64) error {
	next := *job
	next.Version = expected + 1
	if err := updateIfVersion(ctx, r.db, &next, job.ID, expected); err != nil {
		return err
	}
	*job = next
	return nil
}

func (r *gormJobRepository) SoftDelete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&models.Job{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormJobRepository) List(ctx context.Context, filter JobFilter) ([]models.Job, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Job{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.OwnerID != 0 {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []models.Job
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	err := query.Offset(filter.Offset).Order("created_at DESC, id DESC").Find(&jobs).Error
	return jobs, total, err
}

func (r *gormJobRepository) ListOverdueOpen(ctx context.Context, now time.Time, limit int) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.WithContext(ctx).
		Where("status = ? AND deadline IS NOT NULL AND deadline < ?", models.JobStatusOpen, now).
		Order("deadline ASC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}
