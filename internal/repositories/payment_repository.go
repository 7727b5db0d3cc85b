package repositories

import (
	"context"

	"talent2income_backend/internal/models"

	"gorm.io/gorm"
)

type gormPaymentRepository struct {
	db *gorm.DB
}

func (r *gormPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.Version == 0 {
		payment.Version = 1
	}
	return translate(r.db.WithContext(ctx).Create(payment).Error)
}

func (r *gormPaymentRepository) GetByID(ctx context.Context, id uint64) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *gormPaymentRepository) GetByJobID(ctx context.Context, jobID uint64) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).Where("job_id = ?", jobID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *gormPaymentRepository) UpdateIfVersion(ctx context.Context, payment *models.Payment, expected uint64) error {
	next := *payment
	next.Version = expected + 1
	if err := updateIfVersion(ctx, r.db, &next, payment.ID, expected); err != nil {
		return err
	}
	*payment = next
	return nil
}
