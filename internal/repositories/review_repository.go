package repositories

import (
	"context"

	"talent2income_backend/internal/models"

	"gorm.io/gorm"
)

type gormReviewRepository struct {
	db *gorm.DB
}

func (r *gormReviewRepository) Create(ctx context.Context, review *models.Review) error {
	return translate(r.db.WithContext(ctx).Create(review).Error)
}

func (r *gormReviewRepository) GetByID(ctx context.Context, id uint64) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, id).Error; err != nil {
		return nil, translate(err)
	}
	return &review, nil
}

func (r *gormReviewRepository) Exists(ctx context.Context, jobID, reviewerID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("job_id = ? AND reviewer_id = ?", jobID, reviewerID).
		Count(&count).Error
	return count > 0, err
}

func (r *gormReviewRepository) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&models.Review{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormReviewRepository) ListByReviewee(ctx context.Context, revieweeID uint64, includeHidden bool) ([]models.Review, error) {
	query := r.db.WithContext(ctx).Where("reviewee_id = ?", revieweeID)
	if !includeHidden {
		query = query.Where("is_public = ?", true)
	}
	var reviews []models.Review
	err := query.Order("created_at DESC, id DESC").Find(&reviews).Error
	return reviews, err
}

// RatingStats считает распределение оценок одним GROUP BY
func (r *gormReviewRepository) RatingStats(ctx context.Context, revieweeID uint64) (*models.RatingStats, error) {
	var rows []struct {
		Rating int
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("rating, COUNT(*) AS count").
		Where("reviewee_id = ?", revieweeID).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &models.RatingStats{UserID: revieweeID, RatingCounts: make(map[int]int64)}
	var sum int64
	for _, row := range rows {
		stats.RatingCounts[row.Rating] = row.Count
		stats.TotalReviews += row.Count
		sum += int64(row.Rating) * row.Count
	}
	if stats.TotalReviews > 0 {
		stats.AverageRating = float64(sum) / float64(stats.TotalReviews)
	}
	return stats, nil
}
