package workflow

import (
	"strings"
	"unicode/utf8"

	"talent2income_backend/internal/models"
	"talent2income_backend/pkg/apperrors"
)

// CheckReviewEligibility проверяет по порядку: статус задания, получателя отзыва, уникальность.
func CheckReviewEligibility(job *models.Job, reviewerID, revieweeID uint64, alreadyReviewed bool) error {
	if job.Status != models.JobStatusCompleted {
		return apperrors.ErrReviewNotEligible.WithDetails(map[string]interface{}{
			"job_status": job.Status,
		})
	}
	if revieweeID == reviewerID || !job.IsParticipant(revieweeID) {
		return apperrors.ErrInvalidReviewee
	}
	if alreadyReviewed {
		return apperrors.ErrDuplicateReview
	}
	return nil
}

func ValidateRating(rating int) error {
	if rating < models.MinRating || rating > models.MaxRating {
		return apperrors.ErrInvalidRating.WithDetails(map[string]interface{}{
			"min": models.MinRating,
			"max": models.MaxRating,
		})
	}
	return nil
}

// ValidateComment - пустой комментарий допустим, иначе длина в символах 10..1000
func ValidateComment(comment string) error {
	trimmed := strings.TrimSpace(comment)
	if trimmed == "" {
		return nil
	}
	n := utf8.RuneCountInString(trimmed)
	if n < models.MinCommentLength || n > models.MaxCommentLength {
		return apperrors.ErrInvalidComment.WithDetails(map[string]interface{}{
			"min":    models.MinCommentLength,
			"max":    models.MaxCommentLength,
			"length": n,
		})
	}
	return nil
}
