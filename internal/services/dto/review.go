package dto

import "talent2income_backend/internal/models"

type CreateReviewRequest struct {
	RevieweeID uint64 `json:"reviewee_id" validate:"required"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Comment    string `json:"comment" validate:"review-comment"`
	IsPublic   *bool  `json:"is_public,omitempty"`
}

type ReviewListResponse struct {
	Reviews []models.Review     `json:"reviews"`
	Rating  *models.RatingStats `json:"rating"`
}
