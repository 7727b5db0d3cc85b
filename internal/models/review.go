package models

const (
	MinRating = 1
	MaxRating = 5

	MinCommentLength = 10
	MaxCommentLength = 1000
)

type Review struct {
	BaseModel
	JobID      uint64 `gorm:"not null;uniqueIndex:idx_review_job_reviewer" json:"job_id"`
	ReviewerID uint64 `gorm:"not null;uniqueIndex:idx_review_job_reviewer" json:"reviewer_id"`
	RevieweeID uint64 `gorm:"not null;index" json:"reviewee_id"`
	Rating     int    `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment    string `gorm:"type:text" json:"comment,omitempty"`
	IsPublic   bool   `gorm:"default:true" json:"is_public"`
}

// RatingStats - агрегат по отзывам о пользователе
type RatingStats struct {
	UserID        uint64        `json:"user_id"`
	TotalReviews  int64         `json:"total_reviews"`
	AverageRating float64       `json:"average_rating"`
	RatingCounts  map[int]int64 `json:"rating_counts"`
}
