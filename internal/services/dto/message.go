package dto

import "talent2income_backend/internal/models"

const MaxMessageLength = 5000

type SendMessageRequest struct {
	RecipientID uint64  `json:"recipient_id" validate:"required"`
	JobID       *uint64 `json:"job_id,omitempty"`
	Content     string  `json:"content" validate:"required,max=5000"`
}

type ConversationQuery struct {
	Limit int `form:"limit" validate:"omitempty,min=1,max=200"`
}

type ConversationResponse struct {
	ConversationKey string           `json:"conversation_key"`
	Messages        []models.Message `json:"messages"`
}
