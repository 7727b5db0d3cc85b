package dto

import "talent2income_backend/internal/models"

// RegisterRequest - запрос регистрации
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
}

// LoginRequest - запрос входа
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *models.User `json:"user"`
}

type UpdateProfileRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Bio  *string `json:"bio,omitempty" validate:"omitempty,max=2000"`
}

// UpdateUserStatusRequest - админская смена статуса
type UpdateUserStatusRequest struct {
	Status     models.UserStatus `json:"status" validate:"required,oneof=pending active suspended banned"`
	IsVerified *bool             `json:"is_verified,omitempty"`
}
