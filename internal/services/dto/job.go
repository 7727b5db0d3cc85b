package dto

import (
	"time"

	"talent2income_backend/internal/models"
)

// ======================
// Request DTOs
// ======================

type CreateJobRequest struct {
	CategoryID     uint64            `json:"category_id" validate:"required"`
	Title          string            `json:"title" validate:"required,min=3,max=200"`
	Description    string            `json:"description" validate:"max=10000"`
	BudgetMin      *float64          `json:"budget_min,omitempty" validate:"omitempty,gte=0"`
	BudgetMax      *float64          `json:"budget_max,omitempty" validate:"omitempty,gte=0"`
	BudgetType     models.BudgetType `json:"budget_type" validate:"required,is-budget-type"`
	Deadline       *time.Time        `json:"deadline,omitempty"`
	RequiredSkills []string          `json:"required_skills,omitempty" validate:"omitempty,max=30,dive,min=1,max=50"`
}

type UpdateJobRequest struct {
	Title          *string            `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description    *string            `json:"description,omitempty" validate:"omitempty,max=10000"`
	BudgetMin      *float64           `json:"budget_min,omitempty" validate:"omitempty,gte=0"`
	BudgetMax      *float64           `json:"budget_max,omitempty" validate:"omitempty,gte=0"`
	BudgetType     *models.BudgetType `json:"budget_type,omitempty" validate:"omitempty,is-budget-type"`
	Deadline       *time.Time         `json:"deadline,omitempty"`
	RequiredSkills []string           `json:"required_skills,omitempty" validate:"omitempty,max=30,dive,min=1,max=50"`
}

type TransitionJobRequest struct {
	Status models.JobStatus `json:"status" validate:"required,is-job-status"`
}

// AssignJobRequest - user_id = null снимает исполнителя
type AssignJobRequest struct {
	UserID *uint64 `json:"user_id"`
}

// ======================
// Query DTOs
// ======================

type JobListQuery struct {
	Status     models.JobStatus `form:"status" validate:"omitempty,is-job-status"`
	CategoryID uint64           `form:"category_id"`
	OwnerID    uint64           `form:"owner_id"`
	Page       int              `form:"page" validate:"omitempty,min=1"`
	PageSize   int              `form:"page_size" validate:"omitempty,min=1,max=100"`
}

// ======================
// Response DTOs
// ======================

type JobListResponse struct {
	Jobs     []models.Job `json:"jobs"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}
