package models

import (
	"time"

	"gorm.io/datatypes"
)

type Job struct {
	BaseModelWithDeleted
	OwnerID        uint64         `gorm:"not null;index" json:"owner_id"`
	AssignedTo     *uint64        `gorm:"index" json:"assigned_to"`
	CategoryID     uint64         `gorm:"not null;index" json:"category_id"`
	Title          string         `gorm:"not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	BudgetMin      *float64       `json:"budget_min"`
	BudgetMax      *float64       `json:"budget_max"`
	BudgetType     BudgetType     `gorm:"type:varchar(20);not null;default:'fixed'" json:"budget_type"`
	Status         JobStatus      `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	Deadline       *time.Time     `gorm:"index" json:"deadline"`
	RequiredSkills datatypes.JSON `json:"required_skills"`
	Version        uint64         `gorm:"not null;default:1" json:"-"`
}

// IsParticipant - владелец или назначенный исполнитель
func (j *Job) IsParticipant(userID uint64) bool {
	if j.OwnerID == userID {
		return true
	}
	return j.AssignedTo != nil && *j.AssignedTo == userID
}

// BudgetValid - budget_max >= budget_min, если заданы оба
func (j *Job) BudgetValid() bool {
	if j.BudgetMin == nil || j.BudgetMax == nil {
		return true
	}
	return *j.BudgetMax >= *j.BudgetMin
}
