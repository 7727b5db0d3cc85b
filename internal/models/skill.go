package models

import "gorm.io/datatypes"

type Skill struct {
	BaseModelWithDeleted
	UserID      uint64         `gorm:"not null;index" json:"user_id"`
	CategoryID  uint64         `gorm:"not null;index" json:"category_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	PriceFrom   *float64       `json:"price_from"`
	Tags        datatypes.JSON `json:"tags"`
	IsAvailable bool           `gorm:"default:true" json:"is_available"`
}
