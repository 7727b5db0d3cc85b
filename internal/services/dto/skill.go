package dto

type CreateSkillRequest struct {
	CategoryID  uint64   `json:"category_id" validate:"required"`
	Title       string   `json:"title" validate:"required,min=2,max=120"`
	Description string   `json:"description" validate:"max=5000"`
	PriceFrom   *float64 `json:"price_from,omitempty" validate:"omitempty,gte=0"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=40"`
}

type UpdateSkillRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=2,max=120"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	PriceFrom   *float64 `json:"price_from,omitempty" validate:"omitempty,gte=0"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=40"`
	IsAvailable *bool    `json:"is_available,omitempty"`
}
