package models

type Payment struct {
	BaseModel
	JobID         uint64        `gorm:"not null;uniqueIndex" json:"job_id"`
	PayerID       uint64        `gorm:"not null;index" json:"payer_id"`
	PayeeID       uint64        `gorm:"not null;index" json:"payee_id"`
	Amount        float64       `gorm:"not null" json:"amount"`
	Status        PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	FailureReason string        `json:"failure_reason,omitempty"`
	Version       uint64        `gorm:"not null;default:1" json:"-"`
}
