package models

type User struct {
	BaseModel
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Name         string     `json:"name"`
	Bio          string     `gorm:"type:text" json:"bio,omitempty"`
	Role         UserRole   `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	Status       UserStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	IsVerified   bool       `gorm:"default:false" json:"is_verified"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == UserStatusActive
}

// IsVerifiedActive - активный и подтвержденный аккаунт (требуется для отправки сообщений)
func (u *User) IsVerifiedActive() bool {
	return u.IsActive() && u.IsVerified
}
