package models

import (
	"strconv"
	"time"

	"gorm.io/gorm"
)

type Message struct {
	ID              uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID        uint64         `gorm:"not null;index" json:"sender_id"`
	RecipientID     uint64         `gorm:"not null;index" json:"recipient_id"`
	JobID           *uint64        `gorm:"index" json:"job_id,omitempty"`
	ConversationKey string         `gorm:"type:varchar(64);not null;index" json:"conversation_key"`
	Content         string         `gorm:"type:text;not null" json:"content"`
	IsRead          bool           `gorm:"default:false" json:"is_read"`
	ReadAt          *time.Time     `json:"read_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// ConversationKey - идентификатор диалога: id по возрастанию через дефис (5, 2 -> "2-5")
func ConversationKey(a, b uint64) string {
	if a > b {
		a, b = b, a
	}
	return strconv.FormatUint(a, 10) + "-" + strconv.FormatUint(b, 10)
}

// OtherParticipant возвращает собеседника userID в рамках сообщения
func (m *Message) OtherParticipant(userID uint64) uint64 {
	if m.SenderID == userID {
		return m.RecipientID
	}
	return m.SenderID
}
