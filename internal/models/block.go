package models

import "time"

// UserBlock - направленная блокировка: BlockerID заблокировал BlockedID
type UserBlock struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	BlockerID uint64    `gorm:"not null;uniqueIndex:idx_block_pair" json:"blocker_id"`
	BlockedID uint64    `gorm:"not null;uniqueIndex:idx_block_pair;index" json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
}
