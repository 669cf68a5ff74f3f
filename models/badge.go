package models

import (
	"time"
)

// Badge 已获得的徽章，同一用户同一类型只有一条
type Badge struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_badge_user_type"`
	BadgeType   string    `json:"badge_type" gorm:"size:50;not null;uniqueIndex:idx_badge_user_type"`
	BadgeName   string    `json:"badge_name" gorm:"size:100;not null"`
	Description string    `json:"description" gorm:"size:200"`
	Icon        string    `json:"icon" gorm:"size:10"`
	EarnedAt    time.Time `json:"earned_at"`
}

// TableName 设置表名
func (Badge) TableName() string {
	return "badges"
}
