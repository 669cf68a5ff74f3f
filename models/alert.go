package models

import (
	"time"
)

// 提醒类型
const (
	AlertOverspend    = "overspend"
	AlertGoalComplete = "goal_complete"
)

// Alert 站内提醒
type Alert struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	AlertType string    `json:"alert_type" gorm:"size:50;not null"`
	Title     string    `json:"title" gorm:"size:200;not null"`
	Message   string    `json:"message" gorm:"type:text"`
	Icon      string    `json:"icon" gorm:"size:20"`
	IsRead    bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 设置表名
func (Alert) TableName() string {
	return "alerts"
}
