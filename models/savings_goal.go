package models

import (
	"math"
	"time"

	"gorm.io/gorm"
)

// SavingsGoal 储蓄目标
type SavingsGoal struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	UserID        uint       `json:"user_id" gorm:"index;not null"`
	Name          string     `json:"name" gorm:"size:100;not null"`
	TargetAmount  float64    `json:"target_amount" gorm:"type:decimal(10,2);not null"`
	CurrentAmount float64    `json:"current_amount" gorm:"type:decimal(10,2);default:0"`
	Deadline      *time.Time `json:"deadline" gorm:"type:date"`
	IsCompleted   bool       `json:"is_completed" gorm:"default:false"`
	Progress      float64    `json:"progress" gorm:"-"`
	CreatedAt     time.Time  `json:"created_at"`
}

// TableName 设置表名
func (SavingsGoal) TableName() string {
	return "savings_goals"
}

// ProgressPct 完成百分比，保留一位小数；目标金额非正视为已完成
func (g *SavingsGoal) ProgressPct() float64 {
	if g.TargetAmount <= 0 {
		return 100
	}
	return math.Round(g.CurrentAmount/g.TargetAmount*1000) / 10
}

// AfterFind 查询后填充进度
func (g *SavingsGoal) AfterFind(tx *gorm.DB) error {
	g.Progress = g.ProgressPct()
	return nil
}
