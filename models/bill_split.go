package models

import (
	"time"
)

// 分账方式
const (
	SplitEqual  = "equal"
	SplitCustom = "custom"
)

// Participant 分账参与人
type Participant struct {
	Name      string  `json:"name"`
	Share     float64 `json:"share"`
	Paid      bool    `json:"paid"`
	IsCreator bool    `json:"is_creator,omitempty"`
}

// BillSplit 分账单，参与人以 JSON 存储
type BillSplit struct {
	ID           uint          `json:"id" gorm:"primaryKey"`
	CreatorID    uint          `json:"creator_id" gorm:"index;not null"`
	Title        string        `json:"title" gorm:"size:100;not null"`
	TotalAmount  float64       `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	Participants []Participant `json:"participants" gorm:"type:text;serializer:json"`
	SplitType    string        `json:"split_type" gorm:"size:20;default:equal"`
	IsSettled    bool          `json:"is_settled" gorm:"default:false"`
	CreatedAt    time.Time     `json:"created_at"`
}

// TableName 设置表名
func (BillSplit) TableName() string {
	return "bill_splits"
}

// AllPaid 是否所有参与人都已付款
func (s *BillSplit) AllPaid() bool {
	for _, p := range s.Participants {
		if !p.Paid {
			return false
		}
	}
	return true
}
