package models

import (
	"time"
)

// MealPlan 餐食计划
type MealPlan struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"user_id" gorm:"index;not null"`
	Date           time.Time `json:"date" gorm:"type:date;not null;index"`
	MealType       string    `json:"meal_type" gorm:"size:20;not null"`
	MealName       string    `json:"meal_name" gorm:"size:100;not null"`
	Cost           float64   `json:"cost" gorm:"type:decimal(10,2);not null"`
	Calories       int       `json:"calories"`
	Protein        float64   `json:"protein"`
	NutritionScore float64   `json:"nutrition_score"`
	Source         string    `json:"source" gorm:"size:50"`
	IsCompleted    bool      `json:"is_completed" gorm:"default:false"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName 设置表名
func (MealPlan) TableName() string {
	return "meal_plans"
}
