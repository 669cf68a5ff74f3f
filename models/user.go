package models

import (
	"time"
)

// 居住类型
const (
	LivingHostel = "Hostel"
	LivingPG     = "PG"
	LivingHome   = "Home"
	LivingFlat   = "Flat"
)

// 饮食偏好
const (
	FoodVegetarian    = "Vegetarian"
	FoodNonVegetarian = "Non-Vegetarian"
	FoodVegan         = "Vegan"
	FoodEggetarian    = "Eggetarian"
)

// DefaultMonthlyBudget 新用户默认月预算
const DefaultMonthlyBudget = 5000

// User 用户模型
type User struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	GoogleID           *string   `json:"-" gorm:"size:100;uniqueIndex"` // NULL 表示未绑定 Google 账号
	Name               string    `json:"name" gorm:"size:100;not null"`
	Email              string    `json:"email" gorm:"uniqueIndex;size:120;not null"`
	Avatar             string    `json:"avatar" gorm:"size:500"`
	MonthlyBudget      float64   `json:"monthly_budget" gorm:"type:decimal(10,2);default:5000"`
	LivingType         string    `json:"living_type" gorm:"size:20;default:Hostel"`
	FoodPreference     string    `json:"food_preference" gorm:"size:20;default:Vegetarian"`
	Phone              string    `json:"phone" gorm:"size:15"`
	OnboardingComplete bool      `json:"onboarding_complete" gorm:"default:false"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	Transactions []Transaction `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Budgets      []Budget      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	MealPlans    []MealPlan    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	SavingsGoals []SavingsGoal `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Badges       []Badge       `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Alerts       []Alert       `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	BillSplits   []BillSplit   `json:"-" gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE"`
}

// TableName 设置表名
func (User) TableName() string {
	return "users"
}

// GetLivingTypes 获取所有居住类型
func GetLivingTypes() []string {
	return []string{LivingHostel, LivingPG, LivingHome, LivingFlat}
}

// GetFoodPreferences 获取所有饮食偏好
func GetFoodPreferences() []string {
	return []string{FoodVegetarian, FoodNonVegetarian, FoodVegan, FoodEggetarian}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// IsValidLivingType 校验居住类型
func IsValidLivingType(v string) bool {
	return contains(GetLivingTypes(), v)
}

// IsValidFoodPreference 校验饮食偏好
func IsValidFoodPreference(v string) bool {
	return contains(GetFoodPreferences(), v)
}
