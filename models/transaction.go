package models

import (
	"time"
)

// Transaction 消费流水
type Transaction struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"index;not null"`
	Amount      float64   `json:"amount" gorm:"type:decimal(10,2);not null"`
	Category    string    `json:"category" gorm:"size:50;not null;default:Misc;index"`
	Subcategory string    `json:"subcategory" gorm:"size:50"`
	Description string    `json:"description" gorm:"size:200"`
	SpentAt     time.Time `json:"spent_at" gorm:"not null;index"`
	IsFood      bool      `json:"is_food" gorm:"default:false"`
	MealType    string    `json:"meal_type,omitempty" gorm:"size:20"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName 设置表名
func (Transaction) TableName() string {
	return "transactions"
}

// 消费类别
const (
	CategoryFood          = "Food"
	CategoryTravel        = "Travel"
	CategoryAcademic      = "Academic"
	CategoryEntertainment = "Entertainment"
	CategoryShopping      = "Shopping"
	CategoryHealth        = "Health"
	CategoryMisc          = "Misc"
)

// 餐次
const (
	MealBreakfast = "Breakfast"
	MealLunch     = "Lunch"
	MealDinner    = "Dinner"
	MealSnack     = "Snack"
)

// GetCategories 获取所有消费类别
func GetCategories() []string {
	return []string{
		CategoryFood,
		CategoryTravel,
		CategoryAcademic,
		CategoryEntertainment,
		CategoryShopping,
		CategoryHealth,
		CategoryMisc,
	}
}

// GetFoodSubcategories 获取餐饮子类别
func GetFoodSubcategories() []string {
	return []string{"Mess", "Canteen", "Restaurant", "Delivery", "Groceries", "Snacks", "Beverages"}
}

// GetMealTypes 获取所有餐次
func GetMealTypes() []string {
	return []string{MealBreakfast, MealLunch, MealDinner, MealSnack}
}

// IsValidCategory 校验消费类别
func IsValidCategory(category string) bool {
	return contains(GetCategories(), category)
}

// IsValidMealType 校验餐次
func IsValidMealType(mealType string) bool {
	return contains(GetMealTypes(), mealType)
}
