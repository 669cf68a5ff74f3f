package mealplan

import (
	"math/rand/v2"
	"time"

	"budgetbite/models"
)

const (
	// foodShare 日限额中留给餐饮的比例
	foodShare = 0.6
	// slotShare 单餐可用的餐饮预算比例
	slotShare = 0.35

	tightBudget    = 50
	moderateBudget = 100
)

// 建议档位
const (
	LevelTight    = "tight"
	LevelModerate = "moderate"
	LevelGood     = "good"
)

// Suggestion 今日餐饮建议
type Suggestion struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Suggest 按剩余餐饮预算给出建议
func Suggest(foodBudgetLeft float64) Suggestion {
	switch {
	case foodBudgetLeft < tightBudget:
		return Suggestion{LevelTight, "Budget tight! Try mess meals or cook something simple today 🍳"}
	case foodBudgetLeft < moderateBudget:
		return Suggestion{LevelModerate, "Today's cheapest protein option: Sprout Salad (₹20) or Dal Rice (₹60) 💪"}
	default:
		return Suggestion{LevelGood, "Good budget! You can afford a balanced mess meal today 🎉"}
	}
}

// FoodBudget 日限额中的餐饮部分
func FoodBudget(dailyLimit float64) float64 {
	return dailyLimit * foodShare
}

// FoodBudgetLeft 餐饮预算减去今天已完成餐食的花费，不低于 0
func FoodBudgetLeft(dailyLimit float64, todayMeals []models.MealPlan) float64 {
	left := FoodBudget(dailyLimit)
	for _, m := range todayMeals {
		if m.IsCompleted {
			left -= m.Cost
		}
	}
	if left < 0 {
		return 0
	}
	return left
}

// Picker 从 n 个候选中选一个下标
type Picker interface {
	Pick(n int) int
}

// PickerFunc 函数适配 Picker
type PickerFunc func(n int) int

// Pick 实现 Picker
func (f PickerFunc) Pick(n int) int { return f(n) }

// RandomPicker 均匀随机选择
func RandomPicker() Picker {
	return PickerFunc(rand.IntN)
}

// Affordable 单餐价格不超过餐饮预算的 35%，全部超出时返回原列表
func Affordable(options []MealOption, dailyLimit float64) []MealOption {
	perSlot := FoodBudget(dailyLimit) * slotShare
	var out []MealOption
	for _, o := range options {
		if o.Cost <= perSlot {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return options
	}
	return out
}

// PlanWeek 为 start 起 7 天中尚无计划的日期生成四餐
// planned 的键为 yyyy-mm-dd
func PlanWeek(userID uint, preference string, dailyLimit float64, start time.Time, planned map[string]bool, picker Picker) []models.MealPlan {
	menu := Catalog(preference)
	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	var plans []models.MealPlan
	for i := 0; i < 7; i++ {
		day := first.AddDate(0, 0, i)
		if planned[day.Format("2006-01-02")] {
			continue
		}
		for _, slot := range Slots {
			options := Affordable(menu[slot], dailyLimit)
			if len(options) == 0 {
				continue
			}
			choice := options[picker.Pick(len(options))]
			plans = append(plans, models.MealPlan{
				UserID:         userID,
				Date:           day,
				MealType:       slot,
				MealName:       choice.Name,
				Cost:           choice.Cost,
				Calories:       choice.Calories,
				Protein:        choice.Protein,
				NutritionScore: choice.Score,
				Source:         choice.Source,
			})
		}
	}
	return plans
}
