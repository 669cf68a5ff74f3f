package mealplan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"budgetbite/models"

	"gorm.io/gorm"
)

var (
	ErrMealNotFound  = errors.New("餐食计划不存在")
	ErrMealCompleted = errors.New("该餐食已完成")
	ErrInvalidMeal   = errors.New("餐食信息不合法")
)

// Service 餐食计划的持久化操作
type Service struct {
	db     *gorm.DB
	picker Picker
	now    func() time.Time
}

// NewService 创建餐食服务，默认随机选餐
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, picker: RandomPicker(), now: time.Now}
}

// WithPicker 替换选餐策略
func (s *Service) WithPicker(p Picker) *Service {
	s.picker = p
	return s
}

// WithClock 替换时钟
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// AddInput 手动添加餐食
type AddInput struct {
	Date           time.Time
	MealType       string
	Name           string
	Cost           float64
	Calories       int
	Protein        float64
	NutritionScore float64
	Source         string
}

// Add 添加一条餐食计划
func (s *Service) Add(ctx context.Context, userID uint, in AddInput) (*models.MealPlan, error) {
	if in.Name == "" || in.Cost <= 0 || !models.IsValidMealType(in.MealType) {
		return nil, ErrInvalidMeal
	}
	if in.Source == "" {
		in.Source = "Mess"
	}
	meal := models.MealPlan{
		UserID:         userID,
		Date:           in.Date,
		MealType:       in.MealType,
		MealName:       in.Name,
		Cost:           in.Cost,
		Calories:       in.Calories,
		Protein:        in.Protein,
		NutritionScore: in.NutritionScore,
		Source:         in.Source,
	}
	if err := s.db.WithContext(ctx).Create(&meal).Error; err != nil {
		return nil, err
	}
	return &meal, nil
}

// AutoPlan 为 start 起 7 天自动排餐，已有计划的日期保持不动
func (s *Service) AutoPlan(ctx context.Context, user *models.User, dailyLimit float64, start time.Time) ([]models.MealPlan, error) {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	to := from.AddDate(0, 0, 7)

	var dates []time.Time
	if err := s.db.WithContext(ctx).Model(&models.MealPlan{}).
		Where("user_id = ? AND date >= ? AND date < ?", user.ID, from, to).
		Distinct().Pluck("date", &dates).Error; err != nil {
		return nil, fmt.Errorf("查询已有餐食计划失败: %w", err)
	}
	planned := make(map[string]bool, len(dates))
	for _, d := range dates {
		planned[d.Format("2006-01-02")] = true
	}

	plans := PlanWeek(user.ID, user.FoodPreference, dailyLimit, from, planned, s.picker)
	if len(plans) == 0 {
		return plans, nil
	}
	if err := s.db.WithContext(ctx).Create(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// Complete 标记餐食完成并记一笔餐饮消费，两步在同一事务内
func (s *Service) Complete(ctx context.Context, userID, mealID uint) (*models.MealPlan, *models.Transaction, error) {
	var meal models.MealPlan
	var txn models.Transaction

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", mealID, userID).First(&meal).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMealNotFound
			}
			return err
		}
		if meal.IsCompleted {
			return ErrMealCompleted
		}
		if err := tx.Model(&meal).Update("is_completed", true).Error; err != nil {
			return err
		}
		txn = models.Transaction{
			UserID:      userID,
			Amount:      meal.Cost,
			Category:    models.CategoryFood,
			Subcategory: meal.Source,
			Description: meal.MealName,
			SpentAt:     s.now(),
			IsFood:      true,
			MealType:    meal.MealType,
		}
		return tx.Create(&txn).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &meal, &txn, nil
}

// Delete 删除餐食计划
func (s *Service) Delete(ctx context.Context, userID, mealID uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", mealID, userID).Delete(&models.MealPlan{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMealNotFound
	}
	return nil
}

// ForDay 某天的餐食，按餐次排序
func (s *Service) ForDay(ctx context.Context, userID uint, day time.Time) ([]models.MealPlan, error) {
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	var meals []models.MealPlan
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, d).
		Order("meal_type ASC").
		Find(&meals).Error
	return meals, err
}

// DayPlan 一天的计划汇总
type DayPlan struct {
	Date    string            `json:"date"`
	Weekday string            `json:"weekday"`
	Meals   []models.MealPlan `json:"meals"`
	Total   float64           `json:"total"`
}

// Week start 起 7 天的计划
func (s *Service) Week(ctx context.Context, userID uint, start time.Time) ([]DayPlan, error) {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	var meals []models.MealPlan
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, from.AddDate(0, 0, 7)).
		Order("date ASC, meal_type ASC").
		Find(&meals).Error; err != nil {
		return nil, err
	}
	return groupByDay(meals, from), nil
}

func groupByDay(meals []models.MealPlan, from time.Time) []DayPlan {
	days := make([]DayPlan, 7)
	index := make(map[string]int, 7)
	for i := range days {
		d := from.AddDate(0, 0, i)
		key := d.Format("2006-01-02")
		days[i] = DayPlan{Date: key, Weekday: d.Weekday().String(), Meals: []models.MealPlan{}}
		index[key] = i
	}
	for _, m := range meals {
		if i, ok := index[m.Date.Format("2006-01-02")]; ok {
			days[i].Meals = append(days[i].Meals, m)
			days[i].Total += m.Cost
		}
	}
	return days
}

// DayTotals 一组餐食的花费、热量与蛋白质合计
type DayTotals struct {
	Cost     float64 `json:"cost"`
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
}

// Totals 汇总
func Totals(meals []models.MealPlan) DayTotals {
	var t DayTotals
	for _, m := range meals {
		t.Cost += m.Cost
		t.Calories += m.Calories
		t.Protein += m.Protein
	}
	return t
}
