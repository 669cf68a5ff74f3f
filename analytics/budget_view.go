package analytics

import (
	"budgetbite/models"
)

// CategoryBudget 单个类别的预算执行情况
type CategoryBudget struct {
	Category  string  `json:"category"`
	Allocated float64 `json:"allocated"`
	Spent     float64 `json:"spent"`
	Remaining float64 `json:"remaining"`
	UsedPct   float64 `json:"used_pct"`
}

// BudgetView 预算页数据
type BudgetView struct {
	Budget        *models.Budget   `json:"budget"`
	MonthlyBudget float64          `json:"monthly_budget"`
	MonthSpent    float64          `json:"month_spent"`
	Remaining     float64          `json:"remaining"`
	RemainingDays int              `json:"remaining_days"`
	DailyLimit    float64          `json:"daily_limit"`
	Pace          Pace             `json:"pace"`
	Categories    []CategoryBudget `json:"categories"`
}

// NewBudgetView 按固定类别顺序对比分配额与实际消费
// budget 为空时分配额都按 0 处理
func NewBudgetView(budget *models.Budget, monthlyBudget float64, spent []CategoryTotal, pace Pace, remainingDays int) *BudgetView {
	byCategory := make(map[string]float64, len(spent))
	var monthSpent float64
	for _, c := range spent {
		byCategory[c.Category] += c.Total
		monthSpent += c.Total
	}
	monthSpent = Round2(monthSpent)

	v := &BudgetView{
		Budget:        budget,
		MonthlyBudget: monthlyBudget,
		MonthSpent:    monthSpent,
		Remaining:     Round2(monthlyBudget - monthSpent),
		RemainingDays: remainingDays,
		DailyLimit:    DailyLimit(monthlyBudget, monthSpent, remainingDays),
		Pace:          pace,
	}
	for _, cat := range models.GetCategories() {
		cb := CategoryBudget{Category: cat, Spent: Round2(byCategory[cat])}
		if budget != nil {
			cb.Allocated = budget.Allocations[cat]
		}
		cb.Remaining = Round2(cb.Allocated - cb.Spent)
		if cb.Allocated > 0 {
			cb.UsedPct = round1(cb.Spent / cb.Allocated * 100)
		}
		v.Categories = append(v.Categories, cb)
	}
	return v
}
