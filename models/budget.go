package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrAllocationExceedsTotal 分配合计超过总预算
var ErrAllocationExceedsTotal = errors.New("各类别分配与应急储备合计超过总预算")

// CategoryAllocations 类别 -> 分配金额
type CategoryAllocations map[string]float64

// Budget 月度预算，每个用户每月最多一条
type Budget struct {
	ID               uint                `json:"id" gorm:"primaryKey"`
	UserID           uint                `json:"user_id" gorm:"not null;uniqueIndex:idx_budget_user_month"`
	Month            int                 `json:"month" gorm:"not null;uniqueIndex:idx_budget_user_month"`
	Year             int                 `json:"year" gorm:"not null;uniqueIndex:idx_budget_user_month"`
	TotalAmount      float64             `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	Allocations      CategoryAllocations `json:"allocations" gorm:"type:text;serializer:json"`
	EmergencyReserve float64             `json:"emergency_reserve" gorm:"type:decimal(10,2);default:0"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// TableName 设置表名
func (Budget) TableName() string {
	return "budgets"
}

// defaultAllocationShares 默认分配比例（百分数），Misc 取余数
var defaultAllocationShares = []struct {
	Category string
	Pct      int64
}{
	{CategoryFood, 50},
	{CategoryTravel, 18},
	{CategoryAcademic, 12},
	{CategoryEntertainment, 12},
}

// DefaultAllocations 按默认比例拆分总预算
func DefaultAllocations(total float64) CategoryAllocations {
	sum := toCents(total)
	misc := sum
	alloc := CategoryAllocations{}
	for _, s := range defaultAllocationShares {
		amount := sharePct(sum, s.Pct)
		alloc[s.Category] = amount.InexactFloat64()
		misc = misc.Sub(amount)
	}
	alloc[CategoryMisc] = misc.InexactFloat64()
	return alloc
}

// Allocated 已分配金额合计
func (b *Budget) Allocated() float64 {
	sum := decimal.Zero
	for _, v := range b.Allocations {
		sum = sum.Add(toCents(v))
	}
	return sum.InexactFloat64()
}

// defaultReservePct 手动设置预算时应急储备的默认比例
const defaultReservePct = 8

// AllocationInput 手动设置预算，nil 字段按默认比例
type AllocationInput struct {
	Food             *float64
	Travel           *float64
	Academic         *float64
	Entertainment    *float64
	EmergencyReserve *float64
}

// BuildAllocations 按输入拆分总预算，Misc 取总额减去其余分配与应急储备
// 返回分配与应急储备
func BuildAllocations(total float64, in AllocationInput) (CategoryAllocations, float64, error) {
	sum := toCents(total)
	pick := func(v *float64, pct int64) decimal.Decimal {
		if v != nil {
			return toCents(*v)
		}
		return sharePct(sum, pct)
	}

	parts := []struct {
		Category string
		Amount   decimal.Decimal
	}{
		{CategoryFood, pick(in.Food, defaultAllocationShares[0].Pct)},
		{CategoryTravel, pick(in.Travel, defaultAllocationShares[1].Pct)},
		{CategoryAcademic, pick(in.Academic, defaultAllocationShares[2].Pct)},
		{CategoryEntertainment, pick(in.Entertainment, defaultAllocationShares[3].Pct)},
	}
	reserve := pick(in.EmergencyReserve, defaultReservePct)
	if reserve.IsNegative() {
		return nil, 0, ErrAllocationExceedsTotal
	}

	alloc := CategoryAllocations{}
	misc := sum.Sub(reserve)
	for _, p := range parts {
		if p.Amount.IsNegative() {
			return nil, 0, ErrAllocationExceedsTotal
		}
		alloc[p.Category] = p.Amount.InexactFloat64()
		misc = misc.Sub(p.Amount)
	}
	if misc.IsNegative() {
		return nil, 0, ErrAllocationExceedsTotal
	}
	alloc[CategoryMisc] = misc.InexactFloat64()
	return alloc, reserve.InexactFloat64(), nil
}
