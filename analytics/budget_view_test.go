package analytics

import (
	"testing"

	"budgetbite/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBudgetView(t *testing.T) {
	budget := &models.Budget{TotalAmount: 8000, Allocations: models.DefaultAllocations(8000)}
	spent := []CategoryTotal{
		{Category: models.CategoryFood, Total: 3000},
		{Category: models.CategoryTravel, Total: 1000},
	}
	pace := ComputePace(8000, 4000, day(2026, 6, 20))

	v := NewBudgetView(budget, 8000, spent, pace, 11)

	assert.Equal(t, 4000.0, v.MonthSpent)
	assert.Equal(t, 4000.0, v.Remaining)
	assert.Equal(t, 363.64, v.DailyLimit)
	require.Len(t, v.Categories, len(models.GetCategories()))

	food := v.Categories[0]
	assert.Equal(t, models.CategoryFood, food.Category)
	assert.Equal(t, 4000.0, food.Allocated)
	assert.Equal(t, 1000.0, food.Remaining)
	assert.Equal(t, 75.0, food.UsedPct)

	health := v.Categories[5]
	assert.Equal(t, models.CategoryHealth, health.Category)
	assert.Zero(t, health.Allocated)
	assert.Zero(t, health.UsedPct)
}

func TestNewBudgetView_NoBudgetRow(t *testing.T) {
	v := NewBudgetView(nil, 5000, []CategoryTotal{{Category: models.CategoryMisc, Total: 120}}, Pace{}, 0)

	assert.Nil(t, v.Budget)
	assert.Zero(t, v.DailyLimit)
	misc := v.Categories[len(v.Categories)-1]
	assert.Equal(t, -120.0, misc.Remaining)
}
