package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsights_Order(t *testing.T) {
	split := WeekSplit{WeekdayAvg: 100, WeekendAvg: 200}
	cats := []CategoryTotal{{Category: "Food", Total: 700}, {Category: "Travel", Total: 300}}
	wow := WeekChange{ThisWeek: 700, LastWeek: 500, Change: 200, ChangePct: 40}

	got := Insights(split, cats, wow)
	require.Len(t, got, 3)
	assert.Equal(t, "📅", got[0].Icon)
	assert.Equal(t, SeverityWarning, got[0].Type)
	assert.Equal(t, "Weekend spending is 100% higher than weekdays", got[0].Text)
	assert.Equal(t, "🍕", got[1].Icon)
	assert.Equal(t, SeverityInfo, got[1].Type)
	assert.Equal(t, "Food makes up 70% of spending — try mess meals to save", got[1].Text)
	assert.Equal(t, "📈", got[2].Icon)
	assert.Equal(t, "Spending is up ₹200 vs last week", got[2].Text)
}

func TestInsights_ZeroWeekdayAverage(t *testing.T) {
	got := Insights(WeekSplit{WeekdayAvg: 0, WeekendAvg: 250}, nil, WeekChange{Change: 35.4})
	require.Len(t, got, 2)
	assert.Equal(t, "Weekend spending is 24900% higher than weekdays", got[0].Text)
	assert.Equal(t, "Spending is up ₹35 vs last week", got[1].Text)
}

func TestInsights_FoodShareThreshold(t *testing.T) {
	cats := []CategoryTotal{{Category: "Food", Total: 600}, {Category: "Travel", Total: 400}}
	got := Insights(WeekSplit{}, cats, WeekChange{})
	require.Len(t, got, 2)
	assert.Equal(t, "Food makes up 60% of spending — try mess meals to save", got[0].Text)
}

func TestInsights_NoSpikeSpendingDown(t *testing.T) {
	split := WeekSplit{WeekdayAvg: 100, WeekendAvg: 130}
	cats := []CategoryTotal{{Category: "Food", Total: 100}, {Category: "Travel", Total: 400}}
	wow := WeekChange{Change: -250}

	got := Insights(split, cats, wow)
	require.Len(t, got, 1)
	assert.Equal(t, SeveritySuccess, got[0].Type)
	assert.Equal(t, "Great! Spending is down ₹250 vs last week", got[0].Text)
}

func TestInsights_ZeroChangeIsSuccess(t *testing.T) {
	got := Insights(WeekSplit{}, nil, WeekChange{})
	require.Len(t, got, 1)
	assert.Equal(t, "📉", got[0].Icon)
	assert.Equal(t, "Great! Spending is down ₹0 vs last week", got[0].Text)
}

func TestBudgetHealth(t *testing.T) {
	status, _ := BudgetHealth(30, 33.3)
	assert.Equal(t, HealthHealthy, status)

	status, _ = BudgetHealth(45, 33.3)
	assert.Equal(t, HealthWarning, status)

	status, msg := BudgetHealth(60, 33.3)
	assert.Equal(t, HealthDanger, status)
	assert.NotEmpty(t, msg)
}

func TestForecast(t *testing.T) {
	now := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)

	t.Run("danger", func(t *testing.T) {
		in, balance := Forecast(3000, 1500, now)
		assert.Equal(t, SeverityDanger, in.Type)
		assert.Equal(t, "At this pace, budget will end in 10 days", in.Text)
		assert.Equal(t, -1500.0, balance)
	})

	t.Run("success", func(t *testing.T) {
		in, balance := Forecast(3000, 500, now)
		assert.Equal(t, SeveritySuccess, in.Type)
		assert.Equal(t, "Great pace! Predicted savings: ₹1500 this month", in.Text)
		assert.Equal(t, 1500.0, balance)
	})

	t.Run("warning", func(t *testing.T) {
		late := time.Date(2024, time.June, 28, 9, 0, 0, 0, time.UTC)
		in, _ := Forecast(3000, 2500, late)
		assert.Equal(t, SeverityWarning, in.Type)
		assert.Equal(t, "You've used 83% of your budget with 3 days left", in.Text)
	})
}
