package analytics

import (
	"fmt"
	"math"
	"time"

	"budgetbite/models"
)

// 提示级别
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeveritySuccess = "success"
	SeverityDanger  = "danger"
)

// 预算健康状态
const (
	HealthHealthy = "healthy"
	HealthWarning = "warning"
	HealthDanger  = "danger"
)

const (
	weekendSpikeRatio  = 1.3
	foodHeavyShare     = 0.60
	healthWarnMargin   = 15.0
	forecastWarnUsePct = 80.0
)

// Insight 一条消费洞察
type Insight struct {
	Type string `json:"type"`
	Icon string `json:"icon"`
	Text string `json:"text"`
}

// Insights 按固定顺序生成洞察：周末、餐饮占比、周环比
func Insights(split WeekSplit, categories []CategoryTotal, wow WeekChange) []Insight {
	insights := []Insight{}

	if split.WeekendAvg > split.WeekdayAvg*weekendSpikeRatio {
		higher := (split.WeekendAvg/math.Max(1, split.WeekdayAvg) - 1) * 100
		insights = append(insights, Insight{
			Type: SeverityWarning,
			Icon: "📅",
			Text: fmt.Sprintf("Weekend spending is %.0f%% higher than weekdays", higher),
		})
	}

	if share := ShareOf(categories, models.CategoryFood); share >= foodHeavyShare {
		insights = append(insights, Insight{
			Type: SeverityInfo,
			Icon: "🍕",
			Text: fmt.Sprintf("Food makes up %.0f%% of spending — try mess meals to save", share*100),
		})
	}

	if wow.Change > 0 {
		insights = append(insights, Insight{
			Type: SeverityWarning,
			Icon: "📈",
			Text: fmt.Sprintf("Spending is up ₹%.0f vs last week", wow.Change),
		})
	} else {
		insights = append(insights, Insight{
			Type: SeveritySuccess,
			Icon: "📉",
			Text: fmt.Sprintf("Great! Spending is down ₹%.0f vs last week", math.Abs(wow.Change)),
		})
	}

	return insights
}

// BudgetHealth 已用比例不超过月进度为健康，超出 15 个百分点以内为警告
func BudgetHealth(usedPct, dayPct float64) (string, string) {
	switch {
	case usedPct <= dayPct:
		return HealthHealthy, "You're on track! Keep it up 💪"
	case usedPct <= dayPct+healthWarnMargin:
		return HealthWarning, "Slightly over pace. Watch your spending ⚡"
	default:
		return HealthDanger, "Over budget pace! Cut back on non-essentials 🚨"
	}
}

// Forecast 以本月日均消费外推月底结余
func Forecast(monthlyBudget, monthSpent float64, now time.Time) (Insight, float64) {
	dim := DaysInMonth(now.Year(), now.Month())
	avgDaily := monthSpent / float64(now.Day())
	predictedBalance := Round2(monthlyBudget - avgDaily*float64(dim))
	remainingBudget := monthlyBudget - monthSpent

	if predictedBalance < 0 {
		days := RemainingDays(now)
		if avgDaily > 0 {
			days = int(math.Max(0, remainingBudget) / avgDaily)
		}
		return Insight{
			Type: SeverityDanger,
			Icon: "🔮",
			Text: fmt.Sprintf("At this pace, budget will end in %d days", days),
		}, predictedBalance
	}

	usedPct := 0.0
	if monthlyBudget > 0 {
		usedPct = monthSpent / monthlyBudget * 100
	}
	if usedPct > forecastWarnUsePct {
		return Insight{
			Type: SeverityWarning,
			Icon: "🔮",
			Text: fmt.Sprintf("You've used %.0f%% of your budget with %d days left", usedPct, RemainingDays(now)),
		}, predictedBalance
	}

	return Insight{
		Type: SeveritySuccess,
		Icon: "🔮",
		Text: fmt.Sprintf("Great pace! Predicted savings: ₹%.0f this month", predictedBalance),
	}, predictedBalance
}
