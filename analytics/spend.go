package analytics

import (
	"fmt"
	"sort"
	"time"

	"budgetbite/models"
)

// 消费节奏状态
const (
	PaceUnder = "under"
	PaceOver  = "over"
)

// streakWindow 连续达标天数的回溯上限
const streakWindow = 30

// DailyTotals 日期(yyyy-mm-dd) -> 当日消费合计
type DailyTotals map[string]float64

// Amount 取某天的消费合计
func (d DailyTotals) Amount(day time.Time) float64 {
	return d[day.Format(dateLayout)]
}

// SumByDay 按本地日期汇总流水
func SumByDay(txns []models.Transaction, loc *time.Location) DailyTotals {
	totals := DailyTotals{}
	for _, t := range txns {
		totals[t.SpentAt.In(loc).Format(dateLayout)] += t.Amount
	}
	return totals
}

// DailyLimit 今日可用额度 = (月预算 - 本月已花) / 剩余天数，不低于 0
func DailyLimit(monthlyBudget, monthSpent float64, remainingDays int) float64 {
	if remainingDays <= 0 {
		return 0
	}
	limit := Round2((monthlyBudget - monthSpent) / float64(remainingDays))
	if limit < 0 {
		return 0
	}
	return limit
}

// Streak 从今天往前数，消费不超过 limit 的连续天数，最多回溯 30 天且不跨过本月 1 日
// 窗口内没有任何流水时返回 0
func Streak(daily DailyTotals, today time.Time, limit float64) int {
	if len(daily) == 0 {
		return 0
	}
	streak := 0
	day := StartOfDay(today)
	for i := 0; i < streakWindow && day.Month() == today.Month(); i++ {
		if daily.Amount(day) > limit {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// Pace 相对匀速消费的偏离情况
type Pace struct {
	Status   string  `json:"status"`
	Expected float64 `json:"expected"`
	Actual   float64 `json:"actual"`
	Diff     float64 `json:"diff"`
	Message  string  `json:"message"`
}

// ComputePace 期望已花 = 月预算 / 当月天数 * 今天日号
func ComputePace(monthlyBudget, monthSpent float64, now time.Time) Pace {
	dim := DaysInMonth(now.Year(), now.Month())
	expected := Round2(monthlyBudget / float64(dim) * float64(now.Day()))
	diff := Round2(expected - monthSpent)
	p := Pace{Expected: expected, Actual: Round2(monthSpent), Diff: diff}
	if diff > 0 {
		p.Status = PaceUnder
		p.Message = fmt.Sprintf("₹%.0f under expected pace 🎉", diff)
	} else {
		p.Status = PaceOver
		p.Message = fmt.Sprintf("₹%.0f over expected pace ⚠️", -diff)
	}
	return p
}

// WeekSplit 本月工作日/周末的日均消费
type WeekSplit struct {
	WeekdayTotal float64 `json:"weekday_total"`
	WeekendTotal float64 `json:"weekend_total"`
	WeekdayDays  int     `json:"weekday_days"`
	WeekendDays  int     `json:"weekend_days"`
	WeekdayAvg   float64 `json:"weekday_avg"`
	WeekendAvg   float64 `json:"weekend_avg"`
}

// WeekdayWeekend 统计本月 1 号至今天，天数按 max(1, n) 取分母
func WeekdayWeekend(daily DailyTotals, now time.Time) WeekSplit {
	var s WeekSplit
	day := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := 1; i <= now.Day(); i++ {
		amount := daily.Amount(day)
		if isWeekend(day) {
			s.WeekendTotal += amount
			s.WeekendDays++
		} else {
			s.WeekdayTotal += amount
			s.WeekdayDays++
		}
		day = day.AddDate(0, 0, 1)
	}
	s.WeekdayAvg = Round2(s.WeekdayTotal / float64(max(1, s.WeekdayDays)))
	s.WeekendAvg = Round2(s.WeekendTotal / float64(max(1, s.WeekendDays)))
	s.WeekdayTotal = Round2(s.WeekdayTotal)
	s.WeekendTotal = Round2(s.WeekendTotal)
	return s
}

// WeekChange 本周与上周消费对比，周从周一开始
type WeekChange struct {
	ThisWeek  float64 `json:"this_week"`
	LastWeek  float64 `json:"last_week"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
}

// WeekOverWeek 本周一至今天 vs 上周一至上周日
func WeekOverWeek(daily DailyTotals, now time.Time) WeekChange {
	thisStart := WeekStart(now)
	lastStart := thisStart.AddDate(0, 0, -7)
	today := StartOfDay(now)

	var c WeekChange
	for day := lastStart; day.Before(thisStart); day = day.AddDate(0, 0, 1) {
		c.LastWeek += daily.Amount(day)
	}
	for day := thisStart; !day.After(today); day = day.AddDate(0, 0, 1) {
		c.ThisWeek += daily.Amount(day)
	}
	c.ThisWeek = Round2(c.ThisWeek)
	c.LastWeek = Round2(c.LastWeek)
	c.Change = Round2(c.ThisWeek - c.LastWeek)
	c.ChangePct = round1(c.Change / max(1, c.LastWeek) * 100)
	return c
}

// CategoryTotal 分类汇总
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

func sortedTotals(m map[string]float64) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(m))
	for k, v := range m {
		out = append(out, CategoryTotal{Category: k, Total: Round2(v)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total == out[j].Total {
			return out[i].Category < out[j].Category
		}
		return out[i].Total > out[j].Total
	})
	return out
}

// CategoryTotals 按类别汇总，金额降序
func CategoryTotals(txns []models.Transaction) []CategoryTotal {
	m := map[string]float64{}
	for _, t := range txns {
		m[t.Category] += t.Amount
	}
	return sortedTotals(m)
}

// FoodBreakdown 餐饮流水按子类别汇总，无子类别记为 Unknown
func FoodBreakdown(txns []models.Transaction) []CategoryTotal {
	m := map[string]float64{}
	for _, t := range txns {
		if !t.IsFood {
			continue
		}
		sub := t.Subcategory
		if sub == "" {
			sub = "Unknown"
		}
		m[sub] += t.Amount
	}
	return sortedTotals(m)
}

// ShareOf 某类别占总消费的比例，总消费为 0 时返回 0
func ShareOf(totals []CategoryTotal, category string) float64 {
	var sum, part float64
	for _, t := range totals {
		sum += t.Total
		if t.Category == category {
			part = t.Total
		}
	}
	if sum <= 0 {
		return 0
	}
	return part / sum
}

// DayAmount 单日金额，用于折线图
type DayAmount struct {
	Date   string  `json:"date"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// Series 生成 [from, to] 的逐日序列
func Series(daily DailyTotals, from, to time.Time, labelLayout string) []DayAmount {
	var out []DayAmount
	for day := StartOfDay(from); !day.After(to); day = day.AddDate(0, 0, 1) {
		out = append(out, DayAmount{
			Date:   day.Format(dateLayout),
			Label:  day.Format(labelLayout),
			Amount: Round2(daily.Amount(day)),
		})
	}
	return out
}

// filterRange 取落在区间内的流水
func filterRange(txns []models.Transaction, r DateRange) []models.Transaction {
	var out []models.Transaction
	for _, t := range txns {
		if r.Contains(t.SpentAt) {
			out = append(out, t)
		}
	}
	return out
}

// sumAmounts 流水金额合计
func sumAmounts(txns []models.Transaction) float64 {
	var sum float64
	for _, t := range txns {
		sum += t.Amount
	}
	return sum
}
