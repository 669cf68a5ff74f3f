package analytics

import (
	"math"
	"time"
)

const dateLayout = "2006-01-02"

// DateRange 左闭右开时间区间 [From, To)
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains 判断时间点是否落在区间内
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}

// StartOfDay 当天零点
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayRange 某一自然日
func DayRange(day time.Time) DateRange {
	start := StartOfDay(day)
	return DateRange{From: start, To: start.AddDate(0, 0, 1)}
}

// MonthRange 某一自然月
func MonthRange(year int, month time.Month, loc *time.Location) DateRange {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return DateRange{From: start, To: start.AddDate(0, 1, 0)}
}

// DaysInMonth 当月天数
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// RemainingDays 含今天在内的本月剩余天数
func RemainingDays(now time.Time) int {
	return DaysInMonth(now.Year(), now.Month()) - now.Day() + 1
}

// WeekStart 所在周的周一零点
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return StartOfDay(t).AddDate(0, 0, -offset)
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Round2 保留两位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
