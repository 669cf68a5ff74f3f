package analytics

import (
	"context"
	"time"

	"budgetbite/models"
)

// Ledger 流水查询接口，由 database 包提供 gorm 实现
type Ledger interface {
	// SumWhere 区间内消费合计，category 为空表示全部类别
	SumWhere(ctx context.Context, userID uint, r DateRange, category string) (float64, error)
	// Transactions 区间内流水，按时间升序
	Transactions(ctx context.Context, userID uint, r DateRange) ([]models.Transaction, error)
}

// Aggregator 消费统计
type Aggregator interface {
	TodaySpent(ctx context.Context, userID uint, day time.Time) (float64, error)
	MonthSpent(ctx context.Context, userID uint, now time.Time) (float64, error)
	CategoryTotals(ctx context.Context, userID uint, now time.Time) ([]CategoryTotal, error)
	DailyLimit(ctx context.Context, user *models.User, now time.Time) (float64, error)
	Streak(ctx context.Context, user *models.User, now time.Time) (int, error)
	Pace(ctx context.Context, user *models.User, now time.Time) (Pace, error)
	Overview(ctx context.Context, user *models.User, now time.Time) (*Overview, error)
	Report(ctx context.Context, user *models.User, now time.Time) (*Report, error)
	// Forget 丢弃该用户的缓存结果，写流水后调用
	Forget(ctx context.Context, userID uint)
}

// Overview 仪表盘数据
type Overview struct {
	TodaySpent       float64              `json:"today_spent"`
	MonthSpent       float64              `json:"month_spent"`
	DailyLimit       float64              `json:"daily_limit"`
	MonthlyBudget    float64              `json:"monthly_budget"`
	RemainingBudget  float64              `json:"remaining_budget"`
	RemainingDays    int                  `json:"remaining_days"`
	DaysInMonth      int                  `json:"days_in_month"`
	BudgetUsedPct    float64              `json:"budget_used_pct"`
	DayProgressPct   float64              `json:"day_progress_pct"`
	Status           string               `json:"status"`
	StatusMessage    string               `json:"status_message"`
	Weekly           []DayAmount          `json:"weekly"`
	Categories       []CategoryTotal      `json:"categories"`
	PredictedBalance float64              `json:"predicted_balance"`
	Forecast         Insight              `json:"forecast"`
	Recent           []models.Transaction `json:"recent"`
}

// Report 月度分析报表
type Report struct {
	Day           string              `json:"day"`
	MonthSpent    float64             `json:"month_spent"`
	DailyAvg      float64             `json:"daily_avg"`
	DaysInMonth   int                 `json:"days_in_month"`
	DailySpending []DayAmount         `json:"daily_spending"`
	Categories    []CategoryTotal     `json:"categories"`
	FoodBreakdown []CategoryTotal     `json:"food_breakdown"`
	WeekSplit     WeekSplit           `json:"week_split"`
	WeekChange    WeekChange          `json:"week_change"`
	TopExpense    *models.Transaction `json:"top_expense"`
	Insights      []Insight           `json:"insights"`
}

const recentLimit = 5

// SpendAggregator 基于 Ledger 的统计实现
type SpendAggregator struct {
	ledger Ledger
}

// NewAggregator 创建统计器
func NewAggregator(ledger Ledger) *SpendAggregator {
	return &SpendAggregator{ledger: ledger}
}

// TodaySpent 当天消费合计
func (a *SpendAggregator) TodaySpent(ctx context.Context, userID uint, day time.Time) (float64, error) {
	return a.ledger.SumWhere(ctx, userID, DayRange(day), "")
}

// MonthSpent now 所在自然月的消费合计
func (a *SpendAggregator) MonthSpent(ctx context.Context, userID uint, now time.Time) (float64, error) {
	return a.ledger.SumWhere(ctx, userID, MonthRange(now.Year(), now.Month(), now.Location()), "")
}

// CategoryTotals now 所在自然月的分类汇总
func (a *SpendAggregator) CategoryTotals(ctx context.Context, userID uint, now time.Time) ([]CategoryTotal, error) {
	txns, err := a.ledger.Transactions(ctx, userID, MonthRange(now.Year(), now.Month(), now.Location()))
	if err != nil {
		return nil, err
	}
	return CategoryTotals(txns), nil
}

// DailyLimit 今日可用额度
func (a *SpendAggregator) DailyLimit(ctx context.Context, user *models.User, now time.Time) (float64, error) {
	spent, err := a.MonthSpent(ctx, user.ID, now)
	if err != nil {
		return 0, err
	}
	return DailyLimit(user.MonthlyBudget, spent, RemainingDays(now)), nil
}

// Streak 连续未超当前日限额的天数
func (a *SpendAggregator) Streak(ctx context.Context, user *models.User, now time.Time) (int, error) {
	limit, err := a.DailyLimit(ctx, user, now)
	if err != nil {
		return 0, err
	}
	today := StartOfDay(now)
	window := DateRange{From: today.AddDate(0, 0, -(streakWindow - 1)), To: today.AddDate(0, 0, 1)}
	if monthStart := today.AddDate(0, 0, 1-today.Day()); window.From.Before(monthStart) {
		window.From = monthStart
	}
	txns, err := a.ledger.Transactions(ctx, user.ID, window)
	if err != nil {
		return 0, err
	}
	return Streak(SumByDay(txns, now.Location()), now, limit), nil
}

// Pace 本月消费节奏
func (a *SpendAggregator) Pace(ctx context.Context, user *models.User, now time.Time) (Pace, error) {
	spent, err := a.MonthSpent(ctx, user.ID, now)
	if err != nil {
		return Pace{}, err
	}
	return ComputePace(user.MonthlyBudget, spent, now), nil
}

// Overview 仪表盘：本月与近 7 天流水一次取回后在内存中汇总
func (a *SpendAggregator) Overview(ctx context.Context, user *models.User, now time.Time) (*Overview, error) {
	loc := now.Location()
	today := StartOfDay(now)
	month := MonthRange(now.Year(), now.Month(), loc)
	weekFrom := today.AddDate(0, 0, -6)
	window := DateRange{From: minTime(month.From, weekFrom), To: today.AddDate(0, 0, 1)}

	txns, err := a.ledger.Transactions(ctx, user.ID, window)
	if err != nil {
		return nil, err
	}
	monthTxns := filterRange(txns, month)
	daily := SumByDay(txns, loc)

	dim := DaysInMonth(now.Year(), now.Month())
	monthSpent := Round2(sumAmounts(monthTxns))
	budget := user.MonthlyBudget

	o := &Overview{
		TodaySpent:      Round2(daily.Amount(today)),
		MonthSpent:      monthSpent,
		DailyLimit:      DailyLimit(budget, monthSpent, RemainingDays(now)),
		MonthlyBudget:   budget,
		RemainingBudget: Round2(budget - monthSpent),
		RemainingDays:   RemainingDays(now),
		DaysInMonth:     dim,
		DayProgressPct:  round1(float64(now.Day()) / float64(dim) * 100),
		Weekly:          Series(daily, weekFrom, today, "Mon"),
		Categories:      CategoryTotals(monthTxns),
		Recent:          recent(txns, recentLimit),
	}
	if budget > 0 {
		o.BudgetUsedPct = round1(monthSpent / budget * 100)
	}
	o.Status, o.StatusMessage = BudgetHealth(o.BudgetUsedPct, o.DayProgressPct)
	o.Forecast, o.PredictedBalance = Forecast(budget, monthSpent, now)
	return o, nil
}

// Report 月度分析：覆盖本月、上周与本周的流水一次取回
func (a *SpendAggregator) Report(ctx context.Context, user *models.User, now time.Time) (*Report, error) {
	loc := now.Location()
	today := StartOfDay(now)
	month := MonthRange(now.Year(), now.Month(), loc)
	lastWeek := WeekStart(now).AddDate(0, 0, -7)
	window := DateRange{From: minTime(month.From, lastWeek), To: today.AddDate(0, 0, 1)}

	txns, err := a.ledger.Transactions(ctx, user.ID, window)
	if err != nil {
		return nil, err
	}
	monthTxns := filterRange(txns, month)
	daily := SumByDay(txns, loc)
	monthSpent := Round2(sumAmounts(monthTxns))

	r := &Report{
		Day:           today.Format(dateLayout),
		MonthSpent:    monthSpent,
		DailyAvg:      Round2(monthSpent / float64(now.Day())),
		DaysInMonth:   DaysInMonth(now.Year(), now.Month()),
		DailySpending: Series(daily, month.From, today, "2"),
		Categories:    CategoryTotals(monthTxns),
		FoodBreakdown: FoodBreakdown(monthTxns),
		WeekSplit:     WeekdayWeekend(daily, now),
		WeekChange:    WeekOverWeek(daily, now),
	}
	for i := range monthTxns {
		if r.TopExpense == nil || monthTxns[i].Amount > r.TopExpense.Amount {
			top := monthTxns[i]
			r.TopExpense = &top
		}
	}
	r.Insights = Insights(r.WeekSplit, r.Categories, r.WeekChange)
	return r, nil
}

// Forget 无缓存，什么都不做
func (a *SpendAggregator) Forget(ctx context.Context, userID uint) {}

// recent 取最近 n 条流水，新的在前
func recent(txns []models.Transaction, n int) []models.Transaction {
	out := make([]models.Transaction, 0, n)
	for i := len(txns) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, txns[i])
	}
	return out
}
