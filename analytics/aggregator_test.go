package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"budgetbite/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memLedger 内存流水，按区间与类别过滤
type memLedger struct {
	txns  []models.Transaction
	err   error
	reads int
}

func (m *memLedger) SumWhere(ctx context.Context, userID uint, r DateRange, category string) (float64, error) {
	if m.err != nil {
		return 0, m.err
	}
	var sum float64
	for _, t := range m.txns {
		if t.UserID == userID && r.Contains(t.SpentAt) && (category == "" || t.Category == category) {
			sum += t.Amount
		}
	}
	return sum, nil
}

func (m *memLedger) Transactions(ctx context.Context, userID uint, r DateRange) ([]models.Transaction, error) {
	m.reads++
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Transaction
	for _, t := range m.txns {
		if t.UserID == userID && r.Contains(t.SpentAt) {
			out = append(out, t)
		}
	}
	return out, nil
}

func at(m time.Month, d, h int) time.Time {
	return time.Date(2024, m, d, h, 0, 0, 0, time.UTC)
}

func sampleLedger() *memLedger {
	return &memLedger{txns: []models.Transaction{
		{ID: 1, UserID: 1, Amount: 999, Category: models.CategoryFood, SpentAt: at(time.May, 31, 18)},
		{ID: 2, UserID: 1, Amount: 200, Category: models.CategoryTravel, SpentAt: at(time.June, 5, 10)},
		{ID: 3, UserID: 1, Amount: 100, Category: models.CategoryFood, IsFood: true, Subcategory: "Mess", SpentAt: at(time.June, 10, 8)},
		{ID: 4, UserID: 2, Amount: 700, Category: models.CategoryFood, SpentAt: at(time.June, 10, 9)},
	}}
}

func TestSpendAggregator_Basics(t *testing.T) {
	ctx := context.Background()
	agg := NewAggregator(sampleLedger())
	user := &models.User{ID: 1, MonthlyBudget: 3000}
	now := at(time.June, 10, 14)

	today, err := agg.TodaySpent(ctx, 1, now)
	require.NoError(t, err)
	assert.Equal(t, 100.0, today)

	month, err := agg.MonthSpent(ctx, 1, now)
	require.NoError(t, err)
	assert.Equal(t, 300.0, month)

	limit, err := agg.DailyLimit(ctx, user, now)
	require.NoError(t, err)
	assert.Equal(t, 128.57, limit)

	streak, err := agg.Streak(ctx, user, now)
	require.NoError(t, err)
	// 06-05 花了 200 > 128.57，06-06 至 06-10 共 5 天
	assert.Equal(t, 5, streak)

	pace, err := agg.Pace(ctx, user, now)
	require.NoError(t, err)
	assert.Equal(t, PaceUnder, pace.Status)

	cats, err := agg.CategoryTotals(ctx, 1, now)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, models.CategoryTravel, cats[0].Category)
}

func TestSpendAggregator_StreakStaysInMonth(t *testing.T) {
	ctx := context.Background()
	ledger := &memLedger{txns: []models.Transaction{
		{ID: 1, UserID: 1, Amount: 20, Category: models.CategoryFood, SpentAt: at(time.May, 31, 18)},
		{ID: 2, UserID: 1, Amount: 10, Category: models.CategoryFood, SpentAt: at(time.June, 2, 9)},
	}}
	agg := NewAggregator(ledger)

	streak, err := agg.Streak(ctx, &models.User{ID: 1, MonthlyBudget: 3000}, at(time.June, 3, 12))
	require.NoError(t, err)
	assert.Equal(t, 3, streak)

	// 本月尚无流水
	streak, err = agg.Streak(ctx, &models.User{ID: 1, MonthlyBudget: 3000}, at(time.June, 1, 12))
	require.NoError(t, err)
	assert.Equal(t, 0, streak)
}

func TestSpendAggregator_Overview(t *testing.T) {
	agg := NewAggregator(sampleLedger())
	user := &models.User{ID: 1, MonthlyBudget: 3000}

	o, err := agg.Overview(context.Background(), user, at(time.June, 10, 14))
	require.NoError(t, err)

	assert.Equal(t, 100.0, o.TodaySpent)
	assert.Equal(t, 300.0, o.MonthSpent)
	assert.Equal(t, 128.57, o.DailyLimit)
	assert.Equal(t, 2700.0, o.RemainingBudget)
	assert.Equal(t, 21, o.RemainingDays)
	assert.Equal(t, 30, o.DaysInMonth)
	assert.Equal(t, 10.0, o.BudgetUsedPct)
	assert.Equal(t, 33.3, o.DayProgressPct)
	assert.Equal(t, HealthHealthy, o.Status)
	assert.Len(t, o.Weekly, 7)
	require.NotEmpty(t, o.Recent)
	assert.Equal(t, uint(3), o.Recent[0].ID)
	assert.Equal(t, SeveritySuccess, o.Forecast.Type)
}

func TestSpendAggregator_Report(t *testing.T) {
	agg := NewAggregator(sampleLedger())
	user := &models.User{ID: 1, MonthlyBudget: 3000}

	r, err := agg.Report(context.Background(), user, at(time.June, 10, 14))
	require.NoError(t, err)

	assert.Equal(t, "2024-06-10", r.Day)
	assert.Equal(t, 300.0, r.MonthSpent)
	assert.Equal(t, 30.0, r.DailyAvg)
	assert.Len(t, r.DailySpending, 10)
	require.NotNil(t, r.TopExpense)
	assert.Equal(t, uint(2), r.TopExpense.ID)
	require.Len(t, r.FoodBreakdown, 1)
	assert.Equal(t, "Mess", r.FoodBreakdown[0].Category)
	// 本周(06-10 起) 100，上周(06-03..06-09) 200
	assert.Equal(t, 100.0, r.WeekChange.ThisWeek)
	assert.Equal(t, 200.0, r.WeekChange.LastWeek)
	assert.NotEmpty(t, r.Insights)
}

func TestSpendAggregator_LedgerError(t *testing.T) {
	agg := NewAggregator(&memLedger{err: errors.New("db down")})
	user := &models.User{ID: 1, MonthlyBudget: 3000}

	_, err := agg.DailyLimit(context.Background(), user, at(time.June, 10, 14))
	assert.Error(t, err)
	_, err = agg.Overview(context.Background(), user, at(time.June, 10, 14))
	assert.Error(t, err)
}

// memCache 以 JSON 存储的内存缓存
type memCache struct {
	data   map[string][]byte
	getErr error
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *memCache) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func TestCachedAggregator_Report(t *testing.T) {
	ctx := context.Background()
	ledger := sampleLedger()
	cache := newMemCache()
	agg := NewCachedAggregator(NewAggregator(ledger), cache, time.Minute)
	user := &models.User{ID: 1, MonthlyBudget: 3000}
	now := at(time.June, 10, 14)

	first, err := agg.Report(ctx, user, now)
	require.NoError(t, err)
	assert.Equal(t, 1, ledger.reads)

	second, err := agg.Report(ctx, user, now)
	require.NoError(t, err)
	assert.Equal(t, 1, ledger.reads, "命中缓存不再查库")
	assert.Equal(t, first.MonthSpent, second.MonthSpent)

	// 写入流水后清缓存
	agg.Forget(ctx, 1)
	_, err = agg.Report(ctx, user, now)
	require.NoError(t, err)
	assert.Equal(t, 2, ledger.reads)

	// 跨天缓存失效
	_, err = agg.Report(ctx, user, at(time.June, 11, 9))
	require.NoError(t, err)
	assert.Equal(t, 3, ledger.reads)
}

func TestCachedAggregator_CacheErrorFallsThrough(t *testing.T) {
	cache := newMemCache()
	cache.getErr = errors.New("redis down")
	agg := NewCachedAggregator(NewAggregator(sampleLedger()), cache, time.Minute)

	r, err := agg.Report(context.Background(), &models.User{ID: 1, MonthlyBudget: 3000}, at(time.June, 10, 14))
	require.NoError(t, err)
	assert.Equal(t, 300.0, r.MonthSpent)
}

func TestCachedAggregator_DailyLimitNotCached(t *testing.T) {
	ledger := sampleLedger()
	agg := NewCachedAggregator(NewAggregator(ledger), newMemCache(), time.Minute)
	user := &models.User{ID: 1, MonthlyBudget: 3000}
	now := at(time.June, 10, 14)

	limit, err := agg.DailyLimit(context.Background(), user, now)
	require.NoError(t, err)
	assert.Equal(t, 128.57, limit)

	ledger.txns = append(ledger.txns, models.Transaction{UserID: 1, Amount: 300, Category: models.CategoryMisc, SpentAt: at(time.June, 10, 15)})
	limit, err = agg.DailyLimit(context.Background(), user, now)
	require.NoError(t, err)
	assert.Equal(t, 114.29, limit)
}
