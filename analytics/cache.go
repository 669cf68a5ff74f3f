package analytics

import (
	"context"
	"fmt"
	"time"

	"budgetbite/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// ReportCache 报表缓存存储，由 service 包提供 Redis 实现
type ReportCache interface {
	// Get 命中时把值解码到 dest 并返回 true
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// cachedReport 缓存条目，Day 不是今天时视为过期
type cachedReport struct {
	Day    string  `json:"day"`
	Report *Report `json:"report"`
}

// CachedAggregator 只缓存月度报表，日限额与仪表盘总是实时计算
type CachedAggregator struct {
	Aggregator
	cache ReportCache
	ttl   time.Duration
	group singleflight.Group
}

// NewCachedAggregator 包装一个统计器，为 Report 加缓存
func NewCachedAggregator(inner Aggregator, cache ReportCache, ttl time.Duration) *CachedAggregator {
	return &CachedAggregator{Aggregator: inner, cache: cache, ttl: ttl}
}

func reportKey(userID uint) string {
	return fmt.Sprintf("budgetbite:report:%d", userID)
}

// Report 先查缓存，未命中时同一用户的并发请求只计算一次
func (c *CachedAggregator) Report(ctx context.Context, user *models.User, now time.Time) (*Report, error) {
	key := reportKey(user.ID)
	day := StartOfDay(now).Format(dateLayout)

	var entry cachedReport
	hit, err := c.cache.Get(ctx, key, &entry)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("读取报表缓存失败")
	}
	if hit && entry.Day == day && entry.Report != nil {
		return entry.Report, nil
	}

	v, err, _ := c.group.Do(key+":"+day, func() (interface{}, error) {
		report, err := c.Aggregator.Report(ctx, user, now)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Set(ctx, key, cachedReport{Day: day, Report: report}, c.ttl); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("写入报表缓存失败")
		}
		return report, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Report), nil
}

// Forget 删除该用户的报表缓存
func (c *CachedAggregator) Forget(ctx context.Context, userID uint) {
	if err := c.cache.Delete(ctx, reportKey(userID)); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("清除报表缓存失败")
	}
	c.Aggregator.Forget(ctx, userID)
}
