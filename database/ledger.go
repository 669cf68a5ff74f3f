package database

import (
	"context"
	"fmt"

	"budgetbite/analytics"
	"budgetbite/models"

	"gorm.io/gorm"
)

// Ledger 基于 gorm 的流水查询
type Ledger struct {
	db *gorm.DB
}

// NewLedger 创建流水查询
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// SumWhere 区间内消费合计，category 为空表示全部类别
func (l *Ledger) SumWhere(ctx context.Context, userID uint, r analytics.DateRange, category string) (float64, error) {
	var total float64
	q := l.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("user_id = ? AND spent_at >= ? AND spent_at < ?", userID, r.From, r.To)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("统计消费金额失败: %w", err)
	}
	return total, nil
}

// Transactions 区间内流水，按时间升序
func (l *Ledger) Transactions(ctx context.Context, userID uint, r analytics.DateRange) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := l.db.WithContext(ctx).
		Where("user_id = ? AND spent_at >= ? AND spent_at < ?", userID, r.From, r.To).
		Order("spent_at ASC, id ASC").
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("查询消费流水失败: %w", err)
	}
	return txns, nil
}
