package models

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// toCents 金额转为保留两位小数的定点数
func toCents(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// sharePct 按比例取金额，比例以百分数给出
func sharePct(total decimal.Decimal, pct int64) decimal.Decimal {
	return total.Mul(decimal.NewFromInt(pct)).Div(hundred).Round(2)
}
