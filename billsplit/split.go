package billsplit

import (
	"errors"
	"strings"

	"budgetbite/models"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidSplit      = errors.New("分账信息不合法")
	ErrInvalidTotal      = errors.New("金额必须大于 0")
	ErrSharesExceedTotal = errors.New("各参与人份额之和超过总金额")
	ErrParticipantIndex  = errors.New("参与人序号超出范围")
	ErrSplitNotFound     = errors.New("分账单不存在")
)

// ParticipantInput 参与人，Share 仅在 custom 分账时使用
type ParticipantInput struct {
	Name  string  `json:"name"`
	Share float64 `json:"share"`
}

// Input 新建分账
type Input struct {
	Title        string
	Total        float64
	Creator      string
	SplitType    string
	Participants []ParticipantInput
}

// BuildParticipants 计算每人份额，创建人排在最后并视为已付款
// equal: 总额按人数(含创建人)向下取整到分，余数归创建人
// custom: 其他人份额由调用方给出，创建人承担剩余部分
func BuildParticipants(in Input) ([]models.Participant, error) {
	if in.Total <= 0 {
		return nil, ErrInvalidTotal
	}

	var others []ParticipantInput
	for _, p := range in.Participants {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		others = append(others, ParticipantInput{Name: name, Share: p.Share})
	}

	total := decimal.NewFromFloat(in.Total).Round(2)
	shares := make([]decimal.Decimal, len(others))

	switch in.SplitType {
	case "", models.SplitEqual:
		each := total.Div(decimal.NewFromInt(int64(len(others) + 1))).Truncate(2)
		for i := range shares {
			shares[i] = each
		}
	case models.SplitCustom:
		for i, p := range others {
			if p.Share < 0 {
				return nil, ErrInvalidSplit
			}
			shares[i] = decimal.NewFromFloat(p.Share).Round(2)
		}
	default:
		return nil, ErrInvalidSplit
	}

	creatorShare := total
	for _, s := range shares {
		creatorShare = creatorShare.Sub(s)
	}
	if creatorShare.IsNegative() {
		return nil, ErrSharesExceedTotal
	}

	participants := make([]models.Participant, 0, len(others)+1)
	for i, p := range others {
		participants = append(participants, models.Participant{
			Name:  p.Name,
			Share: shares[i].InexactFloat64(),
		})
	}
	creator := strings.TrimSpace(in.Creator)
	if creator == "" {
		creator = "Me"
	}
	participants = append(participants, models.Participant{
		Name:      creator,
		Share:     creatorShare.InexactFloat64(),
		Paid:      true,
		IsCreator: true,
	})
	return participants, nil
}

// Settle 标记第 idx 位参与人已付款，全部付清后整单结清
// 返回 true 表示本次操作使整单结清
func Settle(split *models.BillSplit, idx int) (bool, error) {
	if idx < 0 || idx >= len(split.Participants) {
		return false, ErrParticipantIndex
	}
	wasSettled := split.IsSettled
	split.Participants[idx].Paid = true
	split.IsSettled = split.AllPaid()
	return split.IsSettled && !wasSettled, nil
}
