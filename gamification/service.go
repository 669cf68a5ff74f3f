package gamification

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"budgetbite/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUnknownBadge  = errors.New("未知的徽章类型")
	ErrGoalNotFound  = errors.New("储蓄目标不存在")
	ErrInvalidGoal   = errors.New("储蓄目标金额必须大于 0")
	ErrInvalidAmount = errors.New("存入金额必须大于 0")
)

// Service 徽章与储蓄目标
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService 创建服务
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// WithClock 替换时钟
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// AwardBadge 颁发徽章，已拥有时原样返回，created 为 false
func (s *Service) AwardBadge(ctx context.Context, userID uint, badgeType string) (*models.Badge, bool, error) {
	def, ok := LookupBadge(badgeType)
	if !ok {
		return nil, false, ErrUnknownBadge
	}

	badge := models.Badge{
		UserID:      userID,
		BadgeType:   def.Type,
		BadgeName:   def.Name,
		Description: def.Description,
		Icon:        def.Icon,
		EarnedAt:    s.now(),
	}
	// idx_badge_user_type 冲突时忽略插入，并发颁发只有一次生效
	result := s.db.WithContext(ctx).Clauses(clause.Insert{Modifier: "IGNORE"}).Create(&badge)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected > 0 {
		return &badge, true, nil
	}

	var existing models.Badge
	if err := s.db.WithContext(ctx).
		Where(models.Badge{UserID: userID, BadgeType: def.Type}).
		First(&existing).Error; err != nil {
		return nil, false, fmt.Errorf("查询徽章失败: %w", err)
	}
	return &existing, false, nil
}

// BadgeStatus 目录中的徽章及获得情况
type BadgeStatus struct {
	BadgeDefinition
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earned_at"`
}

// Board 成就页数据
type Board struct {
	Badges           []BadgeStatus        `json:"badges"`
	EarnedCount      int                  `json:"earned_count"`
	TotalBadges      int                  `json:"total_badges"`
	Streak           int                  `json:"streak"`
	SavingsThisMonth float64              `json:"savings_this_month"`
	Goals            []models.SavingsGoal `json:"goals"`
}

// SavingsThisMonth 按 30 天平均计算的应花与实际已花之差，不低于 0
func SavingsThisMonth(monthlyBudget, monthSpent float64, now time.Time) float64 {
	expected := monthlyBudget / 30 * float64(now.Day())
	return math.Round(math.Max(0, expected-monthSpent)*100) / 100
}

// MergeBadges 把已获得的徽章合并进目录
func MergeBadges(earned []models.Badge) []BadgeStatus {
	byType := make(map[string]models.Badge, len(earned))
	for _, b := range earned {
		byType[b.BadgeType] = b
	}
	out := make([]BadgeStatus, 0, len(Badges))
	for _, def := range Badges {
		st := BadgeStatus{BadgeDefinition: def}
		if b, ok := byType[def.Type]; ok {
			earnedAt := b.EarnedAt
			st.Earned = true
			st.EarnedAt = &earnedAt
		}
		out = append(out, st)
	}
	return out
}

// Board 汇总徽章、连续天数、本月节省与储蓄目标；streak 与 monthSpent 由调用方从统计器取得
func (s *Service) Board(ctx context.Context, user *models.User, streak int, monthSpent float64, now time.Time) (*Board, error) {
	var earned []models.Badge
	if err := s.db.WithContext(ctx).Where("user_id = ?", user.ID).Find(&earned).Error; err != nil {
		return nil, fmt.Errorf("查询徽章失败: %w", err)
	}
	goals, err := s.Goals(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Board{
		Badges:           MergeBadges(earned),
		EarnedCount:      len(earned),
		TotalBadges:      len(Badges),
		Streak:           streak,
		SavingsThisMonth: SavingsThisMonth(user.MonthlyBudget, monthSpent, now),
		Goals:            goals,
	}, nil
}

// Goals 用户的储蓄目标，新建的在前
func (s *Service) Goals(ctx context.Context, userID uint) ([]models.SavingsGoal, error) {
	var goals []models.SavingsGoal
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("查询储蓄目标失败: %w", err)
	}
	return goals, nil
}

// CreateGoal 新建储蓄目标
func (s *Service) CreateGoal(ctx context.Context, userID uint, name string, target float64, deadline *time.Time) (*models.SavingsGoal, error) {
	if target <= 0 {
		return nil, ErrInvalidGoal
	}
	if name == "" {
		name = "My Goal"
	}
	goal := models.SavingsGoal{UserID: userID, Name: name, TargetAmount: target, Deadline: deadline}
	if err := s.db.WithContext(ctx).Create(&goal).Error; err != nil {
		return nil, err
	}
	goal.Progress = goal.ProgressPct()
	return &goal, nil
}

// ApplyContribution 累加金额，首次达到目标时返回 true
func ApplyContribution(goal *models.SavingsGoal, amount float64) bool {
	wasCompleted := goal.IsCompleted
	goal.CurrentAmount = math.Round((goal.CurrentAmount+amount)*100) / 100
	if goal.CurrentAmount >= goal.TargetAmount {
		goal.IsCompleted = true
	}
	goal.Progress = goal.ProgressPct()
	return goal.IsCompleted && !wasCompleted
}

// Contribute 向目标存入金额；行加锁，达成目标时在同一事务内写入提醒
// 返回的 alert 仅在本次达成目标时非空
func (s *Service) Contribute(ctx context.Context, userID, goalID uint, amount float64) (*models.SavingsGoal, *models.Alert, error) {
	if amount <= 0 {
		return nil, nil, ErrInvalidAmount
	}

	var goal models.SavingsGoal
	var alert *models.Alert
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", goalID, userID).
			First(&goal).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGoalNotFound
			}
			return err
		}

		crossed := ApplyContribution(&goal, amount)
		if err := tx.Model(&goal).Updates(map[string]interface{}{
			"current_amount": goal.CurrentAmount,
			"is_completed":   goal.IsCompleted,
		}).Error; err != nil {
			return err
		}

		if crossed {
			alert = &models.Alert{
				UserID:    userID,
				AlertType: models.AlertGoalComplete,
				Title:     "🎉 Goal Completed!",
				Message:   fmt.Sprintf("You reached your goal \"%s\" of ₹%.0f. Amazing!", goal.Name, goal.TargetAmount),
				Icon:      "🎉",
			}
			if err := tx.Create(alert).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &goal, alert, nil
}

// DeleteGoal 删除储蓄目标
func (s *Service) DeleteGoal(ctx context.Context, userID, goalID uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", goalID, userID).Delete(&models.SavingsGoal{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGoalNotFound
	}
	return nil
}
