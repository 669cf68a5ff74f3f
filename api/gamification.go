package api

import (
	"time"

	"budgetbite/analytics"
	"budgetbite/database"
	"budgetbite/gamification"
	"budgetbite/metrics"
	"budgetbite/middleware"
	"budgetbite/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GamificationHandler 徽章与储蓄目标处理器
type GamificationHandler struct {
	agg      analytics.Aggregator
	svc      *gamification.Service
	notifier AlertNotifier
}

// NewGamificationHandler 创建处理器，notifier 可为空
func NewGamificationHandler(agg analytics.Aggregator, notifier AlertNotifier) *GamificationHandler {
	svc := gamification.NewService(database.DB).WithClock(func() time.Time { return clock() })
	return &GamificationHandler{agg: agg, svc: svc, notifier: notifier}
}

// AwardBadgeRequest 颁发徽章
type AwardBadgeRequest struct {
	BadgeType string `json:"badge_type" binding:"required" example:"budget_setter"`
}

// CreateGoalRequest 新建储蓄目标
type CreateGoalRequest struct {
	Name         string  `json:"name" binding:"max=100" example:"New Headphones"`
	TargetAmount float64 `json:"target_amount" binding:"required,gt=0" example:"2000"`
	Deadline     string  `json:"deadline" example:"2026-12-31"`
}

// ContributeRequest 向目标存入金额
type ContributeRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0" example:"200"`
}

// ContributeResponse 存入结果，alert 仅在本次达成目标时返回
type ContributeResponse struct {
	Goal  *models.SavingsGoal `json:"goal"`
	Alert *models.Alert       `json:"alert,omitempty"`
}

// Board 成就页
// @Summary 成就页
// @Description 徽章目录及获得情况、连续控制预算天数、本月节省、储蓄目标
// @Tags 成就
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=gamification.Board} "获取成功"
// @Router /api/v1/gamification [get]
func (h *GamificationHandler) Board(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	now := clock()

	streak, err := h.agg.Streak(ctx, user, now)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}
	monthSpent, err := h.agg.MonthSpent(ctx, user.ID, now)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}

	board, err := h.svc.Board(ctx, user, streak, monthSpent, now)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "获取成就失败"))
		return
	}
	Success(c, board)
}

// AwardBadge 颁发徽章，重复颁发不会产生第二条
// @Summary 颁发徽章
// @Tags 成就
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AwardBadgeRequest true "徽章类型"
// @Success 200 {object} Response{data=models.Badge} "颁发成功"
// @Failure 400 {object} Response "未知的徽章类型"
// @Router /api/v1/gamification/badges [post]
func (h *GamificationHandler) AwardBadge(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req AwardBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	badge, created, err := h.svc.AwardBadge(c.Request.Context(), userID, req.BadgeType)
	if err != nil {
		respondError(c, err, "颁发徽章失败")
		return
	}
	if !created {
		SuccessWithMessage(c, "已拥有该徽章", badge)
		return
	}

	metrics.BadgesAwarded.WithLabelValues(badge.BadgeType).Inc()
	logrus.WithFields(logrus.Fields{"user_id": userID, "badge": badge.BadgeType}).Info("颁发徽章")
	SuccessWithMessage(c, "颁发成功", badge)
}

// Goals 储蓄目标列表
// @Summary 储蓄目标列表
// @Tags 成就
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.SavingsGoal} "获取成功"
// @Router /api/v1/goals [get]
func (h *GamificationHandler) Goals(c *gin.Context) {
	goals, err := h.svc.Goals(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, goals)
}

// CreateGoal 新建储蓄目标
// @Summary 新建储蓄目标
// @Tags 成就
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateGoalRequest true "目标信息"
// @Success 200 {object} Response{data=models.SavingsGoal} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/goals [post]
func (h *GamificationHandler) CreateGoal(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	var deadline *time.Time
	if req.Deadline != "" {
		d, err := time.ParseInLocation(dateLayout, req.Deadline, time.Local)
		if err != nil {
			BadRequest(c, "截止日期格式错误，应为: 2006-01-02")
			return
		}
		deadline = &d
	}

	goal, err := h.svc.CreateGoal(c.Request.Context(), userID, req.Name, req.TargetAmount, deadline)
	if err != nil {
		respondError(c, err, "创建失败")
		return
	}
	SuccessWithMessage(c, "创建成功", goal)
}

// Contribute 向储蓄目标存入金额
// @Summary 存入储蓄目标
// @Description 首次达成目标时写入一条目标达成提醒
// @Tags 成就
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "目标ID"
// @Param request body ContributeRequest true "金额"
// @Success 200 {object} Response{data=ContributeResponse} "存入成功"
// @Failure 404 {object} Response "目标不存在"
// @Router /api/v1/goals/{id}/contribute [post]
func (h *GamificationHandler) Contribute(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}

	goal, alert, err := h.svc.Contribute(c.Request.Context(), user.ID, id, req.Amount)
	if err != nil {
		respondError(c, err, "存入失败")
		return
	}

	if alert != nil {
		metrics.AlertsRaised.WithLabelValues(alert.AlertType).Inc()
		logrus.WithFields(logrus.Fields{"user_id": user.ID, "goal_id": goal.ID}).Info("储蓄目标达成")
		if h.notifier != nil {
			h.notifier.NotifyAlert(user, alert)
		}
	}
	SuccessWithMessage(c, "存入成功", ContributeResponse{Goal: goal, Alert: alert})
}

// DeleteGoal 删除储蓄目标
// @Summary 删除储蓄目标
// @Tags 成就
// @Produce json
// @Security BearerAuth
// @Param id path int true "目标ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "目标不存在"
// @Router /api/v1/goals/{id} [delete]
func (h *GamificationHandler) DeleteGoal(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteGoal(c.Request.Context(), middleware.GetCurrentUserID(c), id); err != nil {
		respondError(c, err, "删除失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}
