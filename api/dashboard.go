package api

import (
	"budgetbite/analytics"
	"budgetbite/database"
	"budgetbite/models"

	"github.com/gin-gonic/gin"
)

const recentAlertLimit = 3

// DashboardHandler 仪表盘与分析报表
type DashboardHandler struct {
	agg analytics.Aggregator
}

// NewDashboardHandler 创建仪表盘处理器
func NewDashboardHandler(agg analytics.Aggregator) *DashboardHandler {
	return &DashboardHandler{agg: agg}
}

// DashboardResponse 仪表盘数据
type DashboardResponse struct {
	*analytics.Overview
	Streak       int            `json:"streak"`
	UnreadAlerts int64          `json:"unread_alerts"`
	RecentAlerts []models.Alert `json:"recent_alerts"`
}

// Overview 仪表盘
// @Summary 仪表盘
// @Description 今日与本月消费、日限额、预算健康度、近 7 天趋势、月末预测、连续达标天数与未读提醒
// @Tags 分析
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=DashboardResponse} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/dashboard [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	now := clock()

	overview, err := h.agg.Overview(ctx, user, now)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}
	streak, err := h.agg.Streak(ctx, user, now)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}

	resp := DashboardResponse{Overview: overview, Streak: streak}
	db := database.DB.WithContext(ctx)
	if err := db.Model(&models.Alert{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Count(&resp.UnreadAlerts).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询提醒失败"))
		return
	}
	if err := db.Where("user_id = ?", user.ID).
		Order("created_at DESC").Limit(recentAlertLimit).
		Find(&resp.RecentAlerts).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询提醒失败"))
		return
	}

	Success(c, resp)
}

// Report 月度分析
// @Summary 月度分析报表
// @Description 每日消费、分类分布、餐饮细分、工作日/周末对比、周环比、最大单笔与消费洞察
// @Tags 分析
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=analytics.Report} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/analytics [get]
func (h *DashboardHandler) Report(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}
	report, err := h.agg.Report(c.Request.Context(), user, clock())
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}
	Success(c, report)
}
