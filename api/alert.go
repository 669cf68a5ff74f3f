package api

import (
	"budgetbite/database"
	"budgetbite/middleware"
	"budgetbite/models"

	"github.com/gin-gonic/gin"
)

const alertListLimit = 50

// AlertHandler 站内提醒处理器
type AlertHandler struct{}

// NewAlertHandler 创建提醒处理器
func NewAlertHandler() *AlertHandler {
	return &AlertHandler{}
}

// List 最近的提醒
// @Summary 提醒列表
// @Description 最近 50 条，新的在前
// @Tags 提醒
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Alert} "获取成功"
// @Router /api/v1/alerts [get]
func (h *AlertHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var alerts []models.Alert
	if err := database.DB.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(alertListLimit).
		Find(&alerts).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, alerts)
}

// MarkRead 标记一条提醒为已读
// @Summary 标记已读
// @Tags 提醒
// @Produce json
// @Security BearerAuth
// @Param id path int true "提醒ID"
// @Success 200 {object} Response "操作成功"
// @Failure 404 {object} Response "提醒不存在"
// @Router /api/v1/alerts/{id}/read [put]
func (h *AlertHandler) MarkRead(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	result := database.DB.WithContext(c.Request.Context()).Model(&models.Alert{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		InternalError(c, SafeErrorMessage(result.Error, "操作失败"))
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "提醒不存在")
		return
	}
	SuccessWithMessage(c, "操作成功", nil)
}

// MarkAllRead 全部标记为已读
// @Summary 全部已读
// @Tags 提醒
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "操作成功"
// @Router /api/v1/alerts/read-all [put]
func (h *AlertHandler) MarkAllRead(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	result := database.DB.WithContext(c.Request.Context()).Model(&models.Alert{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		InternalError(c, SafeErrorMessage(result.Error, "操作失败"))
		return
	}
	SuccessWithMessage(c, "操作成功", gin.H{"updated": result.RowsAffected})
}

// UnreadCount 未读数量
// @Summary 未读提醒数
// @Tags 提醒
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "获取成功"
// @Router /api/v1/alerts/unread-count [get]
func (h *AlertHandler) UnreadCount(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var count int64
	if err := database.DB.WithContext(c.Request.Context()).Model(&models.Alert{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, gin.H{"count": count})
}
