package api

import (
	"fmt"
	"strings"
	"time"

	"budgetbite/analytics"
	"budgetbite/database"
	"budgetbite/metrics"
	"budgetbite/middleware"
	"budgetbite/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AlertNotifier 提醒的站外通知，如邮件
type AlertNotifier interface {
	NotifyAlert(user *models.User, alert *models.Alert)
}

// ExpenseHandler 消费记录处理器
type ExpenseHandler struct {
	agg      analytics.Aggregator
	notifier AlertNotifier
}

// NewExpenseHandler 创建消费记录处理器，notifier 可为空
func NewExpenseHandler(agg analytics.Aggregator, notifier AlertNotifier) *ExpenseHandler {
	return &ExpenseHandler{agg: agg, notifier: notifier}
}

// CreateExpenseRequest 记一笔消费
type CreateExpenseRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0" example:"120"`
	Category    string  `json:"category" example:"Food"`
	Subcategory string  `json:"subcategory" binding:"max=50" example:"Canteen"`
	Description string  `json:"description" binding:"max=200" example:"Masala dosa"`
	Date        string  `json:"date" example:"2026-06-10"`
	MealType    string  `json:"meal_type" example:"Breakfast"`
}

// QuickAddRequest 快速记账
type QuickAddRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0" example:"40"`
	Category    string  `json:"category" example:"Travel"`
	Description string  `json:"description" binding:"max=200" example:"Auto to campus"`
}

// ExpenseResult 记账结果，超出日限额时带提醒
type ExpenseResult struct {
	Transaction models.Transaction `json:"transaction"`
	Alert       *models.Alert      `json:"alert,omitempty"`
	TodaySpent  float64            `json:"today_spent"`
	DailyLimit  float64            `json:"daily_limit"`
}

// ExpenseListRequest 消费记录列表请求
type ExpenseListRequest struct {
	Page     int    `form:"page" example:"1"`
	PageSize int    `form:"page_size" example:"15"`
	Category string `form:"category" example:"Food"`
	Date     string `form:"date" example:"2026-06-10"`
	Keyword  string `form:"q" example:"dosa"`
}

// ExpenseListResponse 分页列表及本月分类合计
type ExpenseListResponse struct {
	PageResponse
	CategoryTotals []analytics.CategoryTotal `json:"category_totals"`
}

// record 写入流水；今天的消费超过日限额时在同一事务内写入提醒
func (h *ExpenseHandler) record(c *gin.Context, user *models.User, txn *models.Transaction) (*ExpenseResult, error) {
	ctx := c.Request.Context()
	now := clock()

	limit, err := h.agg.DailyLimit(ctx, user, now)
	if err != nil {
		return nil, err
	}
	todaySpent, err := h.agg.TodaySpent(ctx, user.ID, now)
	if err != nil {
		return nil, err
	}

	var alert *models.Alert
	if analytics.StartOfDay(txn.SpentAt).Equal(analytics.StartOfDay(now)) {
		todaySpent += txn.Amount
		if limit > 0 && todaySpent > limit {
			alert = &models.Alert{
				UserID:    user.ID,
				AlertType: models.AlertOverspend,
				Title:     "⚠️ Daily Limit Exceeded!",
				Message:   fmt.Sprintf("You've spent ₹%.0f today, exceeding your ₹%.0f limit.", todaySpent, limit),
				Icon:      "⚠️",
			}
		}
	}

	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		if alert != nil {
			return tx.Create(alert).Error
		}
		return nil
	})
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("记账失败，已回滚")
		return nil, err
	}

	h.agg.Forget(ctx, user.ID)
	metrics.ExpensesLogged.WithLabelValues(txn.Category).Inc()
	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"amount":   txn.Amount,
		"category": txn.Category,
	}).Info("记账成功")

	if alert != nil {
		metrics.AlertsRaised.WithLabelValues(alert.AlertType).Inc()
		if h.notifier != nil {
			h.notifier.NotifyAlert(user, alert)
		}
	}

	return &ExpenseResult{
		Transaction: *txn,
		Alert:       alert,
		TodaySpent:  analytics.Round2(todaySpent),
		DailyLimit:  limit,
	}, nil
}

// Create 记一笔消费
// @Summary 记一笔消费
// @Description 记录一笔消费；当天累计超过日限额时生成超支提醒
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateExpenseRequest true "消费信息"
// @Success 200 {object} Response{data=ExpenseResult} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	req.Category = strings.TrimSpace(req.Category)
	if req.Category == "" {
		req.Category = models.CategoryMisc
	}
	if !models.IsValidCategory(req.Category) {
		BadRequest(c, "无效的消费类别，可选: "+strings.Join(models.GetCategories(), "/"))
		return
	}

	isFood := req.Category == models.CategoryFood
	mealType := ""
	if isFood && req.MealType != "" {
		if !models.IsValidMealType(req.MealType) {
			BadRequest(c, "无效的餐次，可选: "+strings.Join(models.GetMealTypes(), "/"))
			return
		}
		mealType = req.MealType
	}

	spentAt, err := parseDate(req.Date, clock())
	if err != nil {
		BadRequest(c, "日期格式错误，应为: 2006-01-02")
		return
	}

	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}

	txn := &models.Transaction{
		UserID:      user.ID,
		Amount:      req.Amount,
		Category:    req.Category,
		Subcategory: strings.TrimSpace(req.Subcategory),
		Description: strings.TrimSpace(req.Description),
		SpentAt:     spentAt,
		IsFood:      isFood,
		MealType:    mealType,
	}
	result, err := h.record(c, user, txn)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "记账失败"))
		return
	}
	SuccessWithMessage(c, "创建成功", result)
}

// QuickAdd 快速记账
// @Summary 快速记账
// @Description 只需金额与类别，时间取当前时间
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body QuickAddRequest true "消费信息"
// @Success 200 {object} Response{data=ExpenseResult} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/expenses/quick [post]
func (h *ExpenseHandler) QuickAdd(c *gin.Context) {
	var req QuickAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "金额必须大于 0")
		return
	}
	if req.Category == "" {
		req.Category = models.CategoryMisc
	}
	if !models.IsValidCategory(req.Category) {
		BadRequest(c, "无效的消费类别")
		return
	}

	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}

	txn := &models.Transaction{
		UserID:      user.ID,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: strings.TrimSpace(req.Description),
		SpentAt:     clock(),
		IsFood:      req.Category == models.CategoryFood,
	}
	result, err := h.record(c, user, txn)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "记账失败"))
		return
	}
	Success(c, result)
}

// List 获取消费记录列表
// @Summary 获取消费记录列表
// @Description 分页查询，支持按类别、日期与描述关键字筛选，附带本月分类合计
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(15)
// @Param category query string false "类别筛选"
// @Param date query string false "日期 (2026-06-10)"
// @Param q query string false "描述关键字"
// @Success 200 {object} Response{data=ExpenseListResponse} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req ExpenseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 15
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	ctx := c.Request.Context()
	query := database.DB.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID)
	if req.Category != "" && req.Category != "all" {
		query = query.Where("category = ?", req.Category)
	}
	if req.Date != "" {
		day, err := time.ParseInLocation(dateLayout, req.Date, time.Local)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2006-01-02")
			return
		}
		query = query.Where("spent_at >= ? AND spent_at < ?", day, day.AddDate(0, 0, 1))
	}
	if kw := strings.TrimSpace(req.Keyword); kw != "" {
		query = query.Where("description LIKE ?", "%"+escapeLikeValue(kw)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var txns []models.Transaction
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("spent_at DESC, id DESC").Offset(offset).Limit(req.PageSize).Find(&txns).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	totals, err := h.agg.CategoryTotals(ctx, userID, clock())
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}

	Success(c, ExpenseListResponse{
		PageResponse: PageResponse{
			Total:    total,
			Page:     req.Page,
			PageSize: req.PageSize,
			List:     txns,
		},
		CategoryTotals: totals,
	})
}

// Delete 删除消费记录
// @Summary 删除消费记录
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "消费记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	result := database.DB.WithContext(c.Request.Context()).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Transaction{})
	if result.Error != nil {
		InternalError(c, SafeErrorMessage(result.Error, "删除失败"))
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "记录不存在")
		return
	}

	h.agg.Forget(c.Request.Context(), userID)
	SuccessWithMessage(c, "删除成功", nil)
}

// Categories 获取类别、餐饮子类别与餐次
// @Summary 获取消费类别
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "获取成功"
// @Router /api/v1/expenses/categories [get]
func (h *ExpenseHandler) Categories(c *gin.Context) {
	Success(c, gin.H{
		"categories":         models.GetCategories(),
		"food_subcategories": models.GetFoodSubcategories(),
		"meal_types":         models.GetMealTypes(),
	})
}
