package api

import (
	"errors"

	"budgetbite/analytics"
	"budgetbite/database"
	"budgetbite/middleware"
	"budgetbite/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// BudgetHandler 预算处理器
type BudgetHandler struct {
	agg analytics.Aggregator
}

// NewBudgetHandler 创建预算处理器
func NewBudgetHandler(agg analytics.Aggregator) *BudgetHandler {
	return &BudgetHandler{agg: agg}
}

// SetupBudgetRequest 设置当月预算，未填写的类别按默认比例分配
type SetupBudgetRequest struct {
	TotalAmount      float64  `json:"total_amount" binding:"required,gt=0" example:"6000"`
	Food             *float64 `json:"food_allocation" binding:"omitempty,gte=0" example:"3000"`
	Travel           *float64 `json:"travel_allocation" binding:"omitempty,gte=0" example:"1080"`
	Academic         *float64 `json:"academic_allocation" binding:"omitempty,gte=0" example:"720"`
	Entertainment    *float64 `json:"entertainment_allocation" binding:"omitempty,gte=0" example:"720"`
	EmergencyReserve *float64 `json:"emergency_reserve" binding:"omitempty,gte=0" example:"480"`
}

// Get 预算执行情况
// @Summary 获取预算执行情况
// @Description 各类别分配与实际消费对比、消费节奏、剩余天数与日限额
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=analytics.BudgetView} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budget [get]
func (h *BudgetHandler) Get(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	now := clock()

	var budget *models.Budget
	var row models.Budget
	err := database.DB.WithContext(ctx).
		Where("user_id = ? AND month = ? AND year = ?", user.ID, int(now.Month()), now.Year()).
		First(&row).Error
	switch {
	case err == nil:
		budget = &row
	case !errors.Is(err, gorm.ErrRecordNotFound):
		InternalError(c, SafeErrorMessage(err, "查询预算失败"))
		return
	}

	cats, err := h.agg.CategoryTotals(ctx, user.ID, now)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}
	pace, err := h.agg.Pace(ctx, user, now)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}

	Success(c, analytics.NewBudgetView(budget, user.MonthlyBudget, cats, pace, analytics.RemainingDays(now)))
}

// Setup 设置当月预算
// @Summary 设置当月预算
// @Description 同时更新用户月预算；Misc 为总额减去其余分配与应急储备
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SetupBudgetRequest true "预算信息"
// @Success 200 {object} Response{data=models.Budget} "设置成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/budget [post]
func (h *BudgetHandler) Setup(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req SetupBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	alloc, reserve, err := models.BuildAllocations(req.TotalAmount, models.AllocationInput{
		Food:             req.Food,
		Travel:           req.Travel,
		Academic:         req.Academic,
		Entertainment:    req.Entertainment,
		EmergencyReserve: req.EmergencyReserve,
	})
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	now := clock()
	budget := &models.Budget{
		UserID:           userID,
		Month:            int(now.Month()),
		Year:             now.Year(),
		TotalAmount:      req.TotalAmount,
		Allocations:      alloc,
		EmergencyReserve: reserve,
	}
	err = database.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Update("monthly_budget", req.TotalAmount).Error; err != nil {
			return err
		}
		return database.SaveMonthBudget(tx, budget)
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "保存预算失败"))
		return
	}

	h.agg.Forget(c.Request.Context(), userID)
	SuccessWithMessage(c, "设置成功", budget)
}

// CategoryData 本月分类消费
// @Summary 本月分类消费
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]analytics.CategoryTotal} "获取成功"
// @Router /api/v1/budget/categories [get]
func (h *BudgetHandler) CategoryData(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	cats, err := h.agg.CategoryTotals(c.Request.Context(), userID, clock())
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}
	Success(c, cats)
}
