package api

import (
	"time"

	"budgetbite/analytics"
	"budgetbite/database"
	"budgetbite/mealplan"
	"budgetbite/metrics"
	"budgetbite/middleware"
	"budgetbite/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const defaultNutritionScore = 7

// MealHandler 餐食计划处理器
type MealHandler struct {
	agg analytics.Aggregator
	svc *mealplan.Service
}

// NewMealHandler 创建餐食计划处理器
func NewMealHandler(agg analytics.Aggregator) *MealHandler {
	svc := mealplan.NewService(database.DB).WithClock(func() time.Time { return clock() })
	return &MealHandler{agg: agg, svc: svc}
}

// AddMealRequest 手动添加餐食
type AddMealRequest struct {
	Date           string  `json:"date" example:"2026-06-10"`
	MealType       string  `json:"meal_type" binding:"required" example:"Lunch"`
	Name           string  `json:"meal_name" binding:"required,max=100" example:"Rajma Chawal"`
	Cost           float64 `json:"cost" binding:"required,gt=0" example:"60"`
	Calories       int     `json:"calories" binding:"gte=0" example:"480"`
	Protein        float64 `json:"protein" binding:"gte=0" example:"16"`
	NutritionScore float64 `json:"nutrition_score" binding:"gte=0,lte=10" example:"8"`
	Source         string  `json:"source" example:"Mess"`
}

// TodayResponse 今日餐食
type TodayResponse struct {
	Date           string              `json:"date"`
	Meals          []models.MealPlan   `json:"meals"`
	Totals         mealplan.DayTotals  `json:"totals"`
	DailyLimit     float64             `json:"daily_limit"`
	FoodBudget     float64             `json:"food_budget"`
	FoodBudgetLeft float64             `json:"food_budget_left"`
	Suggestion     mealplan.Suggestion `json:"suggestion"`
	MessAverage    float64             `json:"mess_average"`
	CanteenAverage float64             `json:"canteen_average"`
}

// CompleteMealResponse 完成餐食的结果
type CompleteMealResponse struct {
	Meal        *models.MealPlan    `json:"meal"`
	Transaction *models.Transaction `json:"transaction"`
}

// Today 今日餐食与餐饮预算建议
// @Summary 今日餐食
// @Description 今日计划、花费/热量/蛋白质合计、剩余餐饮预算与建议、食堂与小卖部均价对比
// @Tags 餐食
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=TodayResponse} "获取成功"
// @Router /api/v1/meals/today [get]
func (h *MealHandler) Today(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	now := clock()

	limit, err := h.agg.DailyLimit(ctx, user, now)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}
	meals, err := h.svc.ForDay(ctx, user.ID, now)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询餐食失败"))
		return
	}

	left := mealplan.FoodBudgetLeft(limit, meals)
	Success(c, TodayResponse{
		Date:           now.Format(dateLayout),
		Meals:          meals,
		Totals:         mealplan.Totals(meals),
		DailyLimit:     limit,
		FoodBudget:     analytics.Round2(mealplan.FoodBudget(limit)),
		FoodBudgetLeft: analytics.Round2(left),
		Suggestion:     mealplan.Suggest(left),
		MessAverage:    analytics.Round2(mealplan.SourceAverage(user.FoodPreference, "Mess")),
		CanteenAverage: analytics.Round2(mealplan.SourceAverage(user.FoodPreference, "Canteen")),
	})
}

// Add 手动添加餐食
// @Summary 添加餐食
// @Tags 餐食
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AddMealRequest true "餐食信息"
// @Success 200 {object} Response{data=models.MealPlan} "添加成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/meals [post]
func (h *MealHandler) Add(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req AddMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	day, err := parseDate(req.Date, analytics.StartOfDay(clock()))
	if err != nil {
		BadRequest(c, "日期格式错误，应为: 2006-01-02")
		return
	}
	if req.NutritionScore == 0 {
		req.NutritionScore = defaultNutritionScore
	}

	meal, err := h.svc.Add(c.Request.Context(), userID, mealplan.AddInput{
		Date:           day,
		MealType:       req.MealType,
		Name:           req.Name,
		Cost:           req.Cost,
		Calories:       req.Calories,
		Protein:        req.Protein,
		NutritionScore: req.NutritionScore,
		Source:         req.Source,
	})
	if err != nil {
		respondError(c, err, "添加餐食失败")
		return
	}
	SuccessWithMessage(c, "添加成功", meal)
}

// AutoPlan 自动排一周餐食
// @Summary 自动排餐
// @Description 从今天起 7 天，为还没有计划的日期按日限额挑选四餐；已有计划的日期不变
// @Tags 餐食
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.MealPlan} "新生成的计划"
// @Router /api/v1/meals/auto-plan [post]
func (h *MealHandler) AutoPlan(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	now := clock()

	limit, err := h.agg.DailyLimit(ctx, user, now)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}
	plans, err := h.svc.AutoPlan(ctx, user, limit, now)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "生成计划失败"))
		return
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "meals": len(plans)}).Info("自动排餐完成")
	SuccessWithMessage(c, "生成成功", plans)
}

// Complete 完成餐食并记账
// @Summary 完成餐食
// @Description 标记餐食已完成并记一笔餐饮消费，两步在同一事务内；重复完成返回 400
// @Tags 餐食
// @Produce json
// @Security BearerAuth
// @Param id path int true "餐食ID"
// @Success 200 {object} Response{data=CompleteMealResponse} "完成成功"
// @Failure 400 {object} Response "已完成"
// @Failure 404 {object} Response "餐食不存在"
// @Router /api/v1/meals/{id}/complete [post]
func (h *MealHandler) Complete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	meal, txn, err := h.svc.Complete(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err, "完成餐食失败")
		return
	}

	h.agg.Forget(c.Request.Context(), userID)
	metrics.MealsCompleted.Inc()
	metrics.ExpensesLogged.WithLabelValues(models.CategoryFood).Inc()
	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"meal_id": meal.ID,
		"amount":  txn.Amount,
	}).Info("餐食完成并记账")

	SuccessWithMessage(c, "完成成功", CompleteMealResponse{Meal: meal, Transaction: txn})
}

// Suggestions 菜品库与每日餐饮预算
// @Summary 菜品建议
// @Tags 餐食
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "获取成功"
// @Router /api/v1/meals/suggestions [get]
func (h *MealHandler) Suggestions(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}
	limit, err := h.agg.DailyLimit(c.Request.Context(), user, clock())
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}
	Success(c, gin.H{
		"suggestions":       mealplan.Catalog(user.FoodPreference),
		"daily_food_budget": analytics.Round2(mealplan.FoodBudget(limit)),
		"preference":        user.FoodPreference,
	})
}

// Week 从今天起 7 天的计划
// @Summary 一周餐食
// @Tags 餐食
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]mealplan.DayPlan} "获取成功"
// @Router /api/v1/meals/week [get]
func (h *MealHandler) Week(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	days, err := h.svc.Week(c.Request.Context(), userID, clock())
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询餐食失败"))
		return
	}
	Success(c, days)
}

// Delete 删除餐食
// @Summary 删除餐食
// @Tags 餐食
// @Produce json
// @Security BearerAuth
// @Param id path int true "餐食ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "餐食不存在"
// @Router /api/v1/meals/{id} [delete]
func (h *MealHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err, "删除失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}
