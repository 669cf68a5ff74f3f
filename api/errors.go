package api

import (
	"errors"

	"budgetbite/billsplit"
	"budgetbite/config"
	"budgetbite/gamification"
	"budgetbite/mealplan"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SafeErrorMessage 生产环境下不向客户端暴露内部错误详情
func SafeErrorMessage(err error, fallback string) string {
	return config.SafeErrorMessage(err, fallback)
}

var notFoundErrors = []error{
	mealplan.ErrMealNotFound,
	gamification.ErrGoalNotFound,
	billsplit.ErrSplitNotFound,
}

var invalidInputErrors = []error{
	mealplan.ErrMealCompleted,
	mealplan.ErrInvalidMeal,
	gamification.ErrUnknownBadge,
	gamification.ErrInvalidGoal,
	gamification.ErrInvalidAmount,
	billsplit.ErrInvalidSplit,
	billsplit.ErrInvalidTotal,
	billsplit.ErrSharesExceedTotal,
	billsplit.ErrParticipantIndex,
}

// respondError 按领域错误映射状态码，其余按 500 处理
func respondError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, "记录不存在")
		return
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			NotFound(c, target.Error())
			return
		}
	}
	for _, target := range invalidInputErrors {
		if errors.Is(err, target) {
			BadRequest(c, target.Error())
			return
		}
	}
	InternalError(c, SafeErrorMessage(err, fallback))
}
