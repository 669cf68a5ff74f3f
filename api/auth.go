package api

import (
	"errors"
	"strings"

	"budgetbite/analytics"
	"budgetbite/config"
	"budgetbite/database"
	"budgetbite/middleware"
	"budgetbite/models"
	"budgetbite/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 600
)

// AuthHandler 认证处理器
type AuthHandler struct {
	cfg      *config.Config
	identity service.IdentityProvider
	agg      analytics.Aggregator
}

// NewAuthHandler 创建认证处理器，identity 为空表示未配置 Google 登录
func NewAuthHandler(cfg *config.Config, identity service.IdentityProvider, agg analytics.Aggregator) *AuthHandler {
	return &AuthHandler{cfg: cfg, identity: identity, agg: agg}
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token           string      `json:"token"`
	UserInfo        models.User `json:"user_info"`
	NeedsOnboarding bool        `json:"needs_onboarding"`
}

// OnboardingRequest 新用户引导
type OnboardingRequest struct {
	MonthlyBudget  float64 `json:"monthly_budget" binding:"required,gt=0" example:"6000"`
	LivingType     string  `json:"living_type" example:"Hostel"`
	FoodPreference string  `json:"food_preference" example:"Vegetarian"`
	Phone          string  `json:"phone" binding:"omitempty,max=15" example:"9876543210"`
}

// UpdateProfileRequest 修改个人设置
type UpdateProfileRequest struct {
	Name           string  `json:"name" binding:"omitempty,max=100" example:"Riya"`
	MonthlyBudget  float64 `json:"monthly_budget" binding:"omitempty,gt=0" example:"6000"`
	LivingType     string  `json:"living_type" example:"PG"`
	FoodPreference string  `json:"food_preference" example:"Non-Vegetarian"`
	Phone          string  `json:"phone" binding:"omitempty,max=15" example:"9876543210"`
}

func (h *AuthHandler) issueToken(c *gin.Context, user *models.User) {
	token, err := middleware.GenerateToken(user.ID, user.Email, h.cfg.JWT.ExpireTime)
	if err != nil {
		InternalError(c, "生成 token 失败")
		return
	}
	Success(c, LoginResponse{
		Token:           token,
		UserInfo:        *user,
		NeedsOnboarding: !user.OnboardingComplete,
	})
}

// GoogleLogin 跳转到 Google 授权页
// @Summary Google 登录
// @Description 生成 state 写入 Cookie 后重定向到 Google 授权页
// @Tags 认证
// @Success 302 "重定向到 Google"
// @Failure 503 {object} Response "Google 登录未配置"
// @Router /api/v1/auth/google/login [get]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if h.identity == nil {
		ServiceUnavailable(c, "Google 登录未配置")
		return
	}
	state := uuid.NewString()
	setCookie(c, oauthStateCookie, state, oauthStateMaxAge)
	c.Redirect(302, h.identity.AuthCodeURL(state))
}

// GoogleCallback Google 授权回调
// @Summary Google 授权回调
// @Description 校验 state，用授权码换取用户身份，按 google_id / 邮箱查找或创建用户并签发 token
// @Tags 认证
// @Produce json
// @Param code query string true "授权码"
// @Param state query string true "state"
// @Success 200 {object} Response{data=LoginResponse} "登录成功"
// @Failure 400 {object} Response "state 校验失败"
// @Failure 401 {object} Response "Google 登录失败"
// @Router /api/v1/auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.identity == nil {
		ServiceUnavailable(c, "Google 登录未配置")
		return
	}

	expected, _ := c.Cookie(oauthStateCookie)
	setCookie(c, oauthStateCookie, "", -1)
	if expected == "" || c.Query("state") != expected {
		BadRequest(c, "登录状态校验失败，请重新登录")
		return
	}
	if c.Query("error") != "" {
		Unauthorized(c, "Google 授权被拒绝")
		return
	}
	code := c.Query("code")
	if code == "" {
		BadRequest(c, "未获取到授权码")
		return
	}

	identity, err := h.identity.Resolve(c.Request.Context(), code)
	if err != nil {
		logrus.WithError(err).Warn("Google 登录失败")
		Unauthorized(c, SafeErrorMessage(err, "Google 登录失败"))
		return
	}

	user, created, err := database.UpsertGoogleUser(database.DB.WithContext(c.Request.Context()),
		identity.Subject, identity.Email, identity.Name, identity.Picture)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "登录失败"))
		return
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "created": created}).Info("Google 登录成功")

	h.issueToken(c, user)
}

// DemoLogin 演示账号登录
// @Summary 演示账号登录
// @Description 演示模式开启时为预置演示账号签发 token
// @Tags 认证
// @Produce json
// @Success 200 {object} Response{data=LoginResponse} "登录成功"
// @Failure 404 {object} Response "演示账号不可用"
// @Router /api/v1/auth/demo [post]
func (h *AuthHandler) DemoLogin(c *gin.Context) {
	if !h.cfg.Demo.Enabled {
		NotFound(c, "演示模式未开启")
		return
	}

	var user models.User
	if err := database.DB.WithContext(c.Request.Context()).
		Where("email = ?", h.cfg.Demo.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "演示账号不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "登录失败"))
		return
	}

	h.issueToken(c, &user)
}

// GetProfile 获取当前用户信息
// @Summary 获取当前用户信息
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.User} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}
	Success(c, user)
}

func validateLiving(living, food string) string {
	if living != "" && !models.IsValidLivingType(living) {
		return "无效的居住类型，可选: " + strings.Join(models.GetLivingTypes(), "/")
	}
	if food != "" && !models.IsValidFoodPreference(food) {
		return "无效的饮食偏好，可选: " + strings.Join(models.GetFoodPreferences(), "/")
	}
	return ""
}

// UpdateProfile 修改个人设置
// @Summary 修改个人设置
// @Tags 认证
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "个人设置"
// @Success 200 {object} Response{data=models.User} "修改成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/auth/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	if msg := validateLiving(req.LivingType, req.FoodPreference); msg != "" {
		BadRequest(c, msg)
		return
	}

	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(req.Name); name != "" {
		updates["name"] = name
	}
	if req.MonthlyBudget > 0 {
		updates["monthly_budget"] = req.MonthlyBudget
	}
	if req.LivingType != "" {
		updates["living_type"] = req.LivingType
	}
	if req.FoodPreference != "" {
		updates["food_preference"] = req.FoodPreference
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if len(updates) == 0 {
		Success(c, user)
		return
	}

	if err := database.DB.WithContext(c.Request.Context()).Model(user).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "修改失败"))
		return
	}
	h.agg.Forget(c.Request.Context(), user.ID)
	SuccessWithMessage(c, "修改成功", user)
}

// Onboarding 完成新用户引导
// @Summary 完成新用户引导
// @Description 设置月预算、居住类型与饮食偏好，并按默认比例生成当月预算
// @Tags 认证
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body OnboardingRequest true "引导信息"
// @Success 200 {object} Response{data=models.User} "设置成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/auth/onboarding [post]
func (h *AuthHandler) Onboarding(c *gin.Context) {
	var req OnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	if req.LivingType == "" {
		req.LivingType = models.LivingHostel
	}
	if req.FoodPreference == "" {
		req.FoodPreference = models.FoodVegetarian
	}
	if msg := validateLiving(req.LivingType, req.FoodPreference); msg != "" {
		BadRequest(c, msg)
		return
	}

	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}

	now := clock()
	err := database.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Updates(map[string]interface{}{
			"monthly_budget":      req.MonthlyBudget,
			"living_type":         req.LivingType,
			"food_preference":     req.FoodPreference,
			"phone":               req.Phone,
			"onboarding_complete": true,
		}).Error; err != nil {
			return err
		}
		return database.SaveMonthBudget(tx, &models.Budget{
			UserID:      user.ID,
			Month:       int(now.Month()),
			Year:        now.Year(),
			TotalAmount: req.MonthlyBudget,
			Allocations: models.DefaultAllocations(req.MonthlyBudget),
		})
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "保存失败"))
		return
	}

	h.agg.Forget(c.Request.Context(), user.ID)
	SuccessWithMessage(c, "设置成功", user)
}

// DeleteAccount 注销账号
// @Summary 注销账号
// @Description 在一个事务内删除用户及其全部数据
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "用户不存在"
// @Router /api/v1/auth/account [delete]
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	if err := database.DeleteUserCascade(database.DB.WithContext(c.Request.Context()), userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "用户不存在")
			return
		}
		logrus.WithError(err).WithField("user_id", userID).Error("注销账号失败，已回滚")
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}
	h.agg.Forget(c.Request.Context(), userID)
	SuccessWithMessage(c, "账号已删除", nil)
}
