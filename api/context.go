package api

import (
	"errors"
	"strconv"
	"time"

	"budgetbite/database"
	"budgetbite/middleware"
	"budgetbite/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// clock 当前时间，测试中可替换
var clock = time.Now

// loadCurrentUser 读取当前登录用户，失败时已写好响应
func loadCurrentUser(c *gin.Context) (*models.User, bool) {
	userID := middleware.GetCurrentUserID(c)
	var user models.User
	if err := database.DB.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "用户不存在")
		} else {
			InternalError(c, SafeErrorMessage(err, "查询用户失败"))
		}
		return nil, false
	}
	return &user, true
}

// paramID 解析路径中的 ID
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		BadRequest(c, "无效的ID")
		return 0, false
	}
	return uint(id), true
}

// parseDate 解析 YYYY-MM-DD，空串返回 fallback
func parseDate(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	return time.ParseInLocation(dateLayout, s, time.Local)
}
