package api

import (
	"net/http"
	"strings"

	"budgetbite/config"

	"github.com/gin-gonic/gin"
)

// escapeLikeValue 转义 LIKE 查询中的通配符 % 和 _
func escapeLikeValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// getCookieOptions 根据运行模式返回 Cookie 的安全选项
// release 模式下仅 HTTPS 传输
func getCookieOptions() (secure bool, sameSite http.SameSite) {
	cfg := config.GlobalConfig
	if cfg != nil && cfg.Server.Mode == "release" {
		secure = true
	}
	// OAuth 回调是跨站顶层跳转，Lax 下 Cookie 仍会带上
	sameSite = http.SameSiteLaxMode
	return
}

func setCookie(c *gin.Context, name, value string, maxAge int) {
	secure, sameSite := getCookieOptions()
	c.SetCookieData(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   secure,
		HttpOnly: true,
		SameSite: sameSite,
	})
}
