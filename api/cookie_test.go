package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"budgetbite/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeLikeValue(t *testing.T) {
	assert.Equal(t, `50\%off`, escapeLikeValue("50%off"))
	assert.Equal(t, `a\_b`, escapeLikeValue("a_b"))
	assert.Equal(t, `c:\\tmp`, escapeLikeValue(`c:\tmp`))
	assert.Equal(t, "plain", escapeLikeValue("plain"))
}

func TestGetCookieOptions(t *testing.T) {
	defer func() { config.GlobalConfig = nil }()

	config.GlobalConfig = nil
	secure, sameSite := getCookieOptions()
	assert.False(t, secure)
	assert.Equal(t, http.SameSiteLaxMode, sameSite)

	config.GlobalConfig = &config.Config{Server: config.ServerConfig{Mode: "release"}}
	secure, _ = getCookieOptions()
	assert.True(t, secure)
}

func TestSetCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)

	setCookie(c, "oauth_state", "abc", 600)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "oauth_state", cookies[0].Name)
	assert.Equal(t, "abc", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 600, cookies[0].MaxAge)
}
