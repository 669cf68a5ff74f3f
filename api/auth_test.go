package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"budgetbite/analytics"
	"budgetbite/config"
	"budgetbite/database"
	"budgetbite/middleware"
	"budgetbite/models"
	"budgetbite/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	oldDB := database.DB
	database.DB = gormDB
	return mock, func() {
		database.DB = oldDB
		sqlDB.Close()
	}
}

var userColumns = []string{"id", "name", "email", "monthly_budget", "living_type", "food_preference", "onboarding_complete", "created_at", "updated_at"}

func expectCurrentUser(mock sqlmock.Sqlmock, id uint, monthlyBudget float64) {
	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE `users`.`id` = \\?").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(id, "Riya", "riya@example.com", monthlyBudget, models.LivingHostel, models.FoodVegetarian, true, now, now))
}

func freezeClock(t *testing.T, at time.Time) {
	old := clock
	clock = func() time.Time { return at }
	t.Cleanup(func() { clock = old })
}

// stubAggregator 固定返回值的统计器
type stubAggregator struct {
	today     float64
	month     float64
	limit     float64
	streak    int
	cats      []analytics.CategoryTotal
	overview  *analytics.Overview
	report    *analytics.Report
	err       error
	forgotten []uint
}

func (s *stubAggregator) TodaySpent(ctx context.Context, userID uint, day time.Time) (float64, error) {
	return s.today, s.err
}

func (s *stubAggregator) MonthSpent(ctx context.Context, userID uint, now time.Time) (float64, error) {
	return s.month, s.err
}

func (s *stubAggregator) CategoryTotals(ctx context.Context, userID uint, now time.Time) ([]analytics.CategoryTotal, error) {
	return s.cats, s.err
}

func (s *stubAggregator) DailyLimit(ctx context.Context, user *models.User, now time.Time) (float64, error) {
	return s.limit, s.err
}

func (s *stubAggregator) Streak(ctx context.Context, user *models.User, now time.Time) (int, error) {
	return s.streak, s.err
}

func (s *stubAggregator) Pace(ctx context.Context, user *models.User, now time.Time) (analytics.Pace, error) {
	return analytics.ComputePace(user.MonthlyBudget, s.month, now), s.err
}

func (s *stubAggregator) Overview(ctx context.Context, user *models.User, now time.Time) (*analytics.Overview, error) {
	return s.overview, s.err
}

func (s *stubAggregator) Report(ctx context.Context, user *models.User, now time.Time) (*analytics.Report, error) {
	return s.report, s.err
}

func (s *stubAggregator) Forget(ctx context.Context, userID uint) {
	s.forgotten = append(s.forgotten, userID)
}

type stubIdentity struct {
	identity *service.Identity
	err      error
	codes    []string
}

func (s *stubIdentity) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (s *stubIdentity) Resolve(ctx context.Context, code string) (*service.Identity, error) {
	s.codes = append(s.codes, code)
	return s.identity, s.err
}

func testConfig() *config.Config {
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		JWT:    config.JWTConfig{Secret: "test-jwt-secret-key", ExpireTime: time.Hour},
		Demo:   config.DemoConfig{Enabled: true, Email: "demo@budgetbite.app"},
	}
	middleware.InitJWT(cfg)
	return cfg
}

func doRequest(router *gin.Engine, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAuthHandler_GoogleLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(testConfig(), &stubIdentity{}, &stubAggregator{})
	router := gin.New()
	router.GET("/auth/google/login", h.GoogleLogin)

	w := doRequest(router, "GET", "/auth/google/login", "")

	assert.Equal(t, http.StatusFound, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, oauthStateCookie, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.Contains(t, w.Header().Get("Location"), "state="+cookies[0].Value)
}

func TestAuthHandler_GoogleLogin_NotConfigured(t *testing.T) {
	h := NewAuthHandler(testConfig(), nil, &stubAggregator{})
	router := gin.New()
	router.GET("/auth/google/login", h.GoogleLogin)

	w := doRequest(router, "GET", "/auth/google/login", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAuthHandler_GoogleCallback_StateMismatch(t *testing.T) {
	identity := &stubIdentity{}
	h := NewAuthHandler(testConfig(), identity, &stubAggregator{})
	router := gin.New()
	router.GET("/auth/google/callback", h.GoogleCallback)

	w := doRequest(router, "GET", "/auth/google/callback?state=forged&code=c1",
		"", &http.Cookie{Name: oauthStateCookie, Value: "expected"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, identity.codes)

	w = doRequest(router, "GET", "/auth/google/callback?state=&code=c1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_GoogleCallback_NewUser(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE google_id = \\?").
		WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE email = \\?").
		WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	identity := &stubIdentity{identity: &service.Identity{Subject: "g-7", Name: "Riya", Email: "riya@example.com"}}
	h := NewAuthHandler(testConfig(), identity, &stubAggregator{})
	router := gin.New()
	router.GET("/auth/google/callback", h.GoogleCallback)

	w := doRequest(router, "GET", "/auth/google/callback?state=s1&code=c1",
		"", &http.Cookie{Name: oauthStateCookie, Value: "s1"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"c1"}, identity.codes)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])
	assert.Equal(t, true, data["needs_onboarding"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_GoogleCallback_ResolveFails(t *testing.T) {
	identity := &stubIdentity{err: errors.New("invalid_grant")}
	h := NewAuthHandler(testConfig(), identity, &stubAggregator{})
	router := gin.New()
	router.GET("/auth/google/callback", h.GoogleCallback)

	w := doRequest(router, "GET", "/auth/google/callback?state=s1&code=c1",
		"", &http.Cookie{Name: oauthStateCookie, Value: "s1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_DemoLogin(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE email = \\?").
		WithArgs("demo@budgetbite.app").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(3, "Demo Student", "demo@budgetbite.app", 5000, "Hostel", "Vegetarian", true, now, now))

	h := NewAuthHandler(testConfig(), nil, &stubAggregator{})
	router := gin.New()
	router.POST("/auth/demo", h.DemoLogin)

	w := doRequest(router, "POST", "/auth/demo", "")

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	token := data["token"].(string)
	claims, err := middleware.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(3), claims.UserID)
	assert.Equal(t, false, data["needs_onboarding"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_DemoLogin_Unavailable(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE email = \\?").
		WillReturnRows(sqlmock.NewRows(userColumns))

	cfg := testConfig()
	router := gin.New()
	router.POST("/auth/demo", NewAuthHandler(cfg, nil, &stubAggregator{}).DemoLogin)
	w := doRequest(router, "POST", "/auth/demo", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	cfg.Demo.Enabled = false
	w = doRequest(router, "POST", "/auth/demo", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_GetProfile_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `users`").WillReturnRows(sqlmock.NewRows(userColumns))

	router := gin.New()
	router.Use(setUserIDMiddleware(42))
	router.GET("/auth/profile", NewAuthHandler(testConfig(), nil, &stubAggregator{}).GetProfile)

	w := doRequest(router, "GET", "/auth/profile", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_Onboarding(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	freezeClock(t, time.Date(2026, 6, 10, 9, 0, 0, 0, time.Local))

	expectCurrentUser(mock, 1, 5000)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `users` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `budgets` .* ON DUPLICATE KEY UPDATE").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	agg := &stubAggregator{}
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/auth/onboarding", NewAuthHandler(testConfig(), nil, agg).Onboarding)

	w := doRequest(router, "POST", "/auth/onboarding", `{"monthly_budget":6000,"living_type":"PG","food_preference":"Non-Vegetarian"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, 6000.0, data["monthly_budget"])
	assert.Equal(t, "PG", data["living_type"])
	assert.Equal(t, true, data["onboarding_complete"])
	assert.Equal(t, []uint{1}, agg.forgotten)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_Onboarding_Invalid(t *testing.T) {
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/auth/onboarding", NewAuthHandler(testConfig(), nil, &stubAggregator{}).Onboarding)

	w := doRequest(router, "POST", "/auth/onboarding", `{"monthly_budget":6000,"living_type":"Castle"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, "POST", "/auth/onboarding", `{"monthly_budget":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_DeleteAccount(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	for _, table := range []string{"transactions", "budgets", "meal_plans", "savings_goals", "badges", "alerts", "bill_splits"} {
		mock.ExpectExec("DELETE FROM `" + table + "`").WillReturnResult(sqlmock.NewResult(0, 2))
	}
	mock.ExpectExec("DELETE FROM `users`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	agg := &stubAggregator{}
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.DELETE("/auth/account", NewAuthHandler(testConfig(), nil, agg).DeleteAccount)

	w := doRequest(router, "DELETE", "/auth/account", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uint{1}, agg.forgotten)
	require.NoError(t, mock.ExpectationsWereMet())
}
