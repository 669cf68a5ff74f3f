package api

import (
	"net/http"
	"testing"
	"time"

	"budgetbite/analytics"
	"budgetbite/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func budgetRouter(h *BudgetHandler) *gin.Engine {
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/budget", h.Get)
	router.POST("/budget", h.Setup)
	router.GET("/budget/categories", h.CategoryData)
	return router
}

func TestBudgetHandler_Get(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	freezeClock(t, time.Date(2026, 6, 20, 10, 0, 0, 0, time.Local))

	expectCurrentUser(mock, 1, 8000)
	mock.ExpectQuery("SELECT \\* FROM `budgets` WHERE user_id = \\? AND month = \\? AND year = \\?").
		WithArgs(1, 6, 2026).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "month", "year", "total_amount", "allocations"}).
			AddRow(1, 1, 6, 2026, 8000, `{"Food":4000,"Travel":1440,"Academic":960,"Entertainment":960,"Misc":640}`))

	agg := &stubAggregator{
		month: 4000,
		cats:  []analytics.CategoryTotal{{Category: "Food", Total: 3000}, {Category: "Travel", Total: 1000}},
	}
	w := doRequest(budgetRouter(NewBudgetHandler(agg)), "GET", "/budget", "")

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, 363.64, data["daily_limit"])
	assert.Equal(t, 11.0, data["remaining_days"])
	pace := data["pace"].(map[string]interface{})
	assert.Equal(t, "under", pace["status"])
	cats := data["categories"].([]interface{})
	food := cats[0].(map[string]interface{})
	assert.Equal(t, 4000.0, food["allocated"])
	assert.Equal(t, 75.0, food["used_pct"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_Get_NoBudgetRow(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	freezeClock(t, time.Date(2026, 6, 20, 10, 0, 0, 0, time.Local))

	expectCurrentUser(mock, 1, 5000)
	mock.ExpectQuery("SELECT \\* FROM `budgets`").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := doRequest(budgetRouter(NewBudgetHandler(&stubAggregator{})), "GET", "/budget", "")

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Nil(t, data["budget"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_Setup(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	freezeClock(t, time.Date(2026, 6, 20, 10, 0, 0, 0, time.Local))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `users` SET `monthly_budget`=\\?").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `budgets` .* ON DUPLICATE KEY UPDATE").WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	agg := &stubAggregator{}
	w := doRequest(budgetRouter(NewBudgetHandler(agg)), "POST", "/budget", `{"total_amount":6000,"food_allocation":3000,"emergency_reserve":0}`)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	alloc := data["allocations"].(map[string]interface{})
	assert.Equal(t, 3000.0, alloc[models.CategoryFood])
	assert.Equal(t, 480.0, alloc[models.CategoryMisc])
	assert.Equal(t, []uint{1}, agg.forgotten)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_Setup_Invalid(t *testing.T) {
	router := budgetRouter(NewBudgetHandler(&stubAggregator{}))

	w := doRequest(router, "POST", "/budget", `{"total_amount":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, "POST", "/budget", `{"total_amount":1000,"food_allocation":2000}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBudgetHandler_CategoryData(t *testing.T) {
	agg := &stubAggregator{cats: []analytics.CategoryTotal{{Category: "Food", Total: 900}}}
	w := doRequest(budgetRouter(NewBudgetHandler(agg)), "GET", "/budget/categories", "")

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w)["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "Food", data[0].(map[string]interface{})["category"])
}
