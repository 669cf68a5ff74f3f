package api

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alertColumns = []string{"id", "user_id", "alert_type", "title", "message", "icon", "is_read", "created_at"}

func alertRouter() *gin.Engine {
	h := NewAlertHandler()
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/alerts", h.List)
	router.GET("/alerts/unread-count", h.UnreadCount)
	router.PUT("/alerts/read-all", h.MarkAllRead)
	router.PUT("/alerts/:id/read", h.MarkRead)
	return router
}

func TestAlertHandler_List(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `alerts` WHERE user_id = \\? ORDER BY created_at DESC LIMIT 50").
		WillReturnRows(sqlmock.NewRows(alertColumns).
			AddRow(2, 1, "goal_complete", "🎉 Goal Completed!", "You reached your goal", "🎉", false, juneTenth).
			AddRow(1, 1, "overspend", "⚠️ Daily Limit Exceeded!", "You've spent ₹370 today", "⚠️", true, juneTenth))

	w := doRequest(alertRouter(), "GET", "/alerts", "")

	assert.Equal(t, http.StatusOK, w.Code)
	alerts := decodeResponse(t, w)["data"].([]interface{})
	require.Len(t, alerts, 2)
	assert.Equal(t, "goal_complete", alerts[0].(map[string]interface{})["alert_type"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAlertHandler_MarkRead(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `alerts` SET `is_read`=\\? WHERE id = \\? AND user_id = \\?").
		WithArgs(true, uint(2), uint(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `alerts`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	router := alertRouter()
	w := doRequest(router, "PUT", "/alerts/2/read", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "PUT", "/alerts/99/read", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAlertHandler_MarkAllRead(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `alerts` SET `is_read`=\\? WHERE user_id = \\? AND is_read = \\?").
		WithArgs(true, uint(1), false).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	w := doRequest(alertRouter(), "PUT", "/alerts/read-all", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), decodeResponse(t, w)["data"].(map[string]interface{})["updated"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAlertHandler_UnreadCount(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `alerts` WHERE user_id = \\? AND is_read = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	w := doRequest(alertRouter(), "GET", "/alerts/unread-count", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(4), decodeResponse(t, w)["data"].(map[string]interface{})["count"])
	require.NoError(t, mock.ExpectationsWereMet())
}
