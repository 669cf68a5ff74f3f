package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddleware())
	router.GET("/api/v1/expenses/:id", func(c *gin.Context) { c.Status(200) })
	router.GET("/metrics", Handler())

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/v1/expenses/12", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/v1/expenses/13", nil))

	got := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/v1/expenses/:id", "200"))
	assert.Equal(t, 2.0, got)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "budgetbite_http_requests_total")
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(ExpensesLogged.WithLabelValues("Food"))
	ExpensesLogged.WithLabelValues("Food").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ExpensesLogged.WithLabelValues("Food")))
}
