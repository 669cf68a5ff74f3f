package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "budgetbite",
		Name:      "http_requests_total",
		Help:      "HTTP 请求数",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "budgetbite",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP 请求耗时",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// ExpensesLogged 记账笔数，按类别
	ExpensesLogged = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "budgetbite",
		Name:      "expenses_logged_total",
		Help:      "记账笔数",
	}, []string{"category"})

	// AlertsRaised 生成的提醒数，按类型
	AlertsRaised = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "budgetbite",
		Name:      "alerts_raised_total",
		Help:      "生成的提醒数",
	}, []string{"type"})

	// MealsCompleted 完成的餐食计划数
	MealsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "budgetbite",
		Name:      "meals_completed_total",
		Help:      "完成的餐食计划数",
	})

	// BadgesAwarded 新颁发的徽章数，按类型
	BadgesAwarded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "budgetbite",
		Name:      "badges_awarded_total",
		Help:      "新颁发的徽章数",
	}, []string{"badge"})

	// SplitsSettled 全部结清的分账单数
	SplitsSettled = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "budgetbite",
		Name:      "splits_settled_total",
		Help:      "全部结清的分账单数",
	})
)

func init() {
	prometheus.MustRegister(httpRequests, httpDuration, ExpensesLogged, AlertsRaised, MealsCompleted, BadgesAwarded, SplitsSettled)
}

// GinMiddleware 记录请求数与耗时，route 取路由模板避免高基数
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler 暴露 /metrics
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
