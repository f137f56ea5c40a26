package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"student-router/pkg/metrics"
)

// Metrics HTTP 请求计数与耗时
// 使用路由模板作为标签，未匹配路由统一记为 "unmatched"
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
