package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/hivestore/internal/service"
	"github.com/yourusername/hivestore/internal/session"
	"github.com/yourusername/hivestore/pkg/metrics"
)

const sessionContextKey = "hivestore.session"

// RequestLogger logs every request once it has been served.
// Server errors are logged at error level.
//
// RequestLogger 在每个请求处理完成后记录日志。
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		fields := append([]zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}, errorFields(c)...)

		if status >= http.StatusInternalServerError {
			logger.Error("request failed", fields...)
			return
		}
		logger.Info("request", fields...)
	}
}

// RequestMetrics counts requests by outcome and feeds the latency histogram.
//
// RequestMetrics 按结果统计请求并记录延迟直方图。
func RequestMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.RecordRequest(c.Writer.Status(), time.Since(start))
	}
}

// CacheHeaders adds the listing cache counters, as of the start of the
// request, to every response.
//
// CacheHeaders 将请求开始时的列表缓存计数添加到每个响应中。
func CacheHeaders(products *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if stats := products.CacheStats(c.Request.Context()); stats != nil {
			c.Header("X-Cache-Hits", fmt.Sprintf("%d", stats.Hits))
			c.Header("X-Cache-Misses", fmt.Sprintf("%d", stats.Misses))
			c.Header("X-Cache-Hit-Ratio", fmt.Sprintf("%.2f", stats.HitRatio()))
			c.Header("X-Cache-Entries", fmt.Sprintf("%d", stats.EntryCount))
		}
		c.Next()
	}
}

// Sessions resolves the session cookie, issuing a new id when it is missing
// or malformed, and stores the session in the gin context.
//
// Sessions 解析会话cookie，缺失或格式错误时签发新的id，并将会话保存到gin上下文中。
func Sessions(manager *session.Manager, cookie string, maxAge time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cookie)
		if err != nil || !session.ValidID(id) {
			id = session.NewID()
		}
		// refresh the expiry on every visit
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookie, id, int(maxAge.Seconds()), "/", "", false, true)

		sess, release, err := manager.Acquire(c.Request.Context(), id)
		if err != nil {
			logger.Error("failed to load session", zap.String("session", id), zap.Error(err))
			abortWithError(c, err)
			return
		}
		defer release()

		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionContextKey).(*session.Session)
}
