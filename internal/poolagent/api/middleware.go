package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/poolagent/pkg/ginx"
	"github.com/rs/zerolog"
)

// requestLogger 把带请求信息的 logger 放进请求 context，并记录访问日志
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		logger := zerolog.Ctx(c.Request.Context()).With().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("requestID", c.GetHeader(ginx.RequestIDHeader)).
			Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))

		c.Next()

		logger.Info().
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("HTTP request handled")
	}
}
