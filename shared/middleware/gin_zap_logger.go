package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader - заголовок, в котором передается идентификатор запроса.
const RequestIDHeader = "X-Request-ID"

// requestIDKey - ключ в gin.Context, под которым лежит идентификатор запроса.
const requestIDKey = "request_id"

// silentPaths не логируются: их дергают healthcheck и Prometheus.
var silentPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// GinZapLogger возвращает middleware для Gin, которое логирует запросы с помощью zap.
// Идентификатор запроса берется из заголовка X-Request-ID или генерируется.
func GinZapLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		path := c.Request.URL.Path
		if _, skip := silentPaths[path]; skip {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		if rawQuery := c.Request.URL.RawQuery; rawQuery != "" {
			path = path + "?" + rawQuery
		}
		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.String("request_id", requestID),
		}

		if len(c.Errors) > 0 {
			for _, ginErr := range c.Errors.ByType(gin.ErrorTypeAny) {
				log.Error("Request error", append(fields, zap.Error(ginErr.Err))...)
			}
			return
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("Server error", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("Client error", fields...)
		default:
			log.Info("Request completed", fields...)
		}
	}
}

// RequestID возвращает идентификатор текущего запроса (пустая строка, если middleware не подключен).
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
