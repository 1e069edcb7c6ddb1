package handler

import (
	"net/http"
	"time"

	"npc-server/shared/models"

	rateli "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewLLMRateLimitStore создает хранилище счетчиков обращений к модели: лимит на IP в минуту.
// Без Redis счетчики живут в памяти процесса.
func NewLLMRateLimitStore(limitPerMinute uint, redisClient *redis.Client) rateli.Store {
	if redisClient != nil {
		return rateli.RedisStore(&rateli.RedisOptions{
			RedisClient: redisClient,
			Rate:        time.Minute,
			Limit:       limitPerMinute,
		})
	}
	return rateli.InMemoryStore(&rateli.InMemoryOptions{
		Rate:  time.Minute,
		Limit: limitPerMinute,
	})
}

func llmRateLimitMiddleware(store rateli.Store) gin.HandlerFunc {
	return rateli.RateLimiter(store, &rateli.Options{
		ErrorHandler: func(c *gin.Context, info rateli.Info) {
			logRateLimited(c, info)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, rateLimitedResponse(info))
		},
		KeyFunc: rateLimitKey,
	})
}

func rateLimitKey(c *gin.Context) string {
	return c.ClientIP()
}

func rateLimitedResponse(info rateli.Info) models.ErrorResponse {
	return models.ErrorResponse{
		Code:    models.ErrCodeRateLimited,
		Message: "Too many requests. Try again in " + time.Until(info.ResetTime).Round(time.Second).String(),
	}
}

func logRateLimited(c *gin.Context, info rateli.Info) {
	zap.L().Warn("Rate limit exceeded",
		zap.String("clientIP", c.ClientIP()),
		zap.Time("resetTime", info.ResetTime),
		zap.String("path", c.Request.URL.Path),
	)
}
