package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"npc-server/shared/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func rateLimitedRouter(limiter gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.POST("/llm", limiter, func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func hit(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/llm", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLLMRateLimiter_InMemory(t *testing.T) {
	router := rateLimitedRouter(llmRateLimitMiddleware(NewLLMRateLimitStore(2, nil)))

	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1:1000").Code)

	w := hit(router, "10.0.0.1:1000")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, models.ErrCodeRateLimited, decodeError(t, w).Code)

	// Другой IP считается отдельно.
	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.2:1000").Code)
}

func TestLLMRateLimiter_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	router := rateLimitedRouter(llmRateLimitMiddleware(NewLLMRateLimitStore(1, client)))

	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(router, "10.0.0.1:1000").Code)
	assert.NotEmpty(t, mr.Keys(), "counters must live in redis")
}
