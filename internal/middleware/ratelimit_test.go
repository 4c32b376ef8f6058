package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllow(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("b"))

	now = now.Add(time.Second)
	assert.True(t, limiter.Allow("a"))

	now = now.Add(time.Hour)
	limiter.Allow("c")
	assert.NotContains(t, limiter.visitors, "a")
}

func TestRateLimitHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/generate", RateLimit(0.001, 1), func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	})

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/generate", nil))
	assert.Equal(t, http.StatusAccepted, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/generate", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "5", second.Header().Get("Retry-After"))
}
