// internal/middleware/rate_limit_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/beathaus/beathaus-backend/internal/config"
)

func limitedRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ping", handler, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func hit(router *gin.Engine, remoteAddr string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	router.ServeHTTP(w, req)
	return w.Code
}

func TestIPRateLimiterThrottlesPerClient(t *testing.T) {
	limits := NewLimits(config.RateLimitConfig{
		GeneralPerSecond: 1,
		GeneralBurst:     1,
		AuthPerMinute:    1,
		UploadPerMinute:  1,
		WebhookPerSecond: 1,
		WebhookBurst:     1,
	})
	router := limitedRouter(limits.General())

	assert.Equal(t, http.StatusOK, hit(router, "203.0.113.7:40000"))
	assert.Equal(t, http.StatusTooManyRequests, hit(router, "203.0.113.7:40000"))

	// A different client gets its own bucket.
	assert.Equal(t, http.StatusOK, hit(router, "203.0.113.9:40000"))
}

func TestWebhookBucketIsIndependent(t *testing.T) {
	limits := NewLimits(config.RateLimitConfig{
		GeneralPerSecond: 1,
		GeneralBurst:     1,
		AuthPerMinute:    1,
		UploadPerMinute:  1,
		WebhookPerSecond: 1,
		WebhookBurst:     2,
	})

	general := limitedRouter(limits.General())
	webhook := limitedRouter(limits.Webhook())

	addr := "203.0.113.7:40000"
	assert.Equal(t, http.StatusOK, hit(general, addr))
	assert.Equal(t, http.StatusTooManyRequests, hit(general, addr))

	// Exhausting the general bucket must not block gateway deliveries.
	assert.Equal(t, http.StatusOK, hit(webhook, addr))
	assert.Equal(t, http.StatusOK, hit(webhook, addr))
	assert.Equal(t, http.StatusTooManyRequests, hit(webhook, addr))
}

func TestNewLimitsToleratesZeroConfig(t *testing.T) {
	limits := NewLimits(config.RateLimitConfig{})
	router := limitedRouter(limits.General())
	assert.Equal(t, http.StatusOK, hit(router, "203.0.113.7:40000"))
}
