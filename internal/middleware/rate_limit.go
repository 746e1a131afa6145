// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/beathaus/beathaus-backend/internal/config"
)

// IPRateLimiter hands out one token bucket per client IP. Idle buckets are
// evicted so the map does not grow with every address ever seen.
type IPRateLimiter struct {
	buckets map[string]*ipBucket
	mtx     sync.Mutex
	rate    rate.Limit
	burst   int
}

type ipBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewIPRateLimiter(r rate.Limit, burst int) *IPRateLimiter {
	rl := &IPRateLimiter{
		buckets: make(map[string]*ipBucket),
		rate:    r,
		burst:   burst,
	}
	go rl.evictIdle()
	return rl
}

func (rl *IPRateLimiter) evictIdle() {
	for {
		time.Sleep(time.Minute)
		rl.mtx.Lock()
		for ip, b := range rl.buckets {
			if time.Since(b.lastSeen) > 3*time.Minute {
				delete(rl.buckets, ip)
			}
		}
		rl.mtx.Unlock()
	}
}

func (rl *IPRateLimiter) take(ip string) *rate.Limiter {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	b, ok := rl.buckets[ip]
	if !ok {
		b = &ipBucket{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.buckets[ip] = b
	}
	b.lastSeen = time.Now()
	return b.limiter
}

func (rl *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.take(c.ClientIP()).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Limits groups the route-class limiters: general catalog traffic,
// credential endpoints, producer uploads, and the gateway webhook. The
// webhook bucket must stay above the gateway's redelivery cadence so
// retries of a failed fulfillment are never throttled away.
type Limits struct {
	general *IPRateLimiter
	auth    *IPRateLimiter
	upload  *IPRateLimiter
	webhook *IPRateLimiter
}

func NewLimits(cfg config.RateLimitConfig) *Limits {
	return &Limits{
		general: NewIPRateLimiter(perSecond(cfg.GeneralPerSecond), atLeast(cfg.GeneralBurst, 1)),
		auth:    NewIPRateLimiter(perMinute(cfg.AuthPerMinute), atLeast(cfg.AuthPerMinute, 1)),
		upload:  NewIPRateLimiter(perMinute(cfg.UploadPerMinute), atLeast(cfg.UploadPerMinute, 1)),
		webhook: NewIPRateLimiter(perSecond(cfg.WebhookPerSecond), atLeast(cfg.WebhookBurst, 1)),
	}
}

func (l *Limits) General() gin.HandlerFunc { return l.general.Middleware() }
func (l *Limits) Auth() gin.HandlerFunc    { return l.auth.Middleware() }
func (l *Limits) Upload() gin.HandlerFunc  { return l.upload.Middleware() }
func (l *Limits) Webhook() gin.HandlerFunc { return l.webhook.Middleware() }

func perSecond(n int) rate.Limit {
	if n < 1 {
		n = 1
	}
	return rate.Limit(n)
}

func perMinute(n int) rate.Limit {
	if n < 1 {
		n = 1
	}
	return rate.Every(time.Minute / time.Duration(n))
}

func atLeast(n, floor int) int {
	if n < floor {
		return floor
	}
	return n
}
