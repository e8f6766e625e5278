package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const (
	maxTrackedClients = 10000
	clientIdleTTL     = 3 * time.Minute
)

// RateLimiter hands out one token bucket per client IP. Idle clients are
// evicted after clientIdleTTL.
type RateLimiter struct {
	// mu makes the lookup-then-add in limiter atomic; expirable.LRU has no
	// get-or-add.
	mu      sync.Mutex
	clients *expirable.LRU[string, *rate.Limiter]
	limit   rate.Limit
	burst   int
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients: expirable.NewLRU[string, *rate.Limiter](maxTrackedClients, nil, clientIdleTTL),
		limit:   rate.Limit(rps),
		burst:   burst,
	}
}

func (l *RateLimiter) limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.clients.Get(ip)
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
	}
	// Re-adding refreshes the idle timer.
	l.clients.Add(ip, limiter)
	return limiter
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.limiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
			})
			return
		}

		c.Next()
	}
}
