package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/zakareajob-cpu/zak-crm/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-IP token bucket. Idle entries are purged by Cleanup.
type RateLimiter struct {
	name    string
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu      sync.Mutex
	clients map[string]*clientLimiter
}

// NewRateLimiter allows perMinute requests per IP with bursts of up to burst.
func NewRateLimiter(name string, perMinute, burst int) *RateLimiter {
	if burst <= 0 {
		burst = perMinute
	}
	return &RateLimiter{
		name:    name,
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   burst,
		idleTTL: 10 * time.Minute,
		clients: make(map[string]*clientLimiter),
	}
}

func (rl *RateLimiter) allow(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cl, ok := rl.clients[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	retryAfter := "60"
	if rl.limit > 0 {
		retryAfter = strconv.Itoa(int(1/float64(rl.limit)) + 1)
	}
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP(), time.Now()) {
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many requests, try again shortly"))
			return
		}
		c.Next()
	}
}

// Purge drops clients idle for longer than the TTL and reports how many.
func (rl *RateLimiter) Purge(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	n := 0
	for ip, cl := range rl.clients {
		if now.Sub(cl.lastSeen) > rl.idleTTL {
			delete(rl.clients, ip)
			n++
		}
	}
	return n
}

// Cleanup purges idle clients every interval until ctx is done.
func (rl *RateLimiter) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := rl.Purge(now); n > 0 {
				log.Debug().Str("limiter", rl.name).Int("purged", n).Msg("rate limiter entries purged")
			}
		}
	}
}
