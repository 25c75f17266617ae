package middleware

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/talqs/talqs/backend/go-services/pkg/metrics"
	"golang.org/x/time/rate"
)

// minLimiterIdle is the shortest time a bucket is kept after its last use.
const minLimiterIdle = time.Minute

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// limiterStore is a per-key set of token buckets owned by one middleware.
type limiterStore struct {
	m     sync.Map // map[string]*limiterEntry
	rps   float64
	burst int
	idle  time.Duration
}

func newLimiterStore(rps float64, burst int) *limiterStore {
	// a bucket idle for burst/rps has refilled, so dropping it loses nothing
	idle := minLimiterIdle
	if rps > 0 {
		if refill := time.Duration(float64(burst) / rps * float64(time.Second)); refill > idle {
			idle = refill
		}
	}
	return &limiterStore{rps: rps, burst: burst, idle: idle}
}

// get returns (and lazily creates) the token-bucket limiter for key
func (s *limiterStore) get(key string) *rate.Limiter {
	v, ok := s.m.Load(key)
	if !ok {
		v, _ = s.m.LoadOrStore(key, &limiterEntry{lim: rate.NewLimiter(rate.Limit(s.rps), s.burst)})
	}
	e := v.(*limiterEntry)
	e.lastSeen.Store(now().UnixNano())
	return e.lim
}

// sweep drops buckets unused for longer than the idle period.
func (s *limiterStore) sweep(t time.Time) int {
	cutoff := t.Add(-s.idle).UnixNano()
	removed := 0
	s.m.Range(func(k, v any) bool {
		if v.(*limiterEntry).lastSeen.Load() < cutoff && s.m.CompareAndDelete(k, v) {
			removed++
		}
		return true
	})
	return removed
}

func (s *limiterStore) len() int {
	n := 0
	s.m.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

// rateLimitKey prefers the authenticated subject (NAT-friendly), then the
// client IP.
func rateLimitKey(c *gin.Context) string {
	if sub := Subject(c); sub != "" {
		return "sub:" + sub
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

// RateLimiter is an in-memory per-key token-bucket limiter. Sweep must be
// called periodically to release buckets of clients that went away.
type RateLimiter struct {
	store *limiterStore
}

// NewRateLimiter allows rps events per second per key with the given burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{store: newLimiterStore(rps, burst)}
}

// Handler returns the gin middleware.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.store.get(rateLimitKey(c)).Allow() {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}

// Sweep drops idle buckets and returns how many were removed.
func (l *RateLimiter) Sweep(t time.Time) int { return l.store.sweep(t) }

// Len reports the number of tracked keys.
func (l *RateLimiter) Len() int { return l.store.len() }

// RateLimitMiddleware returns a Gin middleware enforcing a token-bucket per-key limit.
// rps = allowed events per second, burst = maximum tokens in bucket.
// Its buckets are never swept; long-running servers use NewRateLimiter.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	return NewRateLimiter(rps, burst).Handler()
}
