package handlers

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) bool

// HealthHandler serves liveness and readiness.
type HealthHandler struct {
	start time.Time

	mu     sync.RWMutex
	checks map[string]Check
}

func NewHealthHandler(start time.Time) *HealthHandler {
	return &HealthHandler{start: start, checks: map[string]Check{}}
}

// AddCheck registers a readiness dependency.
func (h *HealthHandler) AddCheck(name string, check Check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

func (h *HealthHandler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Ready returns 200 only when every registered dependency is available.
func (h *HealthHandler) Ready(c *gin.Context) {
	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	checks := make(map[string]Check, len(h.checks))
	for n, ch := range h.checks {
		names = append(names, n)
		checks[n] = ch
	}
	h.mu.RUnlock()
	sort.Strings(names)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	ready := true
	deps := make(map[string]bool, len(names))
	for _, n := range names {
		ok := checks[n](ctx)
		deps[n] = ok
		ready = ready && ok
	}
	uptime := time.Since(h.start).String()
	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": uptime})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": uptime})
}
