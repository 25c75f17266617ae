package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/talqs/talqs/backend/go-services/internal/audit"
	"github.com/talqs/talqs/backend/go-services/pkg/logger"
	"github.com/talqs/talqs/backend/go-services/pkg/metrics"
)

// Client serializes backend loading and bounds every call by a timeout.
// A nil *Client is valid and reports every call as disabled.
type Client struct {
	backend  Backend
	timeout  time.Duration
	recorder audit.Recorder

	// loadMu serializes Load; loaded is read without it.
	loadMu sync.Mutex
	loaded atomic.Bool
}

// NewClient returns a client for backend. A nil backend yields a nil client.
func NewClient(backend Backend, timeout time.Duration, recorder audit.Recorder) *Client {
	if backend == nil {
		return nil
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Client{backend: backend, timeout: timeout, recorder: recorder}
}

// Name returns the backend name, "none" for a nil client.
func (c *Client) Name() string {
	if c == nil {
		return "none"
	}
	return c.backend.Name()
}

// Enabled reports whether a backend is configured.
func (c *Client) Enabled() bool { return c != nil }

// Loaded reports whether the backend has been loaded successfully.
func (c *Client) Loaded() bool {
	if c == nil {
		return false
	}
	return c.loaded.Load()
}

// Warmup loads the backend if it is not loaded yet.
func (c *Client) Warmup(ctx context.Context) error {
	if c == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.ensureLoaded(ctx)
}

// ensureLoaded runs Load at most once successfully. Concurrent callers wait
// for the loading call; a failed load is retried by the next caller.
func (c *Client) ensureLoaded(ctx context.Context) error {
	if c.loaded.Load() {
		return nil
	}
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	if c.loaded.Load() {
		return nil
	}
	if err := c.backend.Load(ctx); err != nil {
		return err
	}
	c.loaded.Store(true)
	logger.Infof("generation backend %s loaded", c.backend.Name())
	return nil
}

type generated struct {
	text string
	err  error
}

// Generate performs one attempt against the backend. It never retries.
func (c *Client) Generate(ctx context.Context, req Request) Result {
	if c == nil {
		return Result{Reason: ReasonDisabled}
	}
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res := c.generate(ctx, req)
	res.Latency = time.Since(start)
	c.observe(ctx, req, res)
	return res
}

func (c *Client) generate(ctx context.Context, req Request) Result {
	if err := c.ensureLoaded(ctx); err != nil {
		return Result{Reason: ReasonLoadFailed, Err: fmt.Errorf("load %s: %w", c.backend.Name(), err)}
	}

	ch := make(chan generated, 1)
	go func() {
		text, err := c.backend.Generate(ctx, req)
		ch <- generated{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Result{Reason: ReasonTimeout, Err: fmt.Errorf("generation exceeded %s", c.timeout)}
		}
		return Result{Reason: ReasonRuntime, Err: ctx.Err()}
	case g := <-ch:
		if g.err != nil {
			if errors.Is(g.err, context.DeadlineExceeded) {
				return Result{Reason: ReasonTimeout, Err: g.err}
			}
			return Result{Reason: ReasonRuntime, Err: g.err}
		}
		text := strings.TrimSpace(g.text)
		if text == "" {
			return Result{Reason: ReasonEmptyOutput, Err: errors.New("backend returned no text")}
		}
		return Result{Text: text}
	}
}

func (c *Client) observe(ctx context.Context, req Request, res Result) {
	name := c.backend.Name()
	metrics.GenerationRequests.WithLabelValues(string(req.Task), name, res.Reason.Outcome()).Inc()
	metrics.GenerationDuration.WithLabelValues(string(req.Task), name).Observe(res.Latency.Seconds())
	if res.Failed() {
		logger.Warnf("generation %s via %s failed (%s): %v", req.Task, name, res.Reason, res.Err)
	}
	c.recorder.Record(ctx, audit.Event{
		Task:      string(req.Task),
		Backend:   name,
		Reason:    string(res.Reason),
		LatencyMs: res.Latency.Milliseconds(),
		At:        time.Now().UTC(),
	})
}
