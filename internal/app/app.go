// Package app wires configuration, backing services and HTTP routes into a
// runnable server. Every entry point builds its App from the same config and
// chooses which flows to expose.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/talqs/talqs/backend/go-services/handlers"
	"github.com/talqs/talqs/backend/go-services/internal/audit"
	"github.com/talqs/talqs/backend/go-services/internal/auth"
	"github.com/talqs/talqs/backend/go-services/internal/config"
	"github.com/talqs/talqs/backend/go-services/internal/database"
	"github.com/talqs/talqs/backend/go-services/internal/document/repository"
	"github.com/talqs/talqs/backend/go-services/internal/document/service"
	"github.com/talqs/talqs/backend/go-services/internal/generation"
	"github.com/talqs/talqs/backend/go-services/internal/qa"
	"github.com/talqs/talqs/backend/go-services/internal/scheduler"
	"github.com/talqs/talqs/backend/go-services/internal/storage"
	"github.com/talqs/talqs/backend/go-services/internal/summarize"
	"github.com/talqs/talqs/backend/go-services/pkg/logger"
	"github.com/talqs/talqs/backend/go-services/pkg/metrics"
	"github.com/talqs/talqs/backend/go-services/pkg/middleware"
)

// Options select the flows an entry point serves. Empty overrides fall back
// to the configuration.
type Options struct {
	Name         string
	Port         string
	DocumentFlow bool
	Summarize    bool
	QA           bool

	QAStrategy       string
	QABattery        string
	SummaryFallback  string
	SkipExternalDeps bool
}

// pinger is a backing service that can report reachability.
type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	cfg    *config.Config
	opts   Options
	Engine *gin.Engine

	Client *generation.Client
	Store  *repository.MemoryRepo

	redis    *redis.Client
	mongo    *audit.MongoRecorder
	weights  pinger
	limiter  *middleware.RateLimiter
	sched    *scheduler.Scheduler
	registry *prometheus.Registry
	started  time.Time
}

// New builds the App. Optional backing services that cannot be reached are
// logged and left out; configuration errors are returned.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if opts.Name == "" {
		opts.Name = "talqs"
	}
	if opts.Port == "" {
		opts.Port = cfg.Server.Port
	}
	a := &App{cfg: cfg, opts: opts, started: time.Now(), registry: prometheus.NewRegistry()}
	metrics.RegisterCollectors(a.registry)
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if !opts.SkipExternalDeps {
		a.connectRedis(ctx)
		a.connectMongo(ctx)
	}

	var recorder audit.Recorder = audit.Nop{}
	if a.mongo != nil {
		recorder = a.mongo
	}
	client, err := a.buildClient(ctx, recorder)
	if err != nil {
		return nil, err
	}
	a.Client = client

	if err := a.buildRouter(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) connectRedis(ctx context.Context) {
	if a.cfg.Redis.Host == "" {
		return
	}
	addr := a.cfg.Redis.Host + ":" + a.cfg.Redis.Port
	rc := redis.NewClient(&redis.Options{Addr: addr, Password: a.cfg.Redis.Password, DB: a.cfg.Redis.DB})
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rc.Ping(pctx).Err(); err != nil {
		logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
	} else {
		logger.Infof("connected to Redis: %s", addr)
	}
	// keep the client: go-redis reconnects on its own
	a.redis = rc
}

func (a *App) connectMongo(ctx context.Context) {
	if a.cfg.MongoDB.URI == "" {
		return
	}
	client, err := database.ConnectMongoWithRetry(ctx, a.cfg.MongoDB.URI, a.cfg.MongoDB.Timeout, 5, time.Second)
	if err != nil {
		logger.Warnf("generation audit disabled: %v", err)
		return
	}
	a.mongo = audit.NewMongoRecorderFromClient(client, a.cfg.MongoDB.Database, 5*time.Second)
	logger.Infof("generation audit events stored in %s.%s", a.cfg.MongoDB.Database, audit.Collection)
}

func (a *App) buildClient(ctx context.Context, recorder audit.Recorder) (*generation.Client, error) {
	var resolver generation.WeightsResolver
	if a.cfg.MinIO.Endpoint != "" && a.cfg.Generation.Provider == config.ProviderInference {
		s, err := storage.NewMinIOStorage(a.cfg.MinIO)
		if err != nil {
			logger.Warnf("model weights in object storage unavailable: %v", err)
		} else {
			resolver = s
			a.weights = s
		}
	}
	backend, err := generation.NewBackend(a.cfg.Generation, resolver)
	if err != nil {
		return nil, err
	}
	client := generation.NewClient(backend, a.cfg.Generation.Timeout, recorder)
	if client.Enabled() && !a.opts.SkipExternalDeps {
		if err := client.Warmup(ctx); err != nil {
			logger.Warnf("generation backend %s not loaded at startup, will retry: %v", client.Name(), err)
		}
	}
	return client, nil
}

func (a *App) buildRouter(ctx context.Context) error {
	cfg := a.cfg
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(), gin.Recovery(), cors())

	health := handlers.NewHealthHandler(a.started)
	health.Register(r)
	handlers.RegisterSwagger(r)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	verifier, err := auth.NewVerifier(ctx, cfg.Auth)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	revocations := auth.NewRedisRevocationList(a.redis)

	api := r.Group("/")
	if verifier != nil {
		if revocations != nil {
			api.Use(middleware.AuthMiddlewareWithRevocation(verifier, revocations))
		} else {
			api.Use(middleware.AuthMiddleware(verifier))
		}
	}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && a.redis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			api.Use(middleware.RedisRateLimitMiddleware(a.redis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			a.limiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
			api.Use(a.limiter.Handler())
		}
	}
	api.Use(middleware.SessionSlot())

	if verifier != nil && revocations != nil {
		handlers.NewAuthHandler(revocations).Register(api)
	}

	if a.opts.DocumentFlow {
		if err := a.registerDocumentFlow(api); err != nil {
			return err
		}
	}
	if a.opts.Summarize || a.opts.QA {
		if err := a.registerGenerationFlow(r, api); err != nil {
			return err
		}
	}

	a.addReadiness(health)
	a.Engine = r
	return nil
}

func (a *App) registerDocumentFlow(api gin.IRouter) error {
	cfg := a.cfg
	docs, repo := service.NewMemoryService(cfg.Store.MaxSlots, cfg.Store.SlotTTL, cfg.Server.AllowedExtensions)
	a.Store = repo

	upload, err := summarize.StrategyByName(cfg.Summary.UploadStrategy)
	if err != nil {
		return err
	}
	qaSvc, err := qa.NewService(a.Client, qa.Config{
		Strategy:    cfg.QA.Strategy,
		Battery:     cfg.QA.UploadBattery,
		Budget:      cfg.Generation.InputBudget,
		Concurrency: cfg.QA.BulkConcurrency,
	})
	if err != nil {
		return err
	}
	summarizer := summarize.NewService(a.Client, upload, cfg.Generation.InputBudget)
	handlers.NewDocumentHandler(docs, summarizer, qaSvc, cfg.Server.MaxUploadBytes).Register(api)
	return nil
}

func (a *App) registerGenerationFlow(public, api gin.IRouter) error {
	cfg := a.cfg
	var summarizer *summarize.Service
	if a.opts.Summarize {
		name := a.opts.SummaryFallback
		if name == "" {
			name = cfg.Summary.FallbackStrategy
		}
		fallback, err := summarize.StrategyByName(name)
		if err != nil {
			return err
		}
		summarizer = summarize.NewService(a.Client, fallback, cfg.Generation.InputBudget)
	}
	var qaSvc *qa.Service
	if a.opts.QA {
		strategy := a.opts.QAStrategy
		if strategy == "" {
			strategy = cfg.QA.Strategy
		}
		battery := a.opts.QABattery
		if battery == "" {
			battery = cfg.QA.ServerBattery
		}
		var err error
		qaSvc, err = qa.NewService(a.Client, qa.Config{
			Strategy:    strategy,
			Battery:     battery,
			Budget:      cfg.Generation.InputBudget,
			Concurrency: cfg.QA.BulkConcurrency,
		})
		if err != nil {
			return err
		}
	}
	h := handlers.NewGenerationHandler(summarizer, qaSvc)
	h.RegisterPublic(public)
	h.Register(api)
	return nil
}

func (a *App) addReadiness(health *handlers.HealthHandler) {
	if a.Client.Enabled() {
		health.AddCheck("generation", func(context.Context) bool { return a.Client.Loaded() })
	}
	if a.redis != nil && a.cfg.RateLimit.Enabled && a.cfg.RateLimit.UseRedis {
		health.AddCheck("redis", func(ctx context.Context) bool { return a.redis.Ping(ctx).Err() == nil })
	}
	if a.weights != nil {
		health.AddCheck("weights", func(ctx context.Context) bool { return a.weights.Ping(ctx) == nil })
	}
	if a.mongo != nil {
		health.AddCheck("audit", func(ctx context.Context) bool { return a.mongo.Ping(ctx) == nil })
	}
}

// cors is a permissive CORS policy for the browser frontend.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Session-ID, X-Request-ID")
		h.Set("Access-Control-Expose-Headers", "Content-Length, X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// Run serves HTTP until ctx is done, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	var sweeper scheduler.Sweeper
	if a.Store != nil {
		sweeper = a.Store
	}
	var warmer scheduler.Warmer
	if a.Client.Enabled() {
		warmer = a.Client
	}
	if sweeper != nil || warmer != nil || a.limiter != nil {
		a.sched = scheduler.New(ctx, sweeper, warmer)
		if a.limiter != nil {
			a.sched.AddSweeper("rate limit buckets", a.limiter)
		}
		if err := a.sched.Start(a.cfg.Store.SweepSpec, scheduler.DefaultWarmupSpec); err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
	}

	addr := fmt.Sprintf("%s:%s", a.cfg.Server.Host, a.opts.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      a.Engine,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("starting %s on %s (generation=%s)", a.opts.Name, addr, a.Client.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		a.Close(context.Background())
		return err
	case <-ctx.Done():
	}
	logger.Infof("shutting down %s", a.opts.Name)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	a.Close(shutdownCtx)
	return err
}

// Close stops background jobs and releases backing connections.
func (a *App) Close(ctx context.Context) {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.mongo != nil {
		if err := a.mongo.Close(ctx); err != nil {
			logger.Warnf("mongo disconnect: %v", err)
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
