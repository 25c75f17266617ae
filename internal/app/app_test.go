package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/talqs/talqs/backend/go-services/handlers"
	"github.com/talqs/talqs/backend/go-services/internal/auth"
	"github.com/talqs/talqs/backend/go-services/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:              "0",
			MaxUploadBytes:    1 << 20,
			AllowedExtensions: []string{".txt"},
		},
		Generation: config.GenerationConfig{Provider: config.ProviderNone, Timeout: time.Second, InputBudget: 512},
		QA:         config.QAConfig{Strategy: "rule_based", UploadBattery: "legal15", ServerBattery: "legal8", BulkConcurrency: 2},
		Summary:    config.SummaryConfig{FallbackStrategy: "first_middle_last", UploadStrategy: "lead_trail"},
		Store:      config.StoreConfig{MaxSlots: 8},
		Auth:       config.AuthConfig{Mode: config.AuthNone},
	}
}

func newTestApp(t *testing.T, cfg *config.Config, opts Options) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	opts.SkipExternalDeps = true
	a, err := New(context.Background(), cfg, opts)
	require.NoError(t, err)
	return a
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, _ = fw.Write([]byte(content))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestFullServiceUploadThenAsk(t *testing.T) {
	a := newTestApp(t, testConfig(), Options{DocumentFlow: true, Summarize: true, QA: true})
	require.False(t, a.Client.Enabled())

	w := httptest.NewRecorder()
	a.Engine.ServeHTTP(w, uploadRequest(t, "case.txt", "The petitioner sued. The court ruled. Costs were awarded."))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var up map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &up))
	require.Equal(t, "case.txt", up["filename"])
	require.NotEmpty(t, up["summary"])
	require.NotContains(t, up, "warning")
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/qa", strings.NewReader(`{"question":"Who is the respondent?"}`))
	req.Header.Set("Content-Type", "application/json")
	a.Engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "ABC Corporation")

	require.Equal(t, 1, a.Store.Len())
}

func TestPublicRoutes(t *testing.T) {
	a := newTestApp(t, testConfig(), Options{DocumentFlow: true, Summarize: true, QA: true})

	for _, path := range []string{"/health", "/ready", "/metrics", "/questions", "/swagger/doc.json"} {
		w := httptest.NewRecorder()
		a.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code, path)
	}

	w := httptest.NewRecorder()
	a.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/upload", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSummarizeServerOnlyServesSummaries(t *testing.T) {
	a := newTestApp(t, testConfig(), Options{Summarize: true, SummaryFallback: "truncate_words"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/summarize", strings.NewReader(`{"text":"one two three"}`))
	req.Header.Set("Content-Type", "application/json")
	a.Engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "one two three")

	w = httptest.NewRecorder()
	a.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/questions", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	a.Engine.ServeHTTP(w, uploadRequest(t, "a.txt", "x"))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownStrategyFailsBuild(t *testing.T) {
	cfg := testConfig()
	cfg.Summary.UploadStrategy = "nope"
	_, err := New(context.Background(), cfg, Options{DocumentFlow: true, SkipExternalDeps: true})
	require.Error(t, err)

	_, err = New(context.Background(), testConfig(), Options{QA: true, QABattery: "legal99", SkipExternalDeps: true})
	require.Error(t, err)
}

func TestJWTModeProtectsRoutes(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.AuthConfig{Mode: config.AuthJWT, JWTSecret: "testsecret123456789012345678901234"}
	a := newTestApp(t, cfg, Options{DocumentFlow: true, QA: true})

	w := httptest.NewRecorder()
	a.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/questions", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// health stays public
	w = httptest.NewRecorder()
	a.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	tok, err := auth.SignToken(cfg.Auth.JWTSecret, "alice", time.Hour, nil)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/questions", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	a.Engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "petitioner")
}

func TestRunShutsDownOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Host = "127.0.0.1"
	a := newTestApp(t, cfg, Options{QA: true})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

type fakeBucket struct{ err error }

func (f fakeBucket) Ping(context.Context) error { return f.err }

func TestReadinessIncludesWeightsBucket(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, tc := range []struct {
		name string
		err  error
		code int
	}{
		{"reachable", nil, http.StatusOK},
		{"unreachable", errors.New("connection refused"), http.StatusServiceUnavailable},
	} {
		t.Run(tc.name, func(t *testing.T) {
			a := &App{cfg: testConfig(), weights: fakeBucket{err: tc.err}}
			health := handlers.NewHealthHandler(time.Now())
			a.addReadiness(health)
			r := gin.New()
			health.Register(r)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
			require.Equal(t, tc.code, w.Code)
			var resp struct {
				Deps map[string]bool `json:"deps"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.Equal(t, tc.err == nil, resp.Deps["weights"])
		})
	}
}

func TestInMemoryRateLimiterIsSwept(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1}
	a := newTestApp(t, cfg, Options{DocumentFlow: true, QA: true})
	require.NotNil(t, a.limiter)

	codes := make([]int, 2)
	for i := range codes {
		w := httptest.NewRecorder()
		a.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/questions", nil))
		codes[i] = w.Code
	}
	require.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
	require.Equal(t, 1, a.limiter.Len())

	require.Equal(t, 1, a.limiter.Sweep(time.Now().Add(2*time.Minute)))
	require.Zero(t, a.limiter.Len())
}
