package handlers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/talqs/talqs/backend/go-services/internal/audit"
	"github.com/talqs/talqs/backend/go-services/internal/generation"
	"github.com/talqs/talqs/backend/go-services/internal/qa"
	"github.com/talqs/talqs/backend/go-services/internal/summarize"
	"github.com/talqs/talqs/backend/go-services/pkg/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubBackend answers with text, or fails with err. calls counts Generate.
type stubBackend struct {
	text  string
	err   error
	calls atomic.Int32
}

func (s *stubBackend) Name() string               { return "stub" }
func (s *stubBackend) Load(context.Context) error { return nil }

func (s *stubBackend) Generate(context.Context, generation.Request) (string, error) {
	s.calls.Add(1)
	return s.text, s.err
}

func stubClient(b *stubBackend) *generation.Client {
	return generation.NewClient(b, time.Second, audit.Nop{})
}

var errBackendDown = errors.New("backend down")

func newQA(t *testing.T, client *generation.Client, strategy, battery string) *qa.Service {
	t.Helper()
	svc, err := qa.NewService(client, qa.Config{Strategy: strategy, Battery: battery, Budget: 512, Concurrency: 2})
	require.NoError(t, err)
	return svc
}

func newSummarizer(client *generation.Client) *summarize.Service {
	return summarize.NewService(client, summarize.FirstMiddleLast{}, 512)
}

// testRouter mirrors the production middleware order without auth.
func testRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.SessionSlot())
	return r
}
