package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/talqs/talqs/backend/go-services/pkg/logger"
)

// WeightsResolver turns a configured model path into a location the model
// server can fetch.
type WeightsResolver interface {
	ResolveWeights(ctx context.Context, path string) (string, error)
}

// DefaultWeightsRefresh is half the presigned URL lifetime of the object
// store, so a resolved URL is always replaced before it expires.
const DefaultWeightsRefresh = 30 * time.Minute

// InferenceConfig configures an InferenceBackend.
type InferenceConfig struct {
	URL           string
	Model         string
	ModelPath     string
	TokenizerPath string
	HTTPClient    *http.Client
	// WeightsRefresh is how long a resolved weights location is reused.
	WeightsRefresh time.Duration
}

// InferenceBackend talks to an HTTP model server hosting the T5 model.
type InferenceBackend struct {
	cfg      InferenceConfig
	http     *http.Client
	resolver WeightsResolver

	mu        sync.RWMutex
	weights   string
	weightsAt time.Time
	now       func() time.Time
}

func NewInferenceBackend(cfg InferenceConfig, resolver WeightsResolver) *InferenceBackend {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	if cfg.WeightsRefresh <= 0 {
		cfg.WeightsRefresh = DefaultWeightsRefresh
	}
	return &InferenceBackend{cfg: cfg, http: hc, resolver: resolver, now: time.Now}
}

func (b *InferenceBackend) Name() string { return "inference" }

// Load checks the model server health and resolves the fine-tuned weights.
// Missing weights are not fatal: the server keeps using its base model.
func (b *InferenceBackend) Load(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.cfg.URL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("model server health: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model server health: status %d", resp.StatusCode)
	}

	b.mu.Lock()
	b.weights = b.resolveWeights(ctx)
	b.weightsAt = b.now()
	b.mu.Unlock()
	return nil
}

func (b *InferenceBackend) resolveWeights(ctx context.Context) string {
	weights := b.cfg.ModelPath
	if b.resolver == nil || weights == "" {
		return weights
	}
	resolved, err := b.resolver.ResolveWeights(ctx, weights)
	if err != nil {
		logger.Warnf("model weights %s unavailable, using base model %s: %v", weights, b.cfg.Model, err)
		return ""
	}
	return resolved
}

// currentWeights returns the resolved weights location, resolving it again
// once it is older than WeightsRefresh.
func (b *InferenceBackend) currentWeights(ctx context.Context) string {
	b.mu.RLock()
	weights, at := b.weights, b.weightsAt
	b.mu.RUnlock()
	if b.resolver == nil || b.cfg.ModelPath == "" || b.now().Sub(at) < b.cfg.WeightsRefresh {
		return weights
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.now().Sub(b.weightsAt) < b.cfg.WeightsRefresh {
		return b.weights
	}
	b.weights = b.resolveWeights(ctx)
	b.weightsAt = b.now()
	return b.weights
}

type inferenceRequest struct {
	Inputs     string `json:"inputs"`
	Parameters Params `json:"parameters"`
	Model      string `json:"model,omitempty"`
	Weights    string `json:"weights,omitempty"`
	Tokenizer  string `json:"tokenizer,omitempty"`
	Truncate   int    `json:"truncate,omitempty"`
}

type inferenceResponse struct {
	GeneratedText string `json:"generated_text"`
}

func (b *InferenceBackend) Generate(ctx context.Context, r Request) (string, error) {
	weights := b.currentWeights(ctx)

	body, err := json.Marshal(inferenceRequest{
		Inputs:     r.Prompt,
		Parameters: r.Params,
		Model:      b.cfg.Model,
		Weights:    weights,
		Tokenizer:  b.cfg.TokenizerPath,
		Truncate:   r.Budget,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.URL+"/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := b.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read generate response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generate: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return decodeGenerated(raw)
}

// decodeGenerated accepts {"generated_text": ...} or a list of those.
func decodeGenerated(raw []byte) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []inferenceResponse
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return "", fmt.Errorf("decode generate response: %w", err)
		}
		if len(list) == 0 {
			return "", nil
		}
		return list[0].GeneratedText, nil
	}
	var one inferenceResponse
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	return one.GeneratedText, nil
}
