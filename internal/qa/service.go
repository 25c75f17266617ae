// Package qa answers questions about a document, one at a time or over a
// fixed battery.
package qa

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/talqs/talqs/backend/go-services/internal/apperrors"
	"github.com/talqs/talqs/backend/go-services/internal/generation"
	"github.com/talqs/talqs/backend/go-services/pkg/metrics"
)

// Strategies.
const (
	StrategyGenerative = "generative"
	StrategyRuleBased  = "rule_based"
)

// Answer is one question with its answer. Fallback is set when a configured
// backend failed and the rule-based answer was used instead.
type Answer struct {
	Question string            `json:"question"`
	Answer   string            `json:"answer"`
	Fallback bool              `json:"-"`
	Reason   generation.Reason `json:"-"`
}

// Config configures a Service.
type Config struct {
	Strategy    string
	Battery     string
	Budget      int
	Concurrency int
}

type Service struct {
	client      *generation.Client
	strategy    string
	battery     []string
	budget      int
	concurrency int
}

// NewService validates cfg and returns a Service. client may be nil.
func NewService(client *generation.Client, cfg Config) (*Service, error) {
	switch cfg.Strategy {
	case StrategyGenerative, StrategyRuleBased:
	default:
		return nil, fmt.Errorf("unknown QA strategy %q", cfg.Strategy)
	}
	battery, err := Battery(cfg.Battery)
	if err != nil {
		return nil, err
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Service{
		client:      client,
		strategy:    cfg.Strategy,
		battery:     battery,
		budget:      cfg.Budget,
		concurrency: cfg.Concurrency,
	}, nil
}

// Questions returns a copy of the configured battery.
func (s *Service) Questions() []string {
	out := make([]string, len(s.battery))
	copy(out, s.battery)
	return out
}

// Strategy returns the configured strategy name.
func (s *Service) Strategy() string { return s.strategy }

// Answer answers a single question about context.
func (s *Service) Answer(ctx context.Context, contextText, question string) (Answer, error) {
	if strings.TrimSpace(contextText) == "" {
		return Answer{}, apperrors.Validation("Context cannot be empty")
	}
	if strings.TrimSpace(question) == "" {
		return Answer{}, apperrors.Validation("No question provided")
	}
	return s.answer(ctx, contextText, question), nil
}

// AnswerBulk answers the configured battery.
func (s *Service) AnswerBulk(ctx context.Context, contextText string) ([]Answer, error) {
	return s.AnswerBattery(ctx, contextText, s.battery)
}

// AnswerBattery answers every question in order. Each item degrades on its
// own; the result always has len(questions) entries.
func (s *Service) AnswerBattery(ctx context.Context, contextText string, questions []string) ([]Answer, error) {
	if strings.TrimSpace(contextText) == "" {
		return nil, apperrors.Validation("Context cannot be empty")
	}
	out := make([]Answer, len(questions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, q := range questions {
		i, q := i, q
		g.Go(func() error {
			out[i] = s.answer(gctx, contextText, q)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.Internal(err, "answer battery")
	}
	return out, nil
}

func (s *Service) answer(ctx context.Context, contextText, question string) Answer {
	if s.strategy == StrategyRuleBased {
		return Answer{Question: question, Answer: RuleBasedAnswer(question, contextText)}
	}
	res := s.client.Generate(ctx, generation.AnswerRequest(question, contextText, s.budget))
	if res.OK() {
		return Answer{Question: question, Answer: res.Text}
	}
	if res.Failed() {
		metrics.Fallbacks.WithLabelValues("qa", StrategyRuleBased).Inc()
	}
	return Answer{
		Question: question,
		Answer:   RuleBasedAnswer(question, contextText),
		Fallback: res.Failed(),
		Reason:   res.Reason,
	}
}

// AnyFallback reports whether any answer fell back.
func AnyFallback(answers []Answer) bool {
	for _, a := range answers {
		if a.Fallback {
			return true
		}
	}
	return false
}
