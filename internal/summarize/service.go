// Package summarize produces a summary for a text, generated when a backend
// is available and extractive otherwise.
package summarize

import (
	"context"
	"strings"

	"github.com/talqs/talqs/backend/go-services/internal/apperrors"
	"github.com/talqs/talqs/backend/go-services/internal/generation"
	"github.com/talqs/talqs/backend/go-services/pkg/metrics"
)

const (
	DefaultMaxLength = 150
	DefaultMinLength = 30
)

// Options bound the generated summary length in output tokens.
type Options struct {
	MaxLength int
	MinLength int
}

// DefaultOptions returns the lengths used when a caller sets none.
func DefaultOptions() Options {
	return Options{MaxLength: DefaultMaxLength, MinLength: DefaultMinLength}
}

// Summary is the result of Summarize. Fallback is set only when a configured
// backend failed; Reason carries the failure tag.
type Summary struct {
	Text     string
	Strategy string
	Fallback bool
	Reason   generation.Reason
}

type Service struct {
	client   *generation.Client
	fallback Strategy
	budget   int
}

// NewService returns a summarizer. client may be nil.
func NewService(client *generation.Client, fallback Strategy, budget int) *Service {
	if fallback == nil {
		fallback = FirstMiddleLast{}
	}
	return &Service{client: client, fallback: fallback, budget: budget}
}

func (s *Service) Summarize(ctx context.Context, text string, opts Options) (Summary, error) {
	if strings.TrimSpace(text) == "" {
		return Summary{}, apperrors.Validation("Text cannot be empty")
	}
	if opts.MaxLength <= 0 {
		return Summary{}, apperrors.Validation("max_length must be positive")
	}
	if opts.MinLength < 0 || opts.MinLength > opts.MaxLength {
		return Summary{}, apperrors.Validation("min_length must be between 0 and max_length")
	}

	res := s.client.Generate(ctx, generation.SummaryRequest(text, opts.MaxLength, opts.MinLength, s.budget))
	if res.OK() {
		return Summary{Text: res.Text, Strategy: "generated"}, nil
	}
	if res.Failed() {
		metrics.Fallbacks.WithLabelValues("summarize", s.fallback.Name()).Inc()
	}
	return Summary{
		Text:     s.fallback.Summarize(text),
		Strategy: s.fallback.Name(),
		Fallback: res.Failed(),
		Reason:   res.Reason,
	}, nil
}
