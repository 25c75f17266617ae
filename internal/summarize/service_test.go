package summarize

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/talqs/talqs/backend/go-services/internal/apperrors"
	"github.com/talqs/talqs/backend/go-services/internal/generation"
)

type stubBackend struct {
	text string
	err  error
}

func (s stubBackend) Name() string               { return "stub" }
func (s stubBackend) Load(context.Context) error { return nil }
func (s stubBackend) Generate(context.Context, generation.Request) (string, error) {
	return s.text, s.err
}

const longText = "The petitioner sued. The respondent denied. The trial began. Experts testified. The court ruled"

func TestSummarizeRejectsBlank(t *testing.T) {
	svc := NewService(nil, FirstMiddleLast{}, 512)
	for _, in := range []string{"", "   ", "\n\t"} {
		_, err := svc.Summarize(context.Background(), in, DefaultOptions())
		require.True(t, apperrors.IsValidation(err))
		require.Equal(t, "Text cannot be empty", apperrors.PublicMessage(err))
	}

	_, err := svc.Summarize(context.Background(), "x", Options{MaxLength: 10, MinLength: 20})
	require.True(t, apperrors.IsValidation(err))
	_, err = svc.Summarize(context.Background(), "x", Options{MaxLength: 0})
	require.True(t, apperrors.IsValidation(err))
}

func TestSummarizeWithoutBackend(t *testing.T) {
	svc := NewService(nil, FirstMiddleLast{}, 512)
	got, err := svc.Summarize(context.Background(), longText, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, "The petitioner sued. The trial began. The court ruled.", got.Text)
	require.False(t, got.Fallback)
	require.Equal(t, generation.ReasonDisabled, got.Reason)
	require.Equal(t, FirstMiddleLastName, got.Strategy)
}

func TestSummarizeGenerated(t *testing.T) {
	client := generation.NewClient(stubBackend{text: "Petitioner won."}, time.Second, nil)
	svc := NewService(client, FirstMiddleLast{}, 512)
	got, err := svc.Summarize(context.Background(), longText, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, "Petitioner won.", got.Text)
	require.False(t, got.Fallback)
}

func TestSummarizeFallsBackOnFailure(t *testing.T) {
	client := generation.NewClient(stubBackend{err: errors.New("boom")}, time.Second, nil)
	svc := NewService(client, TruncateWords{Limit: 100}, 512)
	got, err := svc.Summarize(context.Background(), longText, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, longText, got.Text)
	require.True(t, got.Fallback)
	require.Equal(t, generation.ReasonRuntime, got.Reason)
	require.Equal(t, TruncateWordsName, got.Strategy)
}
