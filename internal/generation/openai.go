package generation

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	summarizeInstruction = "You summarize legal documents. Reply with the summary only."
	answerInstruction    = "You answer questions about a legal document using only the given context. Reply with the answer only."
)

// OpenAIBackend generates through an OpenAI-compatible chat completions API
// (OpenAI, LM Studio, vLLM).
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

func NewOpenAIBackend(apiKey, baseURL, model string) *OpenAIBackend {
	if apiKey == "" {
		apiKey = "not-needed"
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIBackend{client: openai.NewClientWithConfig(cfg), model: model}
}

func (b *OpenAIBackend) Name() string { return "openai" }

// Load verifies the server is reachable by listing its models.
func (b *OpenAIBackend) Load(ctx context.Context) error {
	if _, err := b.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func (b *OpenAIBackend) Generate(ctx context.Context, r Request) (string, error) {
	instruction := answerInstruction
	if r.Task == TaskSummarize {
		instruction = summarizeInstruction
	}
	req := openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instruction},
			{Role: openai.ChatMessageRoleUser, Content: r.Prompt},
		},
		MaxTokens:   r.Params.MaxLength,
		Temperature: 0,
	}
	// repetition penalty 1.0 means none; map the excess onto the frequency penalty
	if r.Params.RepetitionPenalty > 1 {
		req.FrequencyPenalty = float32(r.Params.RepetitionPenalty - 1)
	}
	resp, err := b.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
