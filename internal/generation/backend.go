package generation

import (
	"fmt"

	"github.com/talqs/talqs/backend/go-services/internal/config"
)

// NewBackend builds the backend selected by cfg.Provider. It returns nil for
// the "none" provider.
func NewBackend(cfg config.GenerationConfig, resolver WeightsResolver) (Backend, error) {
	switch cfg.Provider {
	case config.ProviderNone, "":
		return nil, nil
	case config.ProviderInference:
		return NewInferenceBackend(InferenceConfig{
			URL:           cfg.URL,
			Model:         cfg.Model,
			ModelPath:     cfg.ModelPath,
			TokenizerPath: cfg.TokenizerPath,
		}, resolver), nil
	case config.ProviderOpenAI:
		return NewOpenAIBackend(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}
