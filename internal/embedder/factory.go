package embedder

import (
	"fmt"
	"os"

	"github.com/corekb/corekb/internal/config"
)

// New creates an embedder for the configured provider. The OpenAI provider
// reads its key from OPENAI_API_KEY.
func New(cfg config.Embedding) (Embedder, error) {
	cache := NewCache(cfg.CacheSize)

	switch cfg.Provider {
	case ProviderLocal:
		return NewLocalProvider(cfg.Dimension, cache), nil
	case ProviderOllama:
		return NewOllamaProvider(cfg.Endpoint, cfg.Model, cfg.Dimension, cache), nil
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.Endpoint, os.Getenv("OPENAI_API_KEY"), cfg.Model, cfg.Dimension, cache)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
