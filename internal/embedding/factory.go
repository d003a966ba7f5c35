package embedding

import (
	"fmt"

	"github.com/hyperjump/resumatch/internal/config"
	"go.uber.org/zap"
)

// Provider names accepted in embedding.provider.
const (
	ProviderONNX   = "onnx"
	ProviderOpenAI = "openai"
	ProviderHash   = "hash"
)

// NewFromConfig builds the configured embedder wrapped in an LRU cache.
// When the ONNX runtime or model cannot be loaded the hashing embedder is used
// instead and a warning is logged. Vectors from different providers are not
// comparable; the search engine records Identity with the index and refuses to
// open an index built by a different embedder.
func NewFromConfig(cfg config.EmbeddingConfig, logger *zap.Logger) (Embedder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var embedder Embedder
	switch cfg.Provider {
	case ProviderOpenAI:
		e, err := NewOpenAIEmbedder(OpenAIConfig{
			APIKey:     cfg.OpenAI.APIKey,
			BaseURL:    cfg.OpenAI.BaseURL,
			Model:      cfg.OpenAI.Model,
			Dimensions: cfg.Dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize openai embedder: %w", err)
		}
		embedder = e
	case ProviderHash:
		embedder = NewHashEmbedder(cfg.Dimensions)
	case ProviderONNX, "":
		e, err := NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens)
		if err != nil {
			logger.Warn("onnx embedder unavailable, falling back to hash embedder",
				zap.String("model_path", cfg.ModelPath),
				zap.Error(err))
			embedder = NewHashEmbedder(cfg.Dimensions)
		} else {
			embedder = e
		}
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}

	logger.Info("embedder initialized",
		zap.String("provider", cfg.Provider),
		zap.String("identity", embedder.Identity()),
		zap.Int("dimensions", embedder.Dimensions()))
	return NewCachedEmbedder(embedder, cfg.CacheSize), nil
}
