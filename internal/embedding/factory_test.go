package embedding

import (
	"testing"

	"github.com/hyperjump/resumatch/internal/config"
)

func TestNewFromConfig_Hash(t *testing.T) {
	e, err := NewFromConfig(config.EmbeddingConfig{Provider: "hash", Dimensions: 32, CacheSize: 4}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	if e.Dimensions() != 32 {
		t.Errorf("Dimensions=%d", e.Dimensions())
	}
	if _, ok := e.(*CachedEmbedder); !ok {
		t.Errorf("expected cached embedder, got %T", e)
	}
}

func TestNewFromConfig_ONNXFallsBackToHash(t *testing.T) {
	cfg := config.EmbeddingConfig{Provider: "onnx", ModelPath: "/nonexistent/model.onnx", Dimensions: 16}
	e, err := NewFromConfig(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	if _, ok := e.(*HashEmbedder); !ok {
		t.Errorf("expected hash fallback, got %T", e)
	}
	if e.Identity() != ProviderHash {
		t.Errorf("Identity=%q, want %q", e.Identity(), ProviderHash)
	}
}

func TestEmbedderIdentity(t *testing.T) {
	cached, err := NewFromConfig(config.EmbeddingConfig{Provider: "hash", Dimensions: 8, CacheSize: 2}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer cached.Close()
	if cached.Identity() != "hash" {
		t.Errorf("cached Identity=%q, want hash", cached.Identity())
	}
	oa, err := NewOpenAIEmbedder(OpenAIConfig{APIKey: "k", Dimensions: 8})
	if err != nil {
		t.Fatal(err)
	}
	if got := oa.Identity(); got != "openai:text-embedding-3-small" {
		t.Errorf("openai Identity=%q", got)
	}
}

func TestNewFromConfig_OpenAIWithoutKey(t *testing.T) {
	cfg := config.EmbeddingConfig{Provider: "openai", Dimensions: 16}
	if _, err := NewFromConfig(cfg, nil); err == nil {
		t.Error("expected error for openai provider without api key")
	}
}

func TestNewFromConfig_Unknown(t *testing.T) {
	if _, err := NewFromConfig(config.EmbeddingConfig{Provider: "word2vec", Dimensions: 8}, nil); err == nil {
		t.Error("expected error for unknown provider")
	}
}
