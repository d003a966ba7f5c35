package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/resumatch/pkg/utils"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIConfig configures the hosted embedding provider.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string // empty uses the SDK default
	Model      string // default: text-embedding-3-small
	Dimensions int
}

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
}

// NewOpenAIEmbedder creates an embedder for the configured endpoint.
func NewOpenAIEmbedder(cfg OpenAIConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api_key is required for openai embeddings (set OPENAI_API_KEY)")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	model := cfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	client := openai.NewClient(opts...)

	return &OpenAIEmbedder{
		client:     &client,
		model:      model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed returns the embedding for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embs[0], nil
}

// EmbedBatch embeds all non-empty texts in one request. Empty texts get the zero
// vector without a round trip since the API rejects empty input.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var input []string
	var inputIdx []int
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			out[i] = make([]float32, e.dimensions)
			continue
		}
		input = append(input, text)
		inputIdx = append(inputIdx, i)
	}
	if len(input) == 0 {
		return out, nil
	}

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: input},
		Model:          openai.EmbeddingModel(e.model),
		Dimensions:     openai.Int(int64(e.dimensions)),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings request failed: %w", err)
	}
	if len(resp.Data) != len(input) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(resp.Data), len(input))
	}

	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(input) {
			return nil, fmt.Errorf("openai returned out-of-range embedding index %d", d.Index)
		}
		if len(d.Embedding) != e.dimensions {
			return nil, fmt.Errorf("openai embedding dimension mismatch: got %d, expected %d", len(d.Embedding), e.dimensions)
		}
		emb := make([]float32, e.dimensions)
		for i, v := range d.Embedding {
			emb[i] = float32(v)
		}
		utils.NormalizeL2(emb)
		out[inputIdx[d.Index]] = emb
	}
	return out, nil
}

// Dimensions returns the requested embedding dimension.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Identity returns "openai:" followed by the model name.
func (e *OpenAIEmbedder) Identity() string {
	return ProviderOpenAI + ":" + e.model
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (e *OpenAIEmbedder) Close() error {
	return nil
}
