// Package embedding turns candidate profiles and job descriptions into vectors.
// Providers: local ONNX sentence model, OpenAI-compatible HTTP API, and a
// hashing bag-of-words embedder that needs no model files.
package embedding

import "context"

// Embedder produces vector embeddings for text.
// Implementations return vectors of exactly Dimensions() elements, L2-normalized
// unless the input is empty, in which case the zero vector is returned.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	// Identity names the provider and model. Vectors from embedders with
	// different identities are not comparable.
	Identity() string
	Close() error
}

// embedEach runs Embed for every text in order.
func embedEach(ctx context.Context, e Embedder, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}
