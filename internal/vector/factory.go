package vector

import (
	"fmt"

	"github.com/hyperjump/resumatch/internal/config"
	"go.uber.org/zap"
)

// IndexType names a VectorIndex implementation.
type IndexType string

const (
	// IndexTypeMemory is the pure-Go exact inner-product index.
	IndexTypeMemory IndexType = "memory"
	// IndexTypeFAISS is a FAISS IndexFlatIP; only available in builds with -tags=faiss.
	IndexTypeFAISS IndexType = "faiss"
)

// NewVectorIndex creates an empty index of the given type ("" means memory).
func NewVectorIndex(indexType string, dimensions int) (VectorIndex, error) {
	switch IndexType(indexType) {
	case IndexTypeMemory, "":
		return NewMemoryIndex(dimensions)
	case IndexTypeFAISS:
		return NewFAISSIndex(dimensions)
	default:
		return nil, fmt.Errorf("unknown index type %q (supported: memory, faiss)", indexType)
	}
}

// NewFromConfig creates the configured index. A FAISS index that cannot be
// created, for instance in a build without FAISS, is replaced by a memory index
// of the same dimensions and a warning is logged. Both types share the flat
// inner-product semantics, so scores do not change.
func NewFromConfig(cfg config.VectorConfig, dimensions int, logger *zap.Logger) (VectorIndex, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	idx, err := NewVectorIndex(cfg.IndexType, dimensions)
	if err == nil || IndexType(cfg.IndexType) != IndexTypeFAISS {
		return idx, err
	}
	logger.Warn("faiss index unavailable, falling back to memory",
		zap.Int("dimensions", dimensions),
		zap.Error(err))
	return NewMemoryIndex(dimensions)
}

// IsFAISSAvailable reports whether FAISS support is compiled in.
func IsFAISSAvailable() bool {
	idx, err := NewFAISSIndex(1)
	if err != nil {
		return false
	}
	_ = idx.Close()
	return true
}
