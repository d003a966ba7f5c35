//go:build !faiss || !cgo
// +build !faiss !cgo

package vector

import (
	"context"
	"errors"
)

var errFAISSUnavailable = errors.New("faiss index not compiled in: rebuild with -tags=faiss and libfaiss_c installed")

// FAISSIndex stands in for the FAISS-backed index in builds without the faiss
// tag. NewFAISSIndex always fails, so NewFromConfig falls back to MemoryIndex.
type FAISSIndex struct{}

func NewFAISSIndex(int) (*FAISSIndex, error) {
	return nil, errFAISSUnavailable
}

func (*FAISSIndex) Add(context.Context, []float32) (int, error) {
	return 0, errFAISSUnavailable
}

func (*FAISSIndex) Search(context.Context, []float32, int) ([]*VectorResult, error) {
	return nil, errFAISSUnavailable
}

func (*FAISSIndex) Truncate(int) error { return errFAISSUnavailable }
func (*FAISSIndex) Save(string) error { return errFAISSUnavailable }
func (*FAISSIndex) Load(string) error { return errFAISSUnavailable }
func (*FAISSIndex) Size() int { return 0 }
func (*FAISSIndex) Dimensions() int { return 0 }
func (*FAISSIndex) Close() error { return nil }
func (*FAISSIndex) Type() string { return string(IndexTypeFAISS) }
