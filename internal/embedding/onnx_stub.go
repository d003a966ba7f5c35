//go:build !cgo
// +build !cgo

package embedding

import (
	"context"
	"errors"
)

var errONNXUnavailable = errors.New("onnx provider needs a cgo build with the onnxruntime library; use the openai or hash provider instead")

// ONNXEmbedder is unavailable in builds without cgo; every method fails.
type ONNXEmbedder struct{}

func NewONNXEmbedder(string, int, int) (*ONNXEmbedder, error) {
	return nil, errONNXUnavailable
}

func (*ONNXEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errONNXUnavailable
}

func (*ONNXEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, errONNXUnavailable
}

func (*ONNXEmbedder) Dimensions() int { return 0 }
func (*ONNXEmbedder) Identity() string { return ProviderONNX }
func (*ONNXEmbedder) Close() error { return nil }
