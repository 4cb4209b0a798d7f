package model

import (
	"context"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"

	"pdfrag/types"
)

// Embedder maps text to a fixed-dimension vector. The same Embedder
// instance (same model identity) must serve both the build and the
// query phase, otherwise similarity scores are meaningless.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
	ModelInfo() string
}

// OpenAIEmbedder talks to an OpenAI-compatible embeddings endpoint.
// The dimension is learned from the first successful call.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
	dim    int
}

func NewOpenAIEmbedder(cfg types.Config) *OpenAIEmbedder {
	oc := openai.DefaultConfig(cfg.LLMAPIKey)
	oc.BaseURL = cfg.LLMBaseURL
	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(oc),
		model:  cfg.EmbeddingModel,
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned for model %s", e.model)
	}

	vec := make([]float32, len(resp.Data[0].Embedding))
	copy(vec, resp.Data[0].Embedding)
	l2normalize(vec)

	if e.dim == 0 {
		e.dim = len(vec)
	}
	return vec, nil
}

func (e *OpenAIEmbedder) Dimension() int { return e.dim }

func (e *OpenAIEmbedder) ModelInfo() string { return e.model }

// l2normalize scales a vector to unit length in place, so cosine
// similarity reduces to a dot product.
func l2normalize(v []float32) {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range v {
		v[i] *= inv
	}
}
