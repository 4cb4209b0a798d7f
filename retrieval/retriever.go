package retrieval

import (
	"context"
	"fmt"

	"pdfrag/model"
	"pdfrag/store"
	"pdfrag/types"
)

// Searcher is the slice of the vector store the retriever needs.
type Searcher interface {
	Search(ctx context.Context, vector []float32, k int) ([]types.Match, error)
}

// Retriever embeds a query with the same embedder configuration the
// index was built with and returns the top-k matches, best first.
type Retriever struct {
	embedder model.Embedder
	store    Searcher
}

func New(embedder model.Embedder, searcher Searcher) *Retriever {
	return &Retriever{embedder: embedder, store: searcher}
}

func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]types.Match, error) {
	if k <= 0 {
		return nil, store.ErrInvalidTopK
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	return r.store.Search(ctx, vec, k)
}
