package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	"pdfrag/model"
	"pdfrag/types"
)

var (
	// ErrStoreNotFound means no index exists at the configured location.
	// A missing store is a configuration error, not an empty corpus.
	ErrStoreNotFound = errors.New("vector store not found, run the indexer first")

	// ErrInvalidTopK rejects k <= 0 before any search work happens.
	ErrInvalidTopK = errors.New("top-k must be a positive integer")
)

// VectorStorer persists embedded pages and answers top-k similarity
// queries. Build replaces the persisted store wholesale; Load
// reconstructs query-ready state without re-embedding.
type VectorStorer interface {
	Build(ctx context.Context, pages []types.Page) error
	Load(ctx context.Context) error
	Search(ctx context.Context, vector []float32, k int) ([]types.Match, error)
}

// embedPages turns every page into an IndexedVector via the shared
// embedder. Pages with no text get a zero vector of the corpus
// dimension, so the vector count always equals the page count.
func embedPages(ctx context.Context, embedder model.Embedder, pages []types.Page) ([]types.IndexedVector, int, error) {
	vectors := make([]types.IndexedVector, 0, len(pages))
	var blank []int
	dim := 0

	for i, page := range pages {
		var vec []float32
		if strings.TrimSpace(page.Content) == "" {
			blank = append(blank, i)
		} else {
			var err error
			vec, err = embedder.Embed(ctx, page.Content)
			if err != nil {
				return nil, 0, fmt.Errorf("embedding page %s of %s: %w",
					page.Metadata[types.MetaPageLabel], page.Metadata[types.MetaFileName], err)
			}
			dim = len(vec)
		}
		vectors = append(vectors, types.IndexedVector{
			ID:        uuid.New(),
			Page:      page,
			Embedding: vec,
		})
	}

	if dim == 0 {
		dim = embedder.Dimension()
	}
	if dim == 0 && len(blank) < len(vectors) {
		return nil, 0, fmt.Errorf("could not determine embedding dimension")
	}
	for _, i := range blank {
		vectors[i].Embedding = make([]float32, dim)
	}
	return vectors, dim, nil
}

// CosineSimilarity of two vectors. Stored vectors are L2-normalized,
// so for them this is just the dot product, but the full form keeps the
// function correct for arbitrary input.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float32
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(na))) * float32(math.Sqrt(float64(nb))))
}

// TopK returns the indices of the k highest scores, best first.
// Ties keep their original insertion order, which makes retrieval
// deterministic for a fixed store and query.
func TopK(scores []float32, k int) []int {
	idxs := make([]int, len(scores))
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(i, j int) bool {
		return scores[idxs[i]] > scores[idxs[j]]
	})
	if k < len(idxs) {
		idxs = idxs[:k]
	}
	return idxs
}
