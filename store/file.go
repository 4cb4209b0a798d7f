package store

import (
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"pdfrag/model"
	"pdfrag/types"
)

const indexFileName = "index.gob"

// snapshot is the on-disk shape of a built index. ModelInfo records the
// embedding model identity so a store built with one model is never
// queried with another.
type snapshot struct {
	Vectors   []types.IndexedVector
	ModelInfo string
	Dimension int
}

// FileStore keeps the whole index in memory and persists it as a gob
// snapshot under the storage directory. Read-only after Load, so it is
// safe to share across concurrent request goroutines.
type FileStore struct {
	dir      string
	embedder model.Embedder

	vectors   []types.IndexedVector
	dimension int
	modelInfo string
}

func NewFileStore(dir string, embedder model.Embedder) *FileStore {
	return &FileStore{dir: dir, embedder: embedder}
}

// Build embeds every page and replaces the persisted snapshot
// wholesale. Pages with no text are legal and get a zero vector, so the
// vector count always equals the page count.
func (s *FileStore) Build(ctx context.Context, pages []types.Page) error {
	vectors, dim, err := embedPages(ctx, s.embedder, pages)
	if err != nil {
		return err
	}

	snap := snapshot{
		Vectors:   vectors,
		ModelInfo: s.embedder.ModelInfo(),
		Dimension: dim,
	}
	if err := s.persist(snap); err != nil {
		return err
	}

	s.vectors = snap.Vectors
	s.dimension = snap.Dimension
	s.modelInfo = snap.ModelInfo
	return nil
}

func (s *FileStore) persist(snap snapshot) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating storage dir: %w", err)
	}

	path := filepath.Join(s.dir, indexFileName)
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}

	if err := gob.NewEncoder(file).Encode(snap); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := file.Close(); err != nil {
		return err
	}

	// Atomic replace so a crashed build never leaves a torn index.
	return os.Rename(tmp, path)
}

// Load reconstructs query-ready state from the persisted snapshot
// without re-embedding. A missing snapshot is ErrStoreNotFound, never a
// silently empty store.
func (s *FileStore) Load(_ context.Context) error {
	path := filepath.Join(s.dir, indexFileName)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w (looked in %s)", ErrStoreNotFound, s.dir)
		}
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer file.Close()

	var snap snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return fmt.Errorf("decoding snapshot %s: %w", path, err)
	}

	if want := s.embedder.ModelInfo(); snap.ModelInfo != want {
		return fmt.Errorf("index was built with embedding model %q but %q is configured", snap.ModelInfo, want)
	}

	s.vectors = snap.Vectors
	s.dimension = snap.Dimension
	s.modelInfo = snap.ModelInfo
	return nil
}

// Search scans all vectors and returns the k best matches, score
// descending with insertion-order ties.
func (s *FileStore) Search(_ context.Context, vector []float32, k int) ([]types.Match, error) {
	if k <= 0 {
		return nil, ErrInvalidTopK
	}
	if s.dimension != 0 && len(vector) != s.dimension {
		return nil, fmt.Errorf("query vector has dimension %d, index has %d", len(vector), s.dimension)
	}

	scores := make([]float32, len(s.vectors))
	for i := range s.vectors {
		scores[i] = CosineSimilarity(vector, s.vectors[i].Embedding)
	}

	matches := make([]types.Match, 0, k)
	for _, i := range TopK(scores, k) {
		matches = append(matches, types.Match{
			Content:  s.vectors[i].Page.Content,
			Metadata: s.vectors[i].Page.Metadata,
			Score:    scores[i],
		})
	}
	return matches, nil
}

// Len reports how many vectors the store holds.
func (s *FileStore) Len() int { return len(s.vectors) }
