package store

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"pdfrag/model"
	"pdfrag/types"
)

// PostgresStore is the pgvector-backed implementation of VectorStorer,
// for corpora too large for a full in-memory scan. Same contract as
// FileStore: build replaces everything, ties break on insertion order.
type PostgresStore struct {
	pool     *pgxpool.Pool
	embedder model.Embedder
}

func NewPostgresStore(ctx context.Context, connStr string, embedder model.Embedder) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool, embedder: embedder}, nil
}

func (p *PostgresStore) Build(ctx context.Context, pages []types.Page) error {
	vectors, dim, err := embedPages(ctx, p.embedder, pages)
	if err != nil {
		return err
	}

	if err := p.createTables(ctx, dim); err != nil {
		return fmt.Errorf("creating index tables: %w", err)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Wholesale replace: a rebuild re-embeds everything.
	if _, err := tx.Exec(ctx, `DELETE FROM pages`); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO index_meta (id, model_info, dimension) VALUES (1, $1, $2)
		 ON CONFLICT (id) DO UPDATE SET model_info = EXCLUDED.model_info, dimension = EXCLUDED.dimension`,
		p.embedder.ModelInfo(), dim); err != nil {
		return err
	}

	for pos, v := range vectors {
		if _, err := tx.Exec(ctx,
			`INSERT INTO pages (id, position, content, metadata, excluded, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			v.ID, pos, v.Page.Content, v.Page.Metadata, v.Page.ExcludedFromPrompt,
			pgvector.NewVector(v.Embedding)); err != nil {
			return fmt.Errorf("inserting page %d: %w", pos, err)
		}
	}

	return tx.Commit(ctx)
}

// Load verifies the index exists and was built with the configured
// embedding model. The data itself stays in Postgres.
func (p *PostgresStore) Load(ctx context.Context) error {
	var modelInfo string
	var dim int
	err := p.pool.QueryRow(ctx, `SELECT model_info, dimension FROM index_meta WHERE id = 1`).
		Scan(&modelInfo, &dim)
	if err != nil {
		return fmt.Errorf("%w (postgres backend)", ErrStoreNotFound)
	}
	if want := p.embedder.ModelInfo(); modelInfo != want {
		return fmt.Errorf("index was built with embedding model %q but %q is configured", modelInfo, want)
	}
	return nil
}

func (p *PostgresStore) Search(ctx context.Context, vector []float32, k int) ([]types.Match, error) {
	if k <= 0 {
		return nil, ErrInvalidTopK
	}

	// Cosine distance operator; secondary sort on position keeps ties
	// in insertion order.
	rows, err := p.pool.Query(ctx,
		`SELECT content, metadata, 1 - (embedding <=> $1) AS score
		 FROM pages
		 ORDER BY embedding <=> $1, position
		 LIMIT $2`,
		pgvector.NewVector(vector), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []types.Match
	for rows.Next() {
		var m types.Match
		if err := rows.Scan(&m.Content, &m.Metadata, &m.Score); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (p *PostgresStore) createTables(ctx context.Context, dim int) error {
	query := fmt.Sprintf(`
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS index_meta (
		id INT PRIMARY KEY,
		model_info TEXT NOT NULL,
		dimension INT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pages (
		id UUID PRIMARY KEY,
		position INT NOT NULL,
		content TEXT NOT NULL,
		metadata JSONB NOT NULL,
		excluded TEXT[],
		embedding vector(%d)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_embedding ON pages USING ivfflat (embedding vector_cosine_ops)
	WITH (lists = 100);
	`, dim)
	_, err := p.pool.Exec(ctx, query)
	return err
}

func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
		log.Println("postgres connection pool closed")
	}
	return nil
}
