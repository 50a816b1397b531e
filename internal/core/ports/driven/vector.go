package driven

import (
	"context"

	"github.com/0xKoller/orquel-sub001/internal/core/domain"
)

// VectorRow is an upsert unit: a chunk together with its embedding.
type VectorRow struct {
	Chunk domain.Chunk

	Embedding []float32
}

// VectorStore persists embeddings and performs dense similarity search.
// The similarity metric is cosine similarity by convention; a zero query
// or stored vector yields similarity 0, not an error.
type VectorStore interface {
	// Upsert inserts or replaces rows keyed by chunk ID.
	Upsert(ctx context.Context, rows []VectorRow) error

	// Search returns the k most similar chunks to the query vector,
	// sorted descending by similarity. Ties are broken deterministically.
	Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error)

	// Close releases resources.
	Close() error
}
