package driven

import (
	"context"

	"github.com/0xKoller/orquel-sub001/internal/core/domain"
)

// LexicalStore provides keyword/term-based search over chunks.
// This is an optional collaborator - when nil, hybrid queries degrade to
// dense-only search.
type LexicalStore interface {
	// Index adds or updates chunks in the lexical index.
	Index(ctx context.Context, chunks []domain.Chunk) error

	// Search performs a keyword search and returns matching chunks with
	// engine-defined relevance scores, sorted descending.
	Search(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error)

	// Close releases resources.
	Close() error
}
