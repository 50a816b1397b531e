package driven

import (
	"context"

	"github.com/0xKoller/orquel-sub001/internal/core/domain"
)

// Reranker applies a secondary relevance-ordering pass to retrieved
// chunks. This is an optional collaborator.
type Reranker interface {
	// Rerank returns a permutation of input indices in new relevance
	// order: element i of the result names the input position that
	// should appear at rank i. The orchestrator validates that the
	// returned slice is a bijection over 0..len(chunks)-1.
	Rerank(ctx context.Context, query string, chunks []domain.Chunk) ([]int, error)

	// Close releases resources.
	Close() error
}
