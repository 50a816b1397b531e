package driving

import (
	"context"

	"github.com/0xKoller/orquel-sub001/internal/core/domain"
)

// RAGService exposes the retrieval pipeline to external actors.
type RAGService interface {
	// Ingest chunks the content and stamps every chunk with the source.
	Ingest(ctx context.Context, source *domain.SourceDescriptor, content string) (*domain.IngestResult, error)

	// Index embeds the chunks in one batch and writes them to the
	// configured stores.
	Index(ctx context.Context, chunks []domain.Chunk) error

	// Query retrieves the chunks most relevant to q.
	Query(ctx context.Context, q string, opts domain.QueryOptions) ([]domain.ScoredChunk, error)

	// Answer generates a grounded answer for q from retrieved context.
	Answer(ctx context.Context, q string, opts domain.AnswerOptions) (*domain.Answer, error)
}
