package mcp

import (
	"context"

	"github.com/0xKoller/orquel-sub001/internal/core/domain"
)

// mockRAGService is a mock implementation of driving.RAGService.
type mockRAGService struct {
	ingestResult *domain.IngestResult
	ingestErr    error

	indexedChunks []domain.Chunk
	indexErr      error

	queryResults []domain.ScoredChunk
	queryOpts    domain.QueryOptions
	queryErr     error

	answer    *domain.Answer
	answerErr error
}

func (m *mockRAGService) Ingest(_ context.Context, _ *domain.SourceDescriptor, _ string) (*domain.IngestResult, error) {
	return m.ingestResult, m.ingestErr
}

func (m *mockRAGService) Index(_ context.Context, chunks []domain.Chunk) error {
	m.indexedChunks = chunks
	return m.indexErr
}

func (m *mockRAGService) Query(_ context.Context, _ string, opts domain.QueryOptions) ([]domain.ScoredChunk, error) {
	m.queryOpts = opts
	return m.queryResults, m.queryErr
}

func (m *mockRAGService) Answer(_ context.Context, _ string, _ domain.AnswerOptions) (*domain.Answer, error) {
	return m.answer, m.answerErr
}
