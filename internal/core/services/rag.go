package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/0xKoller/orquel-sub001/internal/chunker"
	"github.com/0xKoller/orquel-sub001/internal/core/domain"
	"github.com/0xKoller/orquel-sub001/internal/core/ports/driven"
	"github.com/0xKoller/orquel-sub001/internal/core/ports/driving"
	"github.com/0xKoller/orquel-sub001/internal/fusion"
	"github.com/0xKoller/orquel-sub001/internal/logger"
)

// Ensure RAGService implements the interface.
var _ driving.RAGService = (*RAGService)(nil)

// Config is the caller-owned configuration for a RAGService. The
// service holds no hidden module-level state; callers construct the
// collaborators and pass them in explicitly.
type Config struct {
	// Chunker splits ingested content. Defaults to chunker.New() when nil.
	Chunker *chunker.Chunker

	// Embedder generates embeddings (required for Index and Query).
	Embedder driven.EmbeddingService

	// VectorStore holds embeddings (required for Index and Query).
	VectorStore driven.VectorStore

	// LexicalStore enables hybrid search (optional).
	LexicalStore driven.LexicalStore

	// Reranker enables the secondary ordering pass (optional).
	Reranker driven.Reranker

	// Answerer enables answer generation (optional).
	Answerer driven.Answerer

	// DenseWeight and LexicalWeight tune hybrid fusion. When both are
	// zero the defaults (0.65 / 0.35) apply.
	DenseWeight   float64
	LexicalWeight float64
}

// RAGService composes the chunker, the fusion step, and the injected
// collaborators into the four pipeline operations: Ingest, Index,
// Query, Answer. Each call is stateless with respect to the service
// itself; all persistent state lives in the store collaborators, so a
// single instance is safe to share across concurrent calls as long as
// its collaborators are.
type RAGService struct {
	chunker       *chunker.Chunker
	embedder      driven.EmbeddingService
	vectorStore   driven.VectorStore
	lexicalStore  driven.LexicalStore
	reranker      driven.Reranker
	answerer      driven.Answerer
	denseWeight   float64
	lexicalWeight float64
}

// NewRAGService creates the pipeline service from a caller-owned config.
func NewRAGService(cfg Config) *RAGService {
	c := cfg.Chunker
	if c == nil {
		c = chunker.New()
	}

	dw, lw := cfg.DenseWeight, cfg.LexicalWeight
	if dw == 0 && lw == 0 {
		dw, lw = domain.DefaultDenseWeight, domain.DefaultLexicalWeight
	}

	return &RAGService{
		chunker:       c,
		embedder:      cfg.Embedder,
		vectorStore:   cfg.VectorStore,
		lexicalStore:  cfg.LexicalStore,
		reranker:      cfg.Reranker,
		answerer:      cfg.Answerer,
		denseWeight:   dw,
		lexicalWeight: lw,
	}
}

// Ingest chunks the content and stamps every chunk with the source
// descriptor. Chunking itself is synchronous; the context is accepted
// for interface uniformity with the I/O-bound operations.
func (s *RAGService) Ingest(
	_ context.Context, source *domain.SourceDescriptor, content string,
) (*domain.IngestResult, error) {
	if source == nil || source.Title == "" {
		return nil, fmt.Errorf("ingest: source title: %w", domain.ErrInvalidInput)
	}

	logger.Section("Ingest")
	logger.Debug("Source: %q (kind=%s)", source.Title, source.Kind)

	chunks := s.chunker.Chunk(content, source)

	normalized := chunker.Normalize(content)
	sourceID := slugify(source.Title) + "-" + chunker.Fingerprint(normalized)[:8]

	logger.Info("Ingested %d chunks from %q", len(chunks), source.Title)

	return &domain.IngestResult{
		SourceID: sourceID,
		Chunks:   chunks,
	}, nil
}

// Index embeds all chunk texts in one batched call, upserts the
// resulting rows into the vector store, and indexes the raw chunks
// into the lexical store when one is configured. The two writes are
// independent: a lexical failure after a successful upsert leaves the
// stores out of sync and surfaces the lexical error to the caller.
func (s *RAGService) Index(ctx context.Context, chunks []domain.Chunk) error {
	if s.embedder == nil {
		return fmt.Errorf("index: %w", domain.ErrEmbeddingUnavailable)
	}
	if s.vectorStore == nil {
		return fmt.Errorf("index: %w", domain.ErrVectorStoreUnavailable)
	}
	if len(chunks) == 0 {
		return nil
	}

	logger.Section("Index")
	defer logger.Stage("index pipeline")()
	logger.Debug("Embedding %d chunks with %s", len(chunks), s.embedder.ModelName())

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	// Positional pairing: vector i belongs to chunk i. A count
	// mismatch would silently attach vectors to the wrong chunks.
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embed chunks: got %d embeddings for %d chunks: %w",
			len(embeddings), len(chunks), domain.ErrInvalidInput)
	}

	rows := make([]driven.VectorRow, len(chunks))
	for i := range chunks {
		rows[i] = driven.VectorRow{Chunk: chunks[i], Embedding: embeddings[i]}
	}

	if err := s.vectorStore.Upsert(ctx, rows); err != nil {
		return fmt.Errorf("vector upsert: %w", err)
	}
	logger.Debug("Upserted %d vectors", len(rows))

	if s.lexicalStore != nil {
		if err := s.lexicalStore.Index(ctx, chunks); err != nil {
			return fmt.Errorf("lexical index: %w", err)
		}
		logger.Debug("Indexed %d chunks lexically", len(chunks))
	}

	return nil
}

// Query retrieves the chunks most relevant to q. Hybrid mode runs the
// dense and lexical searches concurrently and fuses the two result
// sets; without a lexical store it degrades to dense-only search.
func (s *RAGService) Query(
	ctx context.Context, q string, opts domain.QueryOptions,
) ([]domain.ScoredChunk, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []domain.ScoredChunk{}, nil
	}

	k := opts.K
	if k <= 0 {
		k = domain.DefaultQueryK
	}

	logger.Section("Query")
	defer logger.Stage("retrieval")()
	logger.Debug("Query: %q, k=%d, hybrid=%t, rerank=%t", q, k, opts.Hybrid, opts.Rerank)

	var results []domain.ScoredChunk
	var err error

	if opts.Hybrid && s.lexicalStore != nil {
		results, err = s.hybridSearch(ctx, q, k)
	} else {
		results, err = s.denseSearch(ctx, q, k)
	}
	if err != nil {
		return nil, err
	}

	if opts.Rerank && s.reranker != nil {
		results, err = s.rerank(ctx, q, results)
		if err != nil {
			return nil, err
		}
	}

	logger.Info("Query returned %d results", len(results))
	return results, nil
}

// Answer retrieves context for q and generates a grounded answer.
// It fails fast when no answerer is configured, before any I/O.
func (s *RAGService) Answer(
	ctx context.Context, q string, opts domain.AnswerOptions,
) (*domain.Answer, error) {
	if s.answerer == nil {
		return nil, fmt.Errorf("answer: %w", domain.ErrAnswererUnavailable)
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = domain.DefaultAnswerK
	}

	results, err := s.Query(ctx, q, domain.QueryOptions{
		K:      topK,
		Hybrid: opts.Hybrid,
		Rerank: opts.Rerank,
	})
	if err != nil {
		return nil, err
	}

	contexts := make([]domain.Chunk, len(results))
	for i := range results {
		contexts[i] = results[i].Chunk
	}

	logger.Section("Answer Generation")
	defer logger.Stage("answer generation")()
	logger.Debug("Generating with %s over %d context chunks", s.answerer.ModelName(), len(contexts))

	text, err := s.answerer.Answer(ctx, driven.AnswerRequest{Query: q, Contexts: contexts})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{Text: text, Contexts: results}, nil
}

// denseSearch embeds the query and searches the vector store.
func (s *RAGService) denseSearch(ctx context.Context, q string, k int) ([]domain.ScoredChunk, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("query: %w", domain.ErrEmbeddingUnavailable)
	}
	if s.vectorStore == nil {
		return nil, fmt.Errorf("query: %w", domain.ErrVectorStoreUnavailable)
	}

	embedding, err := s.embedder.Embed(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.vectorStore.Search(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	logger.Debug("Dense search: %d hits", len(hits))
	return hits, nil
}

// hybridSearch runs dense and lexical searches concurrently, then
// fuses the result sets. The searches are order-independent; the merge
// waits on both.
func (s *RAGService) hybridSearch(ctx context.Context, q string, k int) ([]domain.ScoredChunk, error) {
	var dense, lexical []domain.ScoredChunk

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		dense, err = s.denseSearch(gctx, q, k)
		return err
	})

	g.Go(func() error {
		hits, err := s.lexicalStore.Search(gctx, q, k)
		if err != nil {
			return fmt.Errorf("lexical search: %w", err)
		}
		logger.Debug("Lexical search: %d hits", len(hits))
		lexical = hits
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := fusion.Merge(dense, lexical, k, s.denseWeight, s.lexicalWeight)
	logger.Debug("Fused %d dense + %d lexical hits into %d results",
		len(dense), len(lexical), len(merged))

	return merged, nil
}

// rerank applies the secondary ordering pass. The returned index list
// is validated as a bijection over the input before it is trusted.
func (s *RAGService) rerank(
	ctx context.Context, q string, results []domain.ScoredChunk,
) ([]domain.ScoredChunk, error) {
	if len(results) == 0 {
		return results, nil
	}

	chunks := make([]domain.Chunk, len(results))
	for i := range results {
		chunks[i] = results[i].Chunk
	}

	perm, err := s.reranker.Rerank(ctx, q, chunks)
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}

	if err := validatePermutation(perm, len(results)); err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}

	reordered := make([]domain.ScoredChunk, len(results))
	for rank, idx := range perm {
		reordered[rank] = results[idx]
	}

	logger.Debug("Reranked %d results", len(reordered))
	return reordered, nil
}

// validatePermutation rejects index lists that are not a bijection
// over 0..n-1: wrong length, out-of-range entries, or duplicates.
func validatePermutation(perm []int, n int) error {
	if len(perm) != n {
		return fmt.Errorf("%w: got %d indices for %d results",
			domain.ErrInvalidPermutation, len(perm), n)
	}
	seen := make([]bool, n)
	for _, idx := range perm {
		if idx < 0 || idx >= n {
			return fmt.Errorf("%w: index %d out of range", domain.ErrInvalidPermutation, idx)
		}
		if seen[idx] {
			return fmt.Errorf("%w: duplicate index %d", domain.ErrInvalidPermutation, idx)
		}
		seen[idx] = true
	}
	return nil
}

// slugify lowercases the title and replaces whitespace runs with
// hyphens for use in source identifiers.
func slugify(title string) string {
	fields := strings.Fields(strings.ToLower(title))
	return strings.Join(fields, "-")
}
