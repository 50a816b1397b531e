package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xKoller/orquel-sub001/internal/core/domain"
	"github.com/0xKoller/orquel-sub001/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService for testing.
type mockEmbedder struct {
	batchCalls    int
	batchTexts    []string
	batchOverride [][]float32
	embedErr      error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batchCalls++
	m.batchTexts = texts
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.batchOverride != nil {
		return m.batchOverride, nil
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return 2 }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockVectorStore implements driven.VectorStore for testing.
type mockVectorStore struct {
	upserted  []driven.VectorRow
	hits      []domain.ScoredChunk
	lastK     int
	upsertErr error
	searchErr error
}

func (m *mockVectorStore) Upsert(_ context.Context, rows []driven.VectorRow) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, rows...)
	return nil
}

func (m *mockVectorStore) Search(_ context.Context, _ []float32, k int) ([]domain.ScoredChunk, error) {
	m.lastK = k
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k < len(m.hits) {
		return m.hits[:k], nil
	}
	return m.hits, nil
}

func (m *mockVectorStore) Close() error { return nil }

// mockLexicalStore implements driven.LexicalStore for testing.
type mockLexicalStore struct {
	indexed   []domain.Chunk
	hits      []domain.ScoredChunk
	indexErr  error
	searchErr error
}

func (m *mockLexicalStore) Index(_ context.Context, chunks []domain.Chunk) error {
	if m.indexErr != nil {
		return m.indexErr
	}
	m.indexed = append(m.indexed, chunks...)
	return nil
}

func (m *mockLexicalStore) Search(_ context.Context, _ string, k int) ([]domain.ScoredChunk, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k < len(m.hits) {
		return m.hits[:k], nil
	}
	return m.hits, nil
}

func (m *mockLexicalStore) Close() error { return nil }

// mockReranker implements driven.Reranker for testing.
type mockReranker struct {
	perm []int
	err  error
}

func (m *mockReranker) Rerank(_ context.Context, _ string, _ []domain.Chunk) ([]int, error) {
	return m.perm, m.err
}

func (m *mockReranker) Close() error { return nil }

// mockAnswerer implements driven.Answerer for testing.
type mockAnswerer struct {
	text    string
	err     error
	lastReq driven.AnswerRequest
}

func (m *mockAnswerer) Answer(_ context.Context, req driven.AnswerRequest) (string, error) {
	m.lastReq = req
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

func (m *mockAnswerer) ModelName() string            { return "mock-llm" }
func (m *mockAnswerer) Ping(_ context.Context) error { return nil }
func (m *mockAnswerer) Close() error                 { return nil }

func testChunk(id, text string) domain.Chunk {
	return domain.Chunk{ID: id, Text: text, Metadata: domain.ChunkMetadata{Hash: id}}
}

func scoredChunk(id string, score float64) domain.ScoredChunk {
	return domain.ScoredChunk{Chunk: testChunk(id, "text-"+id), Score: score}
}

// --- Ingest ---

func TestIngest_RequiresTitle(t *testing.T) {
	svc := NewRAGService(Config{})

	_, err := svc.Ingest(context.Background(), nil, "content")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Ingest(context.Background(), &domain.SourceDescriptor{}, "content")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngest_StampsSource(t *testing.T) {
	svc := NewRAGService(Config{})
	source := &domain.SourceDescriptor{Title: "My Doc"}

	result, err := svc.Ingest(context.Background(), source, "Short text.")
	require.NoError(t, err)
	require.Len(t, result.Chunks, 1)

	assert.Same(t, source, result.Chunks[0].Metadata.Source)
	assert.Equal(t, "Short text.", result.Chunks[0].Text)
}

func TestIngest_SourceIDContentScoped(t *testing.T) {
	svc := NewRAGService(Config{})
	ctx := context.Background()
	source := &domain.SourceDescriptor{Title: "Release Notes"}

	a, err := svc.Ingest(ctx, source, "first version")
	require.NoError(t, err)
	b, err := svc.Ingest(ctx, source, "first version")
	require.NoError(t, err)
	c, err := svc.Ingest(ctx, source, "second version")
	require.NoError(t, err)

	// Same title + same content: stable identifier.
	assert.Equal(t, a.SourceID, b.SourceID)
	// Same title + different content: no collision.
	assert.NotEqual(t, a.SourceID, c.SourceID)
	assert.Contains(t, a.SourceID, "release-notes-")
}

// --- Index ---

func TestIndex_RequiresCollaborators(t *testing.T) {
	svc := NewRAGService(Config{})
	err := svc.Index(context.Background(), []domain.Chunk{testChunk("a", "x")})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	svc = NewRAGService(Config{Embedder: &mockEmbedder{}})
	err = svc.Index(context.Background(), []domain.Chunk{testChunk("a", "x")})
	assert.ErrorIs(t, err, domain.ErrVectorStoreUnavailable)
}

func TestIndex_EmptyChunksIsNoop(t *testing.T) {
	embedder := &mockEmbedder{}
	svc := NewRAGService(Config{Embedder: embedder, VectorStore: &mockVectorStore{}})

	require.NoError(t, svc.Index(context.Background(), nil))
	assert.Zero(t, embedder.batchCalls)
}

func TestIndex_SingleBatchPositionalPairing(t *testing.T) {
	embedder := &mockEmbedder{}
	store := &mockVectorStore{}
	svc := NewRAGService(Config{Embedder: embedder, VectorStore: store})

	chunks := []domain.Chunk{
		testChunk("c0", "alpha"),
		testChunk("c1", "beta"),
		testChunk("c2", "gamma"),
	}

	require.NoError(t, svc.Index(context.Background(), chunks))

	// All texts embedded in one call, in input order.
	assert.Equal(t, 1, embedder.batchCalls)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, embedder.batchTexts)

	// Vector i pairs with chunk i.
	require.Len(t, store.upserted, 3)
	for i, row := range store.upserted {
		assert.Equal(t, chunks[i].ID, row.Chunk.ID)
		assert.Equal(t, []float32{float32(i), 1}, row.Embedding)
	}
}

func TestIndex_EmbeddingCountMismatch(t *testing.T) {
	embedder := &mockEmbedder{batchOverride: [][]float32{{1, 2}}}
	svc := NewRAGService(Config{Embedder: embedder, VectorStore: &mockVectorStore{}})

	chunks := []domain.Chunk{testChunk("a", "x"), testChunk("b", "y")}
	err := svc.Index(context.Background(), chunks)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed chunks")
}

func TestIndex_StageErrorsIdentifyStage(t *testing.T) {
	boom := errors.New("boom")

	t.Run("embedding failure", func(t *testing.T) {
		svc := NewRAGService(Config{
			Embedder:    &mockEmbedder{embedErr: boom},
			VectorStore: &mockVectorStore{},
		})
		err := svc.Index(context.Background(), []domain.Chunk{testChunk("a", "x")})
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "embed chunks")
	})

	t.Run("vector upsert failure", func(t *testing.T) {
		svc := NewRAGService(Config{
			Embedder:    &mockEmbedder{},
			VectorStore: &mockVectorStore{upsertErr: boom},
		})
		err := svc.Index(context.Background(), []domain.Chunk{testChunk("a", "x")})
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "vector upsert")
	})

	t.Run("lexical index failure", func(t *testing.T) {
		store := &mockVectorStore{}
		svc := NewRAGService(Config{
			Embedder:     &mockEmbedder{},
			VectorStore:  store,
			LexicalStore: &mockLexicalStore{indexErr: boom},
		})
		err := svc.Index(context.Background(), []domain.Chunk{testChunk("a", "x")})
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "lexical index")
		// The dual write is not transactional: the vector write stands.
		assert.Len(t, store.upserted, 1)
	})
}

func TestIndex_WritesBothStores(t *testing.T) {
	vector := &mockVectorStore{}
	lexical := &mockLexicalStore{}
	svc := NewRAGService(Config{
		Embedder:     &mockEmbedder{},
		VectorStore:  vector,
		LexicalStore: lexical,
	})

	chunks := []domain.Chunk{testChunk("a", "x"), testChunk("b", "y")}
	require.NoError(t, svc.Index(context.Background(), chunks))

	assert.Len(t, vector.upserted, 2)
	assert.Len(t, lexical.indexed, 2)
}

// --- Query ---

func TestQuery_EmptyQuery(t *testing.T) {
	svc := NewRAGService(Config{Embedder: &mockEmbedder{}, VectorStore: &mockVectorStore{}})

	results, err := svc.Query(context.Background(), "   ", domain.QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestQuery_DenseOnly(t *testing.T) {
	store := &mockVectorStore{hits: []domain.ScoredChunk{
		scoredChunk("a", 0.9),
		scoredChunk("b", 0.4),
	}}
	svc := NewRAGService(Config{Embedder: &mockEmbedder{}, VectorStore: store})

	results, err := svc.Query(context.Background(), "question", domain.QueryOptions{K: 5})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Chunk.ID)
	assert.Equal(t, 5, store.lastK)
}

func TestQuery_DefaultK(t *testing.T) {
	store := &mockVectorStore{}
	svc := NewRAGService(Config{Embedder: &mockEmbedder{}, VectorStore: store})

	_, err := svc.Query(context.Background(), "question", domain.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultQueryK, store.lastK)
}

func TestQuery_HybridFusesResults(t *testing.T) {
	// Dense normalised: a=1, b=0. Lexical normalised: b=1, c=0.
	vector := &mockVectorStore{hits: []domain.ScoredChunk{
		scoredChunk("a", 0.9),
		scoredChunk("b", 0.5),
	}}
	lexical := &mockLexicalStore{hits: []domain.ScoredChunk{
		scoredChunk("b", 10),
		scoredChunk("c", 2),
	}}
	svc := NewRAGService(Config{
		Embedder:     &mockEmbedder{},
		VectorStore:  vector,
		LexicalStore: lexical,
	})

	results, err := svc.Query(context.Background(), "question", domain.QueryOptions{K: 3, Hybrid: true})
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].Chunk.ID)
	assert.InDelta(t, 0.65, results[0].Score, 1e-9)
	assert.Equal(t, "b", results[1].Chunk.ID)
	assert.InDelta(t, 0.35, results[1].Score, 1e-9)
	assert.Equal(t, "c", results[2].Chunk.ID)
}

func TestQuery_HybridWithoutLexicalStoreDegrades(t *testing.T) {
	store := &mockVectorStore{hits: []domain.ScoredChunk{scoredChunk("a", 0.8)}}
	svc := NewRAGService(Config{Embedder: &mockEmbedder{}, VectorStore: store})

	results, err := svc.Query(context.Background(), "question", domain.QueryOptions{K: 3, Hybrid: true})
	require.NoError(t, err)

	require.Len(t, results, 1)
	// Dense-only path leaves the raw similarity untouched.
	assert.Equal(t, 0.8, results[0].Score)
}

func TestQuery_LexicalFailureSurfaces(t *testing.T) {
	boom := errors.New("index corrupted")
	svc := NewRAGService(Config{
		Embedder:     &mockEmbedder{},
		VectorStore:  &mockVectorStore{},
		LexicalStore: &mockLexicalStore{searchErr: boom},
	})

	_, err := svc.Query(context.Background(), "question", domain.QueryOptions{Hybrid: true})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "lexical search")
}

func TestQuery_Rerank(t *testing.T) {
	store := &mockVectorStore{hits: []domain.ScoredChunk{
		scoredChunk("a", 0.9),
		scoredChunk("b", 0.8),
		scoredChunk("c", 0.7),
	}}

	t.Run("valid permutation reorders", func(t *testing.T) {
		svc := NewRAGService(Config{
			Embedder:    &mockEmbedder{},
			VectorStore: store,
			Reranker:    &mockReranker{perm: []int{2, 0, 1}},
		})

		results, err := svc.Query(context.Background(), "question", domain.QueryOptions{K: 3, Rerank: true})
		require.NoError(t, err)

		require.Len(t, results, 3)
		assert.Equal(t, "c", results[0].Chunk.ID)
		assert.Equal(t, "a", results[1].Chunk.ID)
		assert.Equal(t, "b", results[2].Chunk.ID)
	})

	invalid := [][]int{
		{0, 1},     // wrong length
		{0, 1, 3},  // out of range
		{0, 0, 1},  // duplicate
		{-1, 0, 1}, // negative
	}
	for i, perm := range invalid {
		t.Run(fmt.Sprintf("invalid permutation %d", i), func(t *testing.T) {
			svc := NewRAGService(Config{
				Embedder:    &mockEmbedder{},
				VectorStore: store,
				Reranker:    &mockReranker{perm: perm},
			})

			_, err := svc.Query(context.Background(), "question", domain.QueryOptions{K: 3, Rerank: true})
			assert.ErrorIs(t, err, domain.ErrInvalidPermutation)
		})
	}

	t.Run("no results skips reranker", func(t *testing.T) {
		svc := NewRAGService(Config{
			Embedder:    &mockEmbedder{},
			VectorStore: &mockVectorStore{},
			Reranker:    &mockReranker{err: errors.New("should not be called")},
		})

		results, err := svc.Query(context.Background(), "question", domain.QueryOptions{Rerank: true})
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

// --- Answer ---

func TestAnswer_RequiresAnswerer(t *testing.T) {
	svc := NewRAGService(Config{Embedder: &mockEmbedder{}, VectorStore: &mockVectorStore{}})

	_, err := svc.Answer(context.Background(), "question", domain.AnswerOptions{})
	assert.ErrorIs(t, err, domain.ErrAnswererUnavailable)
}

func TestAnswer_UsesRetrievedContexts(t *testing.T) {
	store := &mockVectorStore{hits: []domain.ScoredChunk{
		scoredChunk("a", 0.9),
		scoredChunk("b", 0.4),
	}}
	answerer := &mockAnswerer{text: "Grounded answer."}
	svc := NewRAGService(Config{
		Embedder:    &mockEmbedder{},
		VectorStore: store,
		Answerer:    answerer,
	})

	answer, err := svc.Answer(context.Background(), "question", domain.AnswerOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Grounded answer.", answer.Text)
	require.Len(t, answer.Contexts, 2)
	assert.Equal(t, "a", answer.Contexts[0].Chunk.ID)

	// Retrieval scores survive into the answer for citation display.
	assert.Equal(t, 0.9, answer.Contexts[0].Score)
	assert.Equal(t, 0.4, answer.Contexts[1].Score)

	// The answerer received the same chunks, query included.
	assert.Equal(t, "question", answerer.lastReq.Query)
	require.Len(t, answerer.lastReq.Contexts, 2)
	for i := range answer.Contexts {
		assert.Equal(t, answer.Contexts[i].Chunk, answerer.lastReq.Contexts[i])
	}

	// Default context budget applies.
	assert.Equal(t, domain.DefaultAnswerK, store.lastK)
}

func TestAnswer_GenerationFailureSurfaces(t *testing.T) {
	boom := errors.New("model overloaded")
	svc := NewRAGService(Config{
		Embedder:    &mockEmbedder{},
		VectorStore: &mockVectorStore{},
		Answerer:    &mockAnswerer{err: boom},
	})

	_, err := svc.Answer(context.Background(), "question", domain.AnswerOptions{})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "generate answer")
}
