package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Dense (vector) search is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store is not
	// configured. Indexing and dense search are disabled.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrLexicalStoreUnavailable indicates the lexical store is not
	// configured. Hybrid search degrades to dense-only.
	ErrLexicalStoreUnavailable = errors.New("lexical store unavailable")

	// ErrAnswererUnavailable indicates no answer generator is
	// configured. Answer fails fast before any retrieval.
	ErrAnswererUnavailable = errors.New("answerer unavailable")

	// ErrInvalidPermutation indicates a reranker returned indices that
	// are not a bijection over the input positions.
	ErrInvalidPermutation = errors.New("invalid rerank permutation")
)
