package domain

import "time"

// SourceDescriptor identifies the document a chunk came from.
// It is owned by the caller of Ingest; every chunk produced from one
// ingest call holds the same shared reference, never a private copy.
type SourceDescriptor struct {
	// Title is the human-readable identifier (required).
	// It participates in chunk ID derivation.
	Title string

	// Kind is the content type hint, e.g. "markdown" or "text".
	// Markdown sources are split at ATX headings during chunking.
	Kind string

	// URL is the original location, if any.
	URL string

	// Author is the document author, if known.
	Author string

	// CreatedAt is when the source document was created.
	CreatedAt time.Time

	// UpdatedAt is when the source document was last modified.
	UpdatedAt time.Time
}

// SourceKindMarkdown marks sources whose structure follows markdown
// heading syntax.
const SourceKindMarkdown = "markdown"

// ChunkMetadata carries per-chunk bookkeeping produced during chunking.
type ChunkMetadata struct {
	// Source points at the owning document descriptor. Shared across
	// all chunks from the same ingest call.
	Source *SourceDescriptor

	// ChunkIndex is the zero-based emission position within one
	// chunking pass. Deduplication may leave gaps; indices are never
	// renumbered.
	ChunkIndex int

	// Hash is the content fingerprint: the first 16 hex characters of
	// the SHA-256 digest of the chunk text. Used for exact-duplicate
	// detection within a single chunking pass.
	Hash string

	// Tokens is an optional token count. The chunker does not compute
	// it; downstream embedding adapters may fill it in.
	Tokens int
}

// Chunk is the atomic unit of indexing and retrieval: a bounded segment
// of a document's text plus metadata. Chunks are immutable once produced;
// the orchestrator only stamps the Source reference when combining chunks
// with ingest arguments.
type Chunk struct {
	// ID is derived deterministically from the source title, the chunk
	// position, and the content hash. Unique within one ingestion run.
	ID string

	// Text is the chunk content, trimmed of outer whitespace.
	Text string

	// Metadata holds position, fingerprint, and source bookkeeping.
	Metadata ChunkMetadata
}

// ScoredChunk pairs a chunk with a relevance score. Score semantics
// depend on origin: raw cosine similarity for dense hits, an
// engine-defined relevance score for lexical hits, and a normalized
// fused score for hybrid output. Ephemeral, never persisted.
type ScoredChunk struct {
	Chunk Chunk

	Score float64
}

// IngestResult is returned by Ingest: the chunks produced from one
// document plus the identifier assigned to the source.
type IngestResult struct {
	// SourceID identifies this ingestion's source. Derived from the
	// source title and a fingerprint of the normalised content, so two
	// ingests of different content under the same title do not collide.
	SourceID string

	// Chunks are the produced chunks in emission order.
	Chunks []Chunk
}
