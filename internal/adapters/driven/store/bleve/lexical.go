// Package bleve provides a lexical store backed by a bleve full-text
// index, either in-memory or persisted on disk.
package bleve

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"

	"github.com/0xKoller/orquel-sub001/internal/core/domain"
	"github.com/0xKoller/orquel-sub001/internal/core/ports/driven"
)

// Ensure LexicalStore implements the interface.
var _ driven.LexicalStore = (*LexicalStore)(nil)

// indexDoc is the flat document shape stored in the index. Chunks are
// flattened so bleve can analyze and return every field without a
// side lookup on search.
type indexDoc struct {
	Text       string `json:"text"`
	Title      string `json:"title"`
	Kind       string `json:"kind"`
	URL        string `json:"url"`
	ChunkIndex int    `json:"chunk_index"`
	Hash       string `json:"hash"`
	Tokens     int    `json:"tokens"`
}

// LexicalStore is a driven.LexicalStore implementation over a bleve
// index. Match queries analyze the query text with the same analyzer
// as the indexed documents, so scoring is tf-idf style rather than
// exact substring matching.
type LexicalStore struct {
	index bleve.Index
}

// NewMemOnly creates a lexical store over an in-memory bleve index.
func NewMemOnly() (*LexicalStore, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create in-memory index: %w", err)
	}
	return &LexicalStore{index: index}, nil
}

// Open opens the bleve index at path, creating it if it does not
// exist.
func Open(path string) (*LexicalStore, error) {
	index, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		index, err = bleve.New(path, bleve.NewIndexMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("open index at %s: %w", path, err)
	}
	return &LexicalStore{index: index}, nil
}

// Index adds or replaces chunks in the index, keyed by chunk ID.
// Writes go through a single batch so a multi-chunk ingest is applied
// in one segment.
func (s *LexicalStore) Index(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	batch := s.index.NewBatch()
	for _, chunk := range chunks {
		doc := indexDoc{
			Text:       chunk.Text,
			ChunkIndex: chunk.Metadata.ChunkIndex,
			Hash:       chunk.Metadata.Hash,
			Tokens:     chunk.Metadata.Tokens,
		}
		if src := chunk.Metadata.Source; src != nil {
			doc.Title = src.Title
			doc.Kind = src.Kind
			doc.URL = src.URL
		}
		if err := batch.Index(chunk.ID, doc); err != nil {
			return fmt.Errorf("batch chunk %s: %w", chunk.ID, err)
		}
	}

	if err := s.index.Batch(batch); err != nil {
		return fmt.Errorf("apply batch: %w", err)
	}
	return nil
}

// Search runs a match query over the indexed text and returns up to k
// scored chunks, hydrated from the stored fields.
func (s *LexicalStore) Search(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	match := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequest(match)
	req.Size = k
	req.Fields = []string{"*"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]domain.ScoredChunk, 0, len(res.Hits))
	for _, hit := range res.Hits {
		chunk := domain.Chunk{ID: hit.ID}

		if text, ok := hit.Fields["text"].(string); ok {
			chunk.Text = text
		}
		if hash, ok := hit.Fields["hash"].(string); ok {
			chunk.Metadata.Hash = hash
		}
		if idx, ok := hit.Fields["chunk_index"].(float64); ok {
			chunk.Metadata.ChunkIndex = int(idx)
		}
		if tokens, ok := hit.Fields["tokens"].(float64); ok {
			chunk.Metadata.Tokens = int(tokens)
		}

		src := domain.SourceDescriptor{}
		if title, ok := hit.Fields["title"].(string); ok {
			src.Title = title
		}
		if kind, ok := hit.Fields["kind"].(string); ok {
			src.Kind = kind
		}
		if url, ok := hit.Fields["url"].(string); ok {
			src.URL = url
		}
		if src != (domain.SourceDescriptor{}) {
			chunk.Metadata.Source = &src
		}

		hits = append(hits, domain.ScoredChunk{Chunk: chunk, Score: hit.Score})
	}
	return hits, nil
}

// DocCount returns the number of indexed chunks.
func (s *LexicalStore) DocCount() (uint64, error) {
	return s.index.DocCount()
}

// Close closes the underlying index.
func (s *LexicalStore) Close() error {
	return s.index.Close()
}
