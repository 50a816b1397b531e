// Package memory provides in-memory store adapters, used as defaults
// and in tests. All state is process-local and lost on exit.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/0xKoller/orquel-sub001/internal/core/domain"
	"github.com/0xKoller/orquel-sub001/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
// Search is a brute-force cosine scan over all stored rows, which is
// fine for the corpus sizes a process-local store is meant for.
type VectorStore struct {
	mu   sync.RWMutex
	rows map[string]driven.VectorRow
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		rows: make(map[string]driven.VectorRow),
	}
}

// Upsert inserts or replaces rows keyed by chunk ID.
func (s *VectorStore) Upsert(_ context.Context, rows []driven.VectorRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		s.rows[row.Chunk.ID] = row
	}
	return nil
}

// Search returns the k most similar chunks to the query vector, sorted
// descending by cosine similarity with ties broken by chunk ID.
func (s *VectorStore) Search(_ context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]domain.ScoredChunk, 0, len(s.rows))
	for _, row := range s.rows {
		hits = append(hits, domain.ScoredChunk{
			Chunk: row.Chunk,
			Score: Cosine(query, row.Embedding),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Chunk.ID < hits[j].Chunk.ID
	})

	if k >= 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of stored rows.
func (s *VectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// Close releases resources.
func (s *VectorStore) Close() error {
	return nil
}

// Cosine computes cosine similarity between two vectors: the dot
// product over the product of norms. Mismatched lengths compare over
// the shorter prefix; a zero vector yields 0, not an error.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
