// Package fusion merges dense (vector) and lexical search result sets
// into a single ranked list. Scores from heterogeneous scoring systems
// are min-max normalised before weighted combination, so weight tuning
// controls the dense/lexical balance without knowledge of either
// subsystem's native score distribution.
package fusion

import (
	"sort"

	"github.com/0xKoller/orquel-sub001/internal/core/domain"
)

// Normalize rescales scores linearly into [0,1]: the lowest-scored
// result lands at 0 and the highest at 1. An all-tied result set is
// treated as uniformly maximally relevant, every score becomes 1.
// Empty input returns empty output. The input slice is not mutated.
func Normalize(results []domain.ScoredChunk) []domain.ScoredChunk {
	if len(results) == 0 {
		return nil
	}

	minScore, maxScore := results[0].Score, results[0].Score
	for _, r := range results[1:] {
		if r.Score < minScore {
			minScore = r.Score
		}
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}

	normalized := make([]domain.ScoredChunk, len(results))
	copy(normalized, results)

	if maxScore == minScore {
		for i := range normalized {
			normalized[i].Score = 1
		}
		return normalized
	}

	span := maxScore - minScore
	for i := range normalized {
		normalized[i].Score = (normalized[i].Score - minScore) / span
	}
	return normalized
}

// Merge fuses a dense and a lexical result set into one ranked list of
// at most k entries, using weighted addition of independently
// normalised scores keyed by chunk ID. A chunk appearing in both lists
// is represented once with a combined score; a chunk found by only one
// method contributes its weighted score alone, absence in the other
// list is no contribution rather than a penalty. Ties are broken by
// chunk ID ascending so output order is deterministic.
func Merge(dense, lexical []domain.ScoredChunk, k int, denseWeight, lexicalWeight float64) []domain.ScoredChunk {
	dense = Normalize(dense)
	lexical = Normalize(lexical)

	accumulated := make(map[string]domain.ScoredChunk, len(dense)+len(lexical))

	for _, r := range dense {
		accumulated[r.Chunk.ID] = domain.ScoredChunk{
			Chunk: r.Chunk,
			Score: r.Score * denseWeight,
		}
	}

	for _, r := range lexical {
		if existing, ok := accumulated[r.Chunk.ID]; ok {
			existing.Score += r.Score * lexicalWeight
			accumulated[r.Chunk.ID] = existing
			continue
		}
		accumulated[r.Chunk.ID] = domain.ScoredChunk{
			Chunk: r.Chunk,
			Score: r.Score * lexicalWeight,
		}
	}

	merged := make([]domain.ScoredChunk, 0, len(accumulated))
	for _, r := range accumulated {
		merged = append(merged, r)
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].Chunk.ID < merged[j].Chunk.ID
	})

	if k >= 0 && len(merged) > k {
		merged = merged[:k]
	}
	return merged
}
