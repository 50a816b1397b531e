package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xKoller/orquel-sub001/internal/core/domain"
	"github.com/0xKoller/orquel-sub001/internal/core/ports/driven"
)

func newTestStore(t *testing.T) *VectorStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "vectors.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func row(id string, vec ...float32) driven.VectorRow {
	return driven.VectorRow{
		Chunk: domain.Chunk{
			ID:   id,
			Text: "text-" + id,
			Metadata: domain.ChunkMetadata{
				Hash:   "hash-" + id,
				Tokens: 2,
			},
		},
		Embedding: vec,
	}
}

func TestSearch_RanksByCosine(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	err := store.Upsert(ctx, []driven.VectorRow{
		row("aligned", 1, 0),
		row("oblique", 1, 1),
		row("orthogonal", 0, 1),
	})
	require.NoError(t, err)

	hits, err := store.Search(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "aligned", hits[0].Chunk.ID)
	assert.Equal(t, "oblique", hits[1].Chunk.ID)
	assert.Equal(t, "orthogonal", hits[2].Chunk.ID)
}

func TestSearch_RestoresChunkFields(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	src := &domain.SourceDescriptor{Title: "Handbook", Kind: domain.SourceKindMarkdown}
	in := driven.VectorRow{
		Chunk: domain.Chunk{
			ID:   "c1",
			Text: "stored text",
			Metadata: domain.ChunkMetadata{
				Source:     src,
				ChunkIndex: 3,
				Hash:       "deadbeef",
				Tokens:     2,
			},
		},
		Embedding: []float32{1, 0},
	}
	require.NoError(t, store.Upsert(ctx, []driven.VectorRow{in}))

	hits, err := store.Search(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	chunk := hits[0].Chunk
	assert.Equal(t, "c1", chunk.ID)
	assert.Equal(t, "stored text", chunk.Text)
	assert.Equal(t, 3, chunk.Metadata.ChunkIndex)
	assert.Equal(t, "deadbeef", chunk.Metadata.Hash)
	require.NotNil(t, chunk.Metadata.Source)
	assert.Equal(t, "Handbook", chunk.Metadata.Source.Title)
}

func TestUpsert_ReplacesExistingRow(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Upsert(ctx, []driven.VectorRow{row("a", 1, 0)}))
	require.NoError(t, store.Upsert(ctx, []driven.VectorRow{row("a", 0, 1)}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	hits, err := store.Search(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
}

func TestSearch_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "vectors.db")

	store, err := Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, []driven.VectorRow{row("a", 1, 0)}))
	require.NoError(t, store.Close())

	reopened, err := Open(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	hits, err := reopened.Search(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].Chunk.ID)
}

func TestUpsert_EmptyIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Upsert(ctx, nil))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSearch_EmptyStore(t *testing.T) {
	store := newTestStore(t)
	hits, err := store.Search(context.Background(), []float32{1}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
