package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xKoller/orquel-sub001/internal/core/domain"
)

func TestIngestCmd_IndexesFile(t *testing.T) {
	chunks := []domain.Chunk{{ID: "c1"}, {ID: "c2"}, {ID: "c3"}}
	mock := &mockRAGService{
		ingestResult: &domain.IngestResult{SourceID: "notes-1a2b3c4d", Chunks: chunks},
	}
	cleanup := setupTestService(mock)
	defer cleanup()

	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# Notes\n\nSome content.\n"), 0600))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Indexed 3 chunks")
	assert.Contains(t, buf.String(), "notes-1a2b3c4d")
	assert.Equal(t, chunks, mock.indexedChunks)
}

func TestIngestCmd_MissingFile(t *testing.T) {
	mock := &mockRAGService{}
	cleanup := setupTestService(mock)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", filepath.Join(t.TempDir(), "missing.md")})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	assert.Error(t, err)
}

func TestIngestCmd_IndexFailure(t *testing.T) {
	mock := &mockRAGService{
		ingestResult: &domain.IngestResult{SourceID: "s", Chunks: []domain.Chunk{{ID: "c1"}}},
		indexErr:     assert.AnError,
	}
	cleanup := setupTestService(mock)
	defer cleanup()

	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0600))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "index failed")
}
