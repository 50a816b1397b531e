// Package mcp provides an MCP (Model Context Protocol) server adapter
// for orquel. It lets AI assistants ingest documents, search the index,
// and ask grounded questions over the local corpus.
package mcp

import "errors"

// ErrMissingRAGService is returned when the RAG service is not provided.
var ErrMissingRAGService = errors.New("mcp: rag service is required")
