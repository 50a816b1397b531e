package mcp

import (
	"github.com/0xKoller/orquel-sub001/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP
// server. This provides a single injection point for dependency
// injection.
type Ports struct {
	// RAG provides ingest, retrieval, and answer capabilities.
	RAG driving.RAGService

	// Query carries retrieval defaults applied when tool callers omit
	// the corresponding inputs.
	Query QueryDefaults
}

// QueryDefaults are the configured retrieval defaults for tool calls.
type QueryDefaults struct {
	// K is the result count when the search input omits a limit.
	// Zero falls back to domain.DefaultQueryK.
	K int

	// Hybrid is the retrieval mode when the input omits one.
	Hybrid bool
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.RAG == nil {
		return ErrMissingRAGService
	}
	return nil
}
