// Package domain defines the core business entities for Orquel.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceDescriptor: Metadata describing an ingested document
//   - Chunk: A bounded, retrievable segment of a document
//   - ScoredChunk: A chunk paired with a relevance score
//   - Answer: Generated answer text plus the context chunks used
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
