// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for indexing and retrieval to function:
//
//   - EmbeddingService: Generates vector embeddings from chunk text
//   - VectorStore: Stores embeddings and performs dense similarity search
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - LexicalStore: Keyword search. Without it, hybrid queries run dense-only.
//   - Reranker: Secondary relevance ordering. Without it, fused order stands.
//   - Answerer: Answer generation. Without it, Answer fails fast.
//
// Every collaborator carries Close as part of its static contract; adapters
// with nothing to release implement it as a no-op. Capability is never
// discovered by reflection.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
