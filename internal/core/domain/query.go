package domain

// Default retrieval parameters.
const (
	// DefaultQueryK is the result count for Query when none is given.
	DefaultQueryK = 10

	// DefaultAnswerK is the context chunk count for Answer.
	DefaultAnswerK = 4

	// DefaultDenseWeight favours semantic relevance in hybrid fusion.
	DefaultDenseWeight = 0.65

	// DefaultLexicalWeight is the lexical share in hybrid fusion.
	DefaultLexicalWeight = 0.35
)

// QueryOptions configures a retrieval query.
type QueryOptions struct {
	// K is the maximum number of results (default DefaultQueryK).
	K int

	// Hybrid requests combined dense + lexical search. Ignored when no
	// lexical store is configured; the query degrades to dense-only.
	Hybrid bool

	// Rerank requests a secondary ordering pass. Ignored when no
	// reranker is configured.
	Rerank bool
}

// AnswerOptions configures answer generation.
type AnswerOptions struct {
	// TopK is the number of context chunks to retrieve
	// (default DefaultAnswerK).
	TopK int

	// Hybrid and Rerank are forwarded to the underlying query.
	Hybrid bool
	Rerank bool
}

// Answer is the result of answer generation: the generated text plus the
// context chunks that were actually fed to the generator, for citation
// display.
type Answer struct {
	// Text is the generated answer.
	Text string

	// Contexts are the scored chunks used as grounding context, in the
	// order they were supplied to the answerer.
	Contexts []ScoredChunk
}
