package driven

import (
	"context"

	"github.com/0xKoller/orquel-sub001/internal/core/domain"
)

// AnswerRequest carries a question and the retrieved context chunks the
// answer must be grounded in.
type AnswerRequest struct {
	// Query is the natural-language question.
	Query string

	// Contexts are the retrieved chunks, best match first.
	Contexts []domain.Chunk
}

// Answerer generates a natural-language answer from retrieved context.
// This is an optional collaborator - when nil, Answer fails fast.
//
// Contract: when Contexts is empty, implementations return a fixed
// insufficient-context sentinel instead of calling the underlying
// generation API.
type Answerer interface {
	// Answer produces the answer text for the request.
	Answer(ctx context.Context, req AnswerRequest) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight
	// request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
