package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/0xKoller/orquel-sub001/internal/core/domain"
)

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	Title   string `json:"title" jsonschema:"title of the document being ingested"`
	Content string `json:"content" jsonschema:"full text of the document"`
	Kind    string `json:"kind,omitempty" jsonschema:"source kind, e.g. markdown"`
	URL     string `json:"url,omitempty" jsonschema:"source URL for attribution"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	SourceID string `json:"source_id"`
	Chunks   int    `json:"chunks"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query  string `json:"query" jsonschema:"the search query to find relevant chunks"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (defaults to the configured result count)"`
	Hybrid *bool  `json:"hybrid,omitempty" jsonschema:"fuse dense and lexical scores (defaults to the configured retrieval mode)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	ChunkID string  `json:"chunk_id"`
	Title   string  `json:"title,omitempty"`
	URL     string  `json:"url,omitempty"`
	Score   float64 `json:"score"`
	Content string  `json:"content"`
}

// AnswerInput is the input schema for the answer tool.
type AnswerInput struct {
	Question string `json:"question" jsonschema:"the question to answer from indexed content"`
	Contexts int    `json:"contexts,omitempty" jsonschema:"number of context passages to retrieve (default 4)"`
}

// AnswerOutput is the output schema for the answer tool.
type AnswerOutput struct {
	Answer  string               `json:"answer"`
	Sources []SearchResultOutput `json:"sources"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest",
		Description: "Ingest a document into the index so it can be searched",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search indexed chunks by hybrid dense and lexical retrieval",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "answer",
		Description: "Answer a question using indexed content as grounding",
	}, s.handleAnswer)
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	source := &domain.SourceDescriptor{
		Title: input.Title,
		Kind:  input.Kind,
		URL:   input.URL,
	}

	result, err := s.ports.RAG.Ingest(ctx, source, input.Content)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	if err := s.ports.RAG.Index(ctx, result.Chunks); err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{
		SourceID: result.SourceID,
		Chunks:   len(result.Chunks),
	}, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = s.ports.Query.K
	}
	if limit <= 0 {
		limit = domain.DefaultQueryK
	}

	hybrid := s.ports.Query.Hybrid
	if input.Hybrid != nil {
		hybrid = *input.Hybrid
	}

	opts := domain.QueryOptions{K: limit, Hybrid: hybrid}
	results, err := s.ports.RAG.Query(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: toResultOutputs(results),
		Count:   len(results),
	}
	return nil, output, nil
}

// handleAnswer handles the answer tool invocation.
func (s *Server) handleAnswer(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnswerInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	opts := domain.AnswerOptions{
		TopK:   input.Contexts,
		Hybrid: s.ports.Query.Hybrid,
	}

	answer, err := s.ports.RAG.Answer(ctx, input.Question, opts)
	if err != nil {
		return nil, AnswerOutput{}, err
	}

	return nil, AnswerOutput{
		Answer:  answer.Text,
		Sources: toResultOutputs(answer.Contexts),
	}, nil
}

func toResultOutputs(results []domain.ScoredChunk) []SearchResultOutput {
	out := make([]SearchResultOutput, len(results))
	for i := range results {
		out[i] = SearchResultOutput{
			ChunkID: results[i].Chunk.ID,
			Score:   results[i].Score,
			Content: results[i].Chunk.Text,
		}
		if src := results[i].Chunk.Metadata.Source; src != nil {
			out[i].Title = src.Title
			out[i].URL = src.URL
		}
	}
	return out
}
